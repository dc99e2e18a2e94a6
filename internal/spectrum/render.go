package spectrum

const (
	DisplayWidth = 128
	DrawingEndY  = 42 // lowest row of the bar area

	rulerBaseStep     = 1562 // Hz per column at multiplier 0
	rulerCenterColumn = DisplayWidth / 2
	rulerCenterMark   = 0b10101010

	tickColumn = 0x08
	tick100k   = 0x10
	tick500k   = 0x20
	tick1M     = 0xC0
)

// Frame is everything the display needs for one tick.
type Frame struct {
	Ruler [DisplayWidth]byte  // one byte per column: tick bits and the peak arrow
	Bars  [DisplayWidth]uint8 // top row of each column's bar, 0 when nothing is drawn

	Cursor   int   // column of the peak arrow
	TriggerY uint8 // row of the dashed trigger line

	Bandwidth       uint32
	PeakFrequency   uint32
	CenterFrequency uint32
	FrequencyStep   uint32
	PeakRSSI        uint8
	TriggerLevel    uint8
	Listening       bool
}

// Rssi2Y maps a signal strength to a row of the bar area. Stronger signals
// give smaller rows, i.e. taller bars.
func Rssi2Y(rssi uint8) uint8 {
	y := DrawingEndY - (int(rssi>>1) - 20)
	return uint8(min(max(y, 1), DrawingEndY))
}

// RulerTicks encodes the frequency ruler. Every column has a base tick;
// columns crossing a 100 kHz, 500 kHz or 1 MHz boundary get progressively
// longer ticks, and the center column carries a dotted marker.
func RulerTicks(cfg SweepConfig) [DisplayWidth]byte {
	var ruler [DisplayWidth]byte

	step := uint32(rulerBaseStep) << cfg.BandwidthMultiplier
	f := cfg.SpanStart()%MHz + step
	for i := range ruler {
		v := byte(tickColumn)
		if f%(100*KHz) < step {
			v |= tick100k
		}
		if f%(500*KHz) < step {
			v |= tick500k
		}
		if f%MHz < step {
			v |= tick1M
		}
		ruler[i] = v
		f += step
	}

	ruler[rulerCenterColumn] |= rulerCenterMark
	return ruler
}

// drawArrow marks the peak column and its two neighbours on each side.
func drawArrow(ruler *[DisplayWidth]byte, x int) {
	for d := -2; d <= 2; d++ {
		col := x + d
		if col < 0 || col >= DisplayWidth {
			continue
		}
		ruler[col] |= byte((3 << (abs(d) + 4)) & 0xF0)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// BuildFrame renders the engine state into a frame.
func BuildFrame(cfg SweepConfig, h *History, peak PeakState, trigger uint8) *Frame {
	f := &Frame{
		Ruler:           RulerTicks(cfg),
		Cursor:          cfg.ColumnForBin(peak.Index),
		TriggerY:        Rssi2Y(trigger),
		Bandwidth:       cfg.Bandwidth(),
		PeakFrequency:   peak.Frequency,
		CenterFrequency: cfg.CenterFrequency,
		FrequencyStep:   cfg.FrequencyStep,
		PeakRSSI:        peak.RSSI,
		TriggerLevel:    trigger,
		Listening:       peak.RSSI >= trigger,
	}

	drawArrow(&f.Ruler, f.Cursor)

	for x := range f.Bars {
		i := cfg.BinForColumn(x)
		if h.IsBlacklisted(i) {
			continue
		}
		f.Bars[x] = Rssi2Y(h.At(i))
	}
	return f
}
