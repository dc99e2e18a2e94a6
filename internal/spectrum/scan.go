package spectrum

import (
	"log/slog"
	"time"
)

const (
	rssiSettleTime = 1600 * time.Microsecond // receiver settle time before the RSSI register is valid
	rssiMask       = 0x1ff
)

// Interrupt reports whether the work in progress should stop early.
type Interrupt func() bool

type passResult struct {
	maxRSSI   uint8
	frequency uint32
	index     int
	measured  int
	aborted   bool
}

// scan runs one sweep pass with audio muted and feeds its maximum into the
// peak tracker. A pass that measured nothing has no maximum and leaves the
// peak as it was.
func (e *Engine) scan() {
	e.radio.ToggleAFDAC(false)
	e.radio.WriteRegister(RegisterAF, 0)
	e.listenFrequency = 0

	res := e.sweep(e.keyInterrupt)

	var replaced bool
	if res.measured > 0 {
		replaced = e.peak.Observe(res.maxRSSI, res.frequency, res.index)
	}
	peak := e.peak.State()

	if replaced {
		e.logger.Debug("peak replaced",
			slog.Uint64("frequency", uint64(peak.Frequency)),
			slog.Int("rssi", int(peak.RSSI)),
			slog.Int("index", peak.Index))
	}
	if res.aborted {
		e.logger.Debug("sweep pass aborted", slog.Int("measured", res.measured))
	}

	e.observer.PassCompleted(PassReport{
		Config:   e.config,
		Measured: res.measured,
		Aborted:  res.aborted,
		Bins:     e.history.Bins(e.config.MeasurementCount()),
		Peak:     peak,
		Replaced: replaced,
	})
}

// sweep samples every bin of the span in ascending frequency order. Blacklisted
// bins are skipped unless a remeasure was requested. The pass stops before the
// next bin when interrupt returns true; bins not reached keep their old values.
func (e *Engine) sweep(interrupt Interrupt) passResult {
	step := e.config.ScanStep()
	count := e.config.MeasurementCount()
	res := passResult{frequency: e.config.CenterFrequency}

	f := e.config.SpanStart()
	for i := 0; i < count; i, f = i+1, f+step {
		if interrupt() {
			res.aborted = true
			break
		}
		if e.history.IsBlacklisted(i) && !e.remeasure {
			continue
		}

		e.radio.SetFrequency(f)
		rssi := e.sampleRSSI()
		e.history.Set(i, rssi)
		res.measured++

		if rssi > res.maxRSSI {
			res.maxRSSI = rssi
			res.frequency = f
			res.index = i
		}
	}

	if !res.aborted {
		e.remeasure = false
	}
	return res
}

// sampleRSSI restarts the receive DSP, waits for it to settle and reads the
// signal strength at the currently tuned frequency.
func (e *Engine) sampleRSSI() uint8 {
	e.radio.ToggleRXDSP(false)
	e.radio.ToggleRXDSP(true)
	e.clock.Delay(rssiSettleTime)

	raw := e.radio.ReadRegister(RegisterRSSI) & rssiMask
	return uint8(min(raw, uint16(MaxRSSI)))
}

// keyInterrupt stops a pass for any key except manual tuning, which is applied
// once per tick and should not starve the sweep.
func (e *Engine) keyInterrupt() bool {
	switch e.keypad.PollKey() {
	case KeyNone, KeyFrequencyUp, KeyFrequencyDown:
		return false
	}
	return true
}

// keyPending stops a listen dwell for any key.
func (e *Engine) keyPending() bool {
	return e.keypad.PollKey() != KeyNone
}
