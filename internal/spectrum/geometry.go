package spectrum

const (
	baseScanStep  = 25 * KHz  // bin spacing for multipliers 2 and above
	baseHalfSpan  = 100 * KHz // half the span at multiplier 0
	maxDecimation = 2
)

// ScanStep returns the spacing between two adjacent bins. Larger multipliers
// give a coarser step: 6.25 kHz, 12.5 kHz, then 25 kHz.
func (c SweepConfig) ScanStep() uint32 {
	return baseScanStep >> (uint32(2) >> c.BandwidthMultiplier)
}

// SpanStart returns the frequency of bin 0.
func (c SweepConfig) SpanStart() uint32 {
	return c.CenterFrequency - (baseHalfSpan << c.BandwidthMultiplier)
}

// Bandwidth returns the width of the whole span.
func (c SweepConfig) Bandwidth() uint32 {
	return (2 * baseHalfSpan) << c.BandwidthMultiplier
}

// MeasurementCount returns how many bins one pass samples.
func (c SweepConfig) MeasurementCount() int {
	switch {
	case c.BandwidthMultiplier > 3:
		return 128
	case c.BandwidthMultiplier == 3:
		return 64
	default:
		return 32
	}
}

// DecimationShift is log2 of the number of display columns per bin.
func (c SweepConfig) DecimationShift() uint8 {
	return uint8(min(max(4-int(c.BandwidthMultiplier), 0), maxDecimation))
}

// BinForColumn maps a display column to the bin drawn in it.
func (c SweepConfig) BinForColumn(x int) int {
	return x >> c.DecimationShift()
}

// ColumnForBin maps a bin to the first display column of its run, so
// ColumnForBin(BinForColumn(x)) rounds x down to the run boundary.
func (c SweepConfig) ColumnForBin(i int) int {
	return i << c.DecimationShift()
}

// BinFrequency returns the frequency sampled into bin i.
func (c SweepConfig) BinFrequency(i int) uint32 {
	return c.SpanStart() + uint32(i)*c.ScanStep()
}

// CenterBin returns the bin sampling the center frequency.
func (c SweepConfig) CenterBin() int {
	return c.MeasurementCount() / 2
}
