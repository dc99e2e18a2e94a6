package spectrum

// DefaultAgingCeiling is the number of passes after which a peak is replaced
// by the latest pass maximum even if that maximum is weaker.
const DefaultAgingCeiling uint8 = 8

// PeakTracker keeps the strongest signal seen across sweep passes. A weaker
// maximum only displaces the recorded peak once the peak has aged out, which
// stops a stale peak from pinning the listen frequency forever.
type PeakTracker struct {
	state   PeakState
	ceiling uint8
}

// NewPeakTracker creates a tracker that ages peaks out after ceiling passes.
func NewPeakTracker(ceiling uint8) *PeakTracker {
	if ceiling == 0 {
		ceiling = DefaultAgingCeiling
	}
	return &PeakTracker{ceiling: ceiling}
}

// State returns the current peak.
func (t *PeakTracker) State() PeakState {
	return t.state
}

// Reset forgets the peak. The index points at the center bin so it stays
// valid under the new geometry.
func (t *PeakTracker) Reset(cfg SweepConfig) {
	t.state = PeakState{
		Frequency: cfg.CenterFrequency,
		Index:     cfg.CenterBin(),
	}
}

// Observe ages the peak by one pass and replaces it with the pass maximum if
// the maximum is stronger or the peak reached the aging ceiling. It reports
// whether the peak was replaced.
func (t *PeakTracker) Observe(rssi uint8, frequency uint32, index int) bool {
	t.state.Age++
	if rssi <= t.state.RSSI && t.state.Age < t.ceiling {
		return false
	}

	t.state = PeakState{
		Frequency: frequency,
		RSSI:      rssi,
		Index:     index,
	}
	return true
}

// Refresh overwrites the peak strength with a fresh reading taken while
// parked on the peak frequency.
func (t *PeakTracker) Refresh(rssi uint8) {
	t.state.RSSI = rssi
}
