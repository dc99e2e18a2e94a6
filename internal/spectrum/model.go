package spectrum

// Frequencies are expressed in Hz throughout the package.
const (
	KHz uint32 = 1_000
	MHz uint32 = 1_000_000

	MinFrequency     = 18 * MHz   // lowest frequency the receiver can tune
	MaxFrequency     = 1300 * MHz // highest frequency the receiver can tune
	MinFrequencyStep = 100 * KHz
	MaxFrequencyStep = 2 * MHz

	MaxBandwidthMultiplier uint8 = 4

	MinTriggerLevel uint8 = 10
	MaxTriggerLevel uint8 = 255

	DefaultFrequencyStep              = 400 * KHz
	DefaultBandwidthMultiplier uint8  = 2
	DefaultTriggerLevel        uint8  = 100
	DefaultCenterFrequency     uint32 = 433 * MHz
)

// Key is a raw keypad code as reported by the host firmware.
type Key uint8

const (
	KeyBlacklist     Key = 0
	KeyBandwidthUp   Key = 2
	KeyTriggerUp     Key = 3
	KeyBacklight     Key = 5
	KeyBandwidthDown Key = 8
	KeyTriggerDown   Key = 9
	KeyFrequencyUp   Key = 11
	KeyFrequencyDown Key = 12
	KeyExit          Key = 13
	KeyStepUp        Key = 14
	KeyStepDown      Key = 15
	KeyNone          Key = 255
)

// SweepConfig holds the user adjustable sweep parameters. All values are
// clamped by the input controller before they are stored.
type SweepConfig struct {
	CenterFrequency     uint32 `json:"centerFrequency"`     // Tuned center of the span in Hz
	FrequencyStep       uint32 `json:"frequencyStep"`       // Manual tuning increment in Hz
	BandwidthMultiplier uint8  `json:"bandwidthMultiplier"` // 0..4, controls span, bin spacing and decimation
}

// DefaultSweepConfig returns the parameters the engine starts with.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		CenterFrequency:     DefaultCenterFrequency,
		FrequencyStep:       DefaultFrequencyStep,
		BandwidthMultiplier: DefaultBandwidthMultiplier,
	}
}

// PeakState is the strongest signal recorded by the peak tracker.
type PeakState struct {
	Frequency uint32 `json:"frequency"` // Frequency of the peak bin in Hz
	RSSI      uint8  `json:"rssi"`      // Last known strength of the peak
	Index     int    `json:"index"`     // History bin holding the peak
	Age       uint8  `json:"age"`       // Sweep passes since the peak was last replaced
}

// PassReport describes one sweep pass, complete or aborted by a key press.
type PassReport struct {
	Config   SweepConfig `json:"config"`
	Measured int         `json:"measured"` // Bins sampled during this pass
	Aborted  bool        `json:"aborted"`  // Pass stopped early because a key was pending
	Bins     []uint8     `json:"bins"`     // History bins covered by the span, after the pass
	Peak     PeakState   `json:"peak"`     // Peak state after the pass
	Replaced bool        `json:"replaced"` // Whether the pass replaced the peak
}

// ListenReport describes one listen dwell on the peak frequency.
type ListenReport struct {
	Frequency uint32 `json:"frequency"`
	RSSI      uint8  `json:"rssi"`
	Retuned   bool   `json:"retuned"` // Receiver was retuned and audio unmuted for this dwell
}

// Snapshot is a copy of the engine state for hosts and tooling.
type Snapshot struct {
	Active       bool        `json:"active"`
	Listening    bool        `json:"listening"`
	Config       SweepConfig `json:"config"`
	Peak         PeakState   `json:"peak"`
	TriggerLevel uint8       `json:"triggerLevel"`
	History      []uint8     `json:"history"`
}

// ClampFrequency saturates a center frequency to the tuning range.
func ClampFrequency(hz int64) uint32 {
	return uint32(min(max(hz, int64(MinFrequency)), int64(MaxFrequency)))
}

// ClampFrequencyStep saturates a manual tuning step.
func ClampFrequencyStep(hz int64) uint32 {
	return uint32(min(max(hz, int64(MinFrequencyStep)), int64(MaxFrequencyStep)))
}

// ClampBandwidthMultiplier saturates the bandwidth multiplier to 0..4.
func ClampBandwidthMultiplier(v int) uint8 {
	return uint8(min(max(v, 0), int(MaxBandwidthMultiplier)))
}

// ClampTriggerLevel saturates the squelch trigger level.
func ClampTriggerLevel(v int) uint8 {
	return uint8(min(max(v, int(MinTriggerLevel)), int(MaxTriggerLevel)))
}
