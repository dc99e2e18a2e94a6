package radio

import (
	"math"
	"math/rand/v2"
	"sync"
)

// rssiMax is the largest value the 9 bit RSSI register can hold.
const rssiMax = 0x1ff

// Signal is a synthetic transmitter.
type Signal struct {
	Frequency uint32  `yaml:"frequency"` // Carrier frequency in Hz
	Level     float64 `yaml:"level"`     // Register units above the noise floor at the carrier
	Width     uint32  `yaml:"width"`     // Distance from the carrier in Hz at which the signal fades out
	Name      string  `yaml:"name"`
}

// Environment is the RF scene the simulated receiver hears. Signal levels fall
// off linearly with the distance from the carrier.
type Environment struct {
	NoiseFloor float64
	Jitter     float64 // Peak random deviation added to every reading
	Signals    []Signal

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEnvironment creates an environment with a seeded noise source so runs
// can be reproduced.
func NewEnvironment(noiseFloor, jitter float64, seed uint64, signals ...Signal) *Environment {
	return &Environment{
		NoiseFloor: noiseFloor,
		Jitter:     jitter,
		Signals:    signals,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Level returns the raw RSSI register value at frequency.
func (e *Environment) Level(frequency uint32) uint16 {
	level := e.NoiseFloor
	for _, s := range e.Signals {
		level = math.Max(level, e.NoiseFloor+s.strengthAt(frequency))
	}

	if e.Jitter > 0 {
		e.mu.Lock()
		if e.rng == nil {
			e.rng = rand.New(rand.NewPCG(1, 2))
		}
		level += (e.rng.Float64()*2 - 1) * e.Jitter
		e.mu.Unlock()
	}

	return uint16(math.Round(math.Min(math.Max(level, 0), rssiMax)))
}

// Transmitter returns the signal covering frequency, if any.
func (e *Environment) Transmitter(frequency uint32) (Signal, bool) {
	for _, s := range e.Signals {
		if s.strengthAt(frequency) > 0 {
			return s, true
		}
	}
	return Signal{}, false
}

func (s Signal) strengthAt(frequency uint32) float64 {
	if s.Width == 0 {
		if frequency == s.Frequency {
			return s.Level
		}
		return 0
	}

	offset := math.Abs(float64(frequency) - float64(s.Frequency))
	if offset >= float64(s.Width) {
		return 0
	}
	return s.Level * (1 - offset/float64(s.Width))
}
