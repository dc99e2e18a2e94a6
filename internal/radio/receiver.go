package radio

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

// Default register values of a receiver that is listening normally.
const (
	DefaultAFRegister       uint16 = 0xB000
	DefaultRFFilterRegister uint16 = 0x3000
)

// Receiver simulates the BK4819 transceiver as seen by the analyzer: a
// register file, a tuned frequency and the RSSI of an Environment latched
// into the RSSI register whenever the receive DSP restarts.
type Receiver struct {
	mu        sync.Mutex
	env       *Environment
	frequency uint32
	registers map[uint8]uint16
	afDAC     bool
	rxDSP     bool
	locked    bool
	retunes   uint64

	logger *slog.Logger
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) func(*Receiver) {
	return func(r *Receiver) {
		r.logger = logger
	}
}

// NewReceiver creates a receiver tuned to frequency with audio enabled.
func NewReceiver(env *Environment, frequency uint32, options ...func(*Receiver)) *Receiver {
	r := &Receiver{
		env:       env,
		frequency: frequency,
		registers: map[uint8]uint16{
			spectrum.RegisterAF:       DefaultAFRegister,
			spectrum.RegisterRFFilter: DefaultRFFilterRegister,
		},
		afDAC:  true,
		rxDSP:  true,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

func (r *Receiver) SetFrequency(hz uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frequency != hz {
		r.retunes++
	}
	r.frequency = hz
}

func (r *Receiver) Frequency() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.frequency
}

// ToggleAFDAC switches the audio path. Opening it logs the transmitter heard
// at the tuned frequency.
func (r *Receiver) ToggleAFDAC(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if on && !r.afDAC {
		if s, ok := r.env.Transmitter(r.frequency); ok {
			r.logger.Info("audio open",
				slog.String("transmitter", s.Name),
				slog.Uint64("carrier", uint64(s.Frequency)),
				slog.Uint64("frequency", uint64(r.frequency)))
		}
	}
	r.afDAC = on
}

// ToggleRXDSP latches a fresh reading into the RSSI register when the DSP is
// switched back on.
func (r *Receiver) ToggleRXDSP(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if on && !r.rxDSP {
		r.registers[spectrum.RegisterRSSI] = r.env.Level(r.frequency)
	}
	r.rxDSP = on
}

func (r *Receiver) ReadRegister(addr uint8) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.registers[addr]
}

func (r *Receiver) WriteRegister(addr uint8, value uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if addr == spectrum.RegisterRSSI {
		r.logger.Warn("write to read-only register ignored", slog.Int("register", int(addr)))
		return
	}
	r.registers[addr] = value
}

func (r *Receiver) IsLockedByHost() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.locked
}

// SetLocked simulates the host firmware taking the radio, e.g. for an
// incoming call or a transmission.
func (r *Receiver) SetLocked(locked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked != locked {
		r.logger.Info("host lock changed", slog.Bool("locked", locked))
	}
	r.locked = locked
}

// AudioOpen reports whether audio would reach the speaker.
func (r *Receiver) AudioOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.afDAC && r.registers[spectrum.RegisterAF] != 0
}

// Retunes returns how many times the tuned frequency changed.
func (r *Receiver) Retunes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.retunes
}
