package spectrum

import "time"

// Receiver registers the engine touches directly.
const (
	RegisterRFFilter uint8 = 0x43 // RF filter bandwidth
	RegisterAF       uint8 = 0x47 // AF output; zero mutes audio
	RegisterRSSI     uint8 = 0x67 // RSSI, low 9 bits
)

// Radio is the receiver owned by the host firmware. The engine only uses it
// while its session is active and the host has not locked it.
type Radio interface {
	SetFrequency(hz uint32)
	Frequency() uint32
	ToggleAFDAC(on bool)
	ToggleRXDSP(on bool)
	ReadRegister(addr uint8) uint16
	WriteRegister(addr uint8, value uint16)
	IsLockedByHost() bool
}

// Keypad reports the currently pressed key without blocking.
type Keypad interface {
	PollKey() Key
}

// Clock busy-waits. It never yields to other work.
type Clock interface {
	Delay(d time.Duration)
}

// Display receives a rendered frame once per tick.
type Display interface {
	Present(f *Frame)
	Clear()
}

// Backlight toggles the LCD backlight.
type Backlight interface {
	ToggleBacklight()
}

// Activation is the host signal that starts a session (the flashlight
// button on the handheld). Acknowledge consumes the signal.
type Activation interface {
	Signaled() bool
	Acknowledge()
}

// Hardware bundles the capabilities the engine is constructed with.
type Hardware struct {
	Radio      Radio
	Keypad     Keypad
	Clock      Clock
	Display    Display
	Backlight  Backlight
	Activation Activation
}

// Observer is notified about engine activity. Calls happen on the engine's
// own goroutine and must return quickly.
type Observer interface {
	SessionStarted(cfg SweepConfig)
	SessionStopped()
	PassCompleted(r PassReport)
	Listened(r ListenReport)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(SweepConfig) {}
func (nopObserver) SessionStopped()            {}
func (nopObserver) PassCompleted(PassReport)   {}
func (nopObserver) Listened(ListenReport)      {}

type multiObserver []Observer

// Observers fans engine notifications out to several observers in order.
func Observers(observers ...Observer) Observer {
	return multiObserver(observers)
}

func (m multiObserver) SessionStarted(cfg SweepConfig) {
	for _, o := range m {
		o.SessionStarted(cfg)
	}
}

func (m multiObserver) SessionStopped() {
	for _, o := range m {
		o.SessionStopped()
	}
}

func (m multiObserver) PassCompleted(r PassReport) {
	for _, o := range m {
		o.PassCompleted(r)
	}
}

func (m multiObserver) Listened(r ListenReport) {
	for _, o := range m {
		o.Listened(r)
	}
}
