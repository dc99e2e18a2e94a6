package spectrum

import (
	"time"
)

type fakeRadio struct {
	frequency uint32
	registers map[uint8]uint16
	afDAC     bool
	rxDSP     bool
	locked    bool

	levels map[uint32]uint16 // RSSI register value per tuned frequency
	tunes  map[uint32]int    // SetFrequency calls per frequency
	reads  int
}

func newFakeRadio(frequency uint32) *fakeRadio {
	return &fakeRadio{
		frequency: frequency,
		registers: map[uint8]uint16{},
		levels:    map[uint32]uint16{},
		tunes:     map[uint32]int{},
	}
}

func (r *fakeRadio) SetFrequency(hz uint32) {
	r.frequency = hz
	r.tunes[hz]++
}

func (r *fakeRadio) Frequency() uint32    { return r.frequency }
func (r *fakeRadio) ToggleAFDAC(on bool)  { r.afDAC = on }
func (r *fakeRadio) ToggleRXDSP(on bool)  { r.rxDSP = on }
func (r *fakeRadio) IsLockedByHost() bool { return r.locked }

func (r *fakeRadio) ReadRegister(addr uint8) uint16 {
	r.reads++
	if addr == RegisterRSSI {
		return r.levels[r.frequency]
	}
	return r.registers[addr]
}

func (r *fakeRadio) WriteRegister(addr uint8, value uint16) {
	r.registers[addr] = value
}

// fakeKeypad returns scripted keys one poll at a time, then the held key.
type fakeKeypad struct {
	script []Key
	held   Key
	polls  int
}

func (k *fakeKeypad) PollKey() Key {
	k.polls++
	if len(k.script) > 0 {
		key := k.script[0]
		k.script = k.script[1:]
		return key
	}
	return k.held
}

// tap reports key on the next poll only.
func (k *fakeKeypad) tap(key Key) {
	k.script = append(k.script, key)
}

type fakeClock struct {
	total time.Duration
	calls int
}

func (c *fakeClock) Delay(d time.Duration) {
	c.total += d
	c.calls++
}

type fakeDisplay struct {
	frame   *Frame
	frames  int
	cleared int
}

func (d *fakeDisplay) Present(f *Frame) {
	d.frame = f
	d.frames++
}

func (d *fakeDisplay) Clear() { d.cleared++ }

type fakeBacklight struct{ toggles int }

func (b *fakeBacklight) ToggleBacklight() { b.toggles++ }

type fakeActivation struct {
	signaled     bool
	acknowledged int
}

func (a *fakeActivation) Signaled() bool { return a.signaled }

func (a *fakeActivation) Acknowledge() {
	a.signaled = false
	a.acknowledged++
}

type recordingObserver struct {
	started int
	stopped int
	passes  []PassReport
	listens []ListenReport
}

func (o *recordingObserver) SessionStarted(SweepConfig) { o.started++ }
func (o *recordingObserver) SessionStopped()            { o.stopped++ }
func (o *recordingObserver) PassCompleted(r PassReport) { o.passes = append(o.passes, r) }
func (o *recordingObserver) Listened(r ListenReport)    { o.listens = append(o.listens, r) }

type testRig struct {
	engine     *Engine
	radio      *fakeRadio
	keypad     *fakeKeypad
	clock      *fakeClock
	display    *fakeDisplay
	backlight  *fakeBacklight
	activation *fakeActivation
	observer   *recordingObserver
}

func newTestRig(frequency uint32, options ...func(*Engine)) *testRig {
	r := &testRig{
		radio:      newFakeRadio(frequency),
		keypad:     &fakeKeypad{held: KeyNone},
		clock:      &fakeClock{},
		display:    &fakeDisplay{},
		backlight:  &fakeBacklight{},
		activation: &fakeActivation{},
		observer:   &recordingObserver{},
	}

	options = append([]func(*Engine){WithObserver(r.observer)}, options...)
	r.engine = New(Hardware{
		Radio:      r.radio,
		Keypad:     r.keypad,
		Clock:      r.clock,
		Display:    r.display,
		Backlight:  r.backlight,
		Activation: r.activation,
	}, options...)
	return r
}

// activate raises the activation signal and runs the first tick of a session.
func (r *testRig) activate() {
	r.activation.signaled = true
	r.engine.Tick()
}

// setBin makes the radio report rssi at bin i of the current configuration.
func (r *testRig) setBin(i int, rssi uint16) {
	r.radio.levels[r.engine.config.BinFrequency(i)] = rssi
}
