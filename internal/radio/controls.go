package radio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

// Clock delays in real time, optionally sped up. A scale of 0.1 makes every
// delay ten times shorter.
type Clock struct {
	Scale float64
}

func (c Clock) Delay(d time.Duration) {
	if c.Scale > 0 {
		d = time.Duration(float64(d) * c.Scale)
	}
	if d > 0 {
		time.Sleep(d)
	}
}

// Keypad latches key presses coming from another goroutine. A pressed key is
// reported until the hold time elapses, the way a physical key stays down for
// a while after it was pressed.
type Keypad struct {
	mu    sync.Mutex
	key   spectrum.Key
	until time.Time
	hold  time.Duration
	now   func() time.Time
}

func NewKeypad(hold time.Duration) *Keypad {
	return &Keypad{
		key:  spectrum.KeyNone,
		hold: hold,
		now:  time.Now,
	}
}

// Press reports key as held for the hold time, replacing any key still held.
func (k *Keypad) Press(key spectrum.Key) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.key = key
	k.until = k.now().Add(k.hold)
}

// Release drops the held key.
func (k *Keypad) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.key = spectrum.KeyNone
}

func (k *Keypad) PollKey() spectrum.Key {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.key != spectrum.KeyNone && !k.now().Before(k.until) {
		k.key = spectrum.KeyNone
	}
	return k.key
}

// Flashlight is the activation button. Turning it on asks the analyzer to
// start; the analyzer turns it back off.
type Flashlight struct {
	on atomic.Bool
}

func (f *Flashlight) TurnOn() {
	f.on.Store(true)
}

func (f *Flashlight) Signaled() bool {
	return f.on.Load()
}

func (f *Flashlight) Acknowledge() {
	f.on.Store(false)
}

// Backlight tracks the LCD backlight state.
type Backlight struct {
	on atomic.Bool
}

func NewBacklight(on bool) *Backlight {
	b := &Backlight{}
	b.on.Store(on)
	return b
}

func (b *Backlight) ToggleBacklight() {
	for {
		v := b.on.Load()
		if b.on.CompareAndSwap(v, !v) {
			return
		}
	}
}

func (b *Backlight) On() bool {
	return b.on.Load()
}
