package app

import (
	"testing"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/roman-kulish/handheld-spectrum/internal/radio"
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

func TestMapKey(t *testing.T) {
	tests := []struct {
		name       string
		char       rune
		key        keyboard.Key
		wantAction action
		wantKey    spectrum.Key
	}{
		{name: "blacklist", char: '0', wantAction: actionKey, wantKey: spectrum.KeyBlacklist},
		{name: "bandwidth up", char: '2', wantAction: actionKey, wantKey: spectrum.KeyBandwidthUp},
		{name: "trigger down", char: '9', wantAction: actionKey, wantKey: spectrum.KeyTriggerDown},
		{name: "arrow up", key: keyboard.KeyArrowUp, wantAction: actionKey, wantKey: spectrum.KeyFrequencyUp},
		{name: "arrow down", key: keyboard.KeyArrowDown, wantAction: actionKey, wantKey: spectrum.KeyFrequencyDown},
		{name: "arrow right", key: keyboard.KeyArrowRight, wantAction: actionKey, wantKey: spectrum.KeyStepUp},
		{name: "star", char: '*', wantAction: actionKey, wantKey: spectrum.KeyStepUp},
		{name: "hash", char: '#', wantAction: actionKey, wantKey: spectrum.KeyStepDown},
		{name: "escape", key: keyboard.KeyEsc, wantAction: actionKey, wantKey: spectrum.KeyExit},
		{name: "space", key: keyboard.KeySpace, wantAction: actionActivate, wantKey: spectrum.KeyNone},
		{name: "flashlight", char: 'f', wantAction: actionActivate, wantKey: spectrum.KeyNone},
		{name: "lock", char: 'l', wantAction: actionLock, wantKey: spectrum.KeyNone},
		{name: "snapshot", char: 'S', wantAction: actionSnapshot, wantKey: spectrum.KeyNone},
		{name: "quit", char: 'q', wantAction: actionQuit, wantKey: spectrum.KeyNone},
		{name: "ctrl-c", key: keyboard.KeyCtrlC, wantAction: actionQuit, wantKey: spectrum.KeyNone},
		{name: "unmapped", char: 'z', wantAction: actionNone, wantKey: spectrum.KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, k := mapKey(tt.char, tt.key)
			if a != tt.wantAction || k != tt.wantKey {
				t.Errorf("Expected (%d, %d), got (%d, %d)", tt.wantAction, tt.wantKey, a, k)
			}
		})
	}
}

func TestKeyboardInput_Apply(t *testing.T) {
	keypad := radio.NewKeypad(time.Minute)
	flashlight := &radio.Flashlight{}
	receiver := radio.NewReceiver(radio.NewEnvironment(0, 0, 1), 433_000_000)

	var snapshots int
	input := NewKeyboardInput(keypad, flashlight, receiver, func() { snapshots++ }, nil)

	if !input.apply(actionKey, spectrum.KeyTriggerUp) {
		t.Fatal("Expected key action to continue")
	}
	if got := keypad.PollKey(); got != spectrum.KeyTriggerUp {
		t.Errorf("Expected held key %d, got %d", spectrum.KeyTriggerUp, got)
	}

	input.apply(actionActivate, spectrum.KeyNone)
	if !flashlight.Signaled() {
		t.Error("Expected flashlight on")
	}

	input.apply(actionKey, spectrum.KeyStepUp)
	input.apply(actionLock, spectrum.KeyNone)
	if !receiver.IsLockedByHost() {
		t.Error("Expected receiver locked")
	}
	if got := keypad.PollKey(); got != spectrum.KeyNone {
		t.Errorf("Expected lock to release the held key, got %d", got)
	}
	input.apply(actionLock, spectrum.KeyNone)
	if receiver.IsLockedByHost() {
		t.Error("Expected receiver unlocked")
	}

	input.apply(actionSnapshot, spectrum.KeyNone)
	if snapshots != 1 {
		t.Errorf("Expected 1 snapshot, got %d", snapshots)
	}

	if input.apply(actionQuit, spectrum.KeyNone) {
		t.Error("Expected quit to stop input")
	}
}
