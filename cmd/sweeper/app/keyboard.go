package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/eiannone/keyboard"

	"github.com/roman-kulish/handheld-spectrum/internal/radio"
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

type action int

const (
	actionNone action = iota
	actionKey
	actionActivate
	actionLock
	actionSnapshot
	actionQuit
)

// mapKey translates a terminal key press. Digits map to the radio keypad
// codes directly, arrows tune and change the step.
func mapKey(char rune, key keyboard.Key) (action, spectrum.Key) {
	switch key {
	case keyboard.KeyCtrlC:
		return actionQuit, spectrum.KeyNone
	case keyboard.KeyEsc, keyboard.KeyBackspace, keyboard.KeyBackspace2:
		return actionKey, spectrum.KeyExit
	case keyboard.KeyArrowUp:
		return actionKey, spectrum.KeyFrequencyUp
	case keyboard.KeyArrowDown:
		return actionKey, spectrum.KeyFrequencyDown
	case keyboard.KeyArrowRight:
		return actionKey, spectrum.KeyStepUp
	case keyboard.KeyArrowLeft:
		return actionKey, spectrum.KeyStepDown
	case keyboard.KeySpace:
		return actionActivate, spectrum.KeyNone
	}

	switch {
	case char >= '0' && char <= '9':
		return actionKey, spectrum.Key(char - '0')
	case char == '*':
		return actionKey, spectrum.KeyStepUp
	case char == '#':
		return actionKey, spectrum.KeyStepDown
	case char == 'f' || char == 'F':
		return actionActivate, spectrum.KeyNone
	case char == 'l' || char == 'L':
		return actionLock, spectrum.KeyNone
	case char == 's' || char == 'S':
		return actionSnapshot, spectrum.KeyNone
	case char == 'q' || char == 'Q':
		return actionQuit, spectrum.KeyNone
	}

	return actionNone, spectrum.KeyNone
}

// KeyboardInput drives the simulated radio controls from the terminal.
type KeyboardInput struct {
	keypad     *radio.Keypad
	flashlight *radio.Flashlight
	receiver   *radio.Receiver
	snapshot   func()
	logger     *slog.Logger

	locked bool
}

func NewKeyboardInput(keypad *radio.Keypad, flashlight *radio.Flashlight, receiver *radio.Receiver, snapshot func(), logger *slog.Logger) *KeyboardInput {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &KeyboardInput{
		keypad:     keypad,
		flashlight: flashlight,
		receiver:   receiver,
		snapshot:   snapshot,
		logger:     logger,
	}
}

// Run reads the terminal until ctx is done or a quit key is pressed, in
// which case quit is called.
func (k *KeyboardInput) Run(ctx context.Context, quit context.CancelFunc) error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("opening keyboard: %w", err)
	}

	var closeOnce sync.Once
	closeKeyboard := func() {
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}
	defer closeKeyboard()

	go func() {
		<-ctx.Done()
		closeKeyboard()
	}()

	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading keyboard: %w", err)
		}

		if !k.apply(mapKey(char, key)) {
			quit()
			return nil
		}
	}
}

// apply performs a mapped key action. It returns false on quit.
func (k *KeyboardInput) apply(a action, key spectrum.Key) bool {
	switch a {
	case actionKey:
		k.keypad.Press(key)
	case actionActivate:
		k.flashlight.TurnOn()
		k.logger.Info("flashlight on")
	case actionLock:
		// the host owns the keypad while it holds the radio
		k.keypad.Release()
		k.locked = !k.locked
		k.receiver.SetLocked(k.locked)
		k.logger.Info("host lock", slog.Bool("locked", k.locked))
	case actionSnapshot:
		if k.snapshot != nil {
			k.snapshot()
		}
	case actionQuit:
		return false
	}
	return true
}
