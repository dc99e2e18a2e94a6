package spectrum

import (
	"log/slog"
	"time"
)

// DefaultSettleDelay is applied after every key that changes the sweep
// parameters, so a held key does not race through the whole range.
const DefaultSettleDelay = 20 * time.Millisecond

// handleInput samples the keypad once and applies the key. Trigger and
// frequency keys act every tick while held; everything else acts once per
// press. It returns false when the session was stopped.
func (e *Engine) handleInput() bool {
	e.prevKey = e.key
	e.key = e.keypad.PollKey()

	if e.key == KeyExit {
		e.stop()
		return false
	}

	switch e.key {
	case KeyTriggerUp:
		e.adjustTrigger(1)
	case KeyTriggerDown:
		e.adjustTrigger(-1)
	case KeyFrequencyUp:
		e.adjustFrequency(int64(e.config.FrequencyStep))
	case KeyFrequencyDown:
		e.adjustFrequency(-int64(e.config.FrequencyStep))
	}

	if e.key == KeyNone || e.prevKey != KeyNone {
		return true
	}

	switch e.key {
	case KeyBandwidthUp:
		e.adjustBandwidth(1)
	case KeyBandwidthDown:
		e.adjustBandwidth(-1)
	case KeyStepUp:
		e.adjustStep(int64(MinFrequencyStep))
	case KeyStepDown:
		e.adjustStep(-int64(MinFrequencyStep))
	case KeyBacklight:
		e.backlight.ToggleBacklight()
	case KeyBlacklist:
		e.blacklistPeak()
	}
	return true
}

// adjustTrigger leaves the peak alone, so raising the level above the peak
// simply drops back to scanning.
func (e *Engine) adjustTrigger(delta int) {
	e.trigger = ClampTriggerLevel(int(e.trigger) + delta)
}

func (e *Engine) adjustFrequency(delta int64) {
	e.config.CenterFrequency = ClampFrequency(int64(e.config.CenterFrequency) + delta)
	e.remeasure = true
	e.sweepChanged()
}

// adjustBandwidth also resets the manual step to the natural step of the new span.
func (e *Engine) adjustBandwidth(delta int) {
	bw := ClampBandwidthMultiplier(int(e.config.BandwidthMultiplier) + delta)
	e.config.BandwidthMultiplier = bw
	e.config.FrequencyStep = ClampFrequencyStep(int64(MinFrequencyStep) << bw)
	e.remeasure = true
	e.sweepChanged()
}

func (e *Engine) adjustStep(delta int64) {
	e.config.FrequencyStep = ClampFrequencyStep(int64(e.config.FrequencyStep) + delta)
	e.sweepChanged()
}

func (e *Engine) blacklistPeak() {
	peak := e.peak.State()
	e.history.Blacklist(peak.Index)
	e.logger.Info("bin blacklisted",
		slog.Int("index", peak.Index),
		slog.Uint64("frequency", uint64(peak.Frequency)))
	e.sweepChanged()
}

func (e *Engine) sweepChanged() {
	e.peak.Reset(e.config)
	e.clock.Delay(e.settleDelay)
}
