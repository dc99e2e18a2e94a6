package spectrum

import (
	"io"
	"log/slog"
	"time"
)

// scanFilterBandwidth is programmed into the RF filter register for the
// duration of a session; the host's own setting is restored on exit.
const scanFilterBandwidth uint16 = 0x3028

// session holds what must be restored when the user leaves the analyzer.
type session struct {
	active         bool
	savedFrequency uint32
	savedAF        uint16
	savedFilter    uint16
}

// Engine is the spectrum analyzer. It is driven by the host calling Tick from
// its main loop and is not safe for concurrent use.
type Engine struct {
	radio      Radio
	keypad     Keypad
	clock      Clock
	display    Display
	backlight  Backlight
	activation Activation

	logger   *slog.Logger
	observer Observer

	config       SweepConfig
	trigger      uint8
	history      History
	peak         *PeakTracker
	agingCeiling uint8
	listenDwell  time.Duration
	settleDelay  time.Duration

	key             Key
	prevKey         Key
	remeasure       bool
	listenFrequency uint32
	session         session
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) func(*Engine) {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver sets the observer notified about passes, listens and sessions.
func WithObserver(o Observer) func(*Engine) {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithAgingCeiling sets the number of passes after which a weaker maximum
// replaces the recorded peak.
func WithAgingCeiling(passes uint8) func(*Engine) {
	return func(e *Engine) {
		e.agingCeiling = passes
	}
}

// WithListenDwell sets how long one listen step parks on the peak.
func WithListenDwell(d time.Duration) func(*Engine) {
	return func(e *Engine) {
		e.listenDwell = d
	}
}

// WithSettleDelay sets the pause after a sweep parameter change.
func WithSettleDelay(d time.Duration) func(*Engine) {
	return func(e *Engine) {
		e.settleDelay = d
	}
}

// WithInitialConfig sets the step and bandwidth multiplier the engine starts
// with. The center frequency is taken from the radio when a session starts.
func WithInitialConfig(cfg SweepConfig) func(*Engine) {
	return func(e *Engine) {
		e.config = SweepConfig{
			CenterFrequency:     ClampFrequency(int64(cfg.CenterFrequency)),
			FrequencyStep:       ClampFrequencyStep(int64(cfg.FrequencyStep)),
			BandwidthMultiplier: ClampBandwidthMultiplier(int(cfg.BandwidthMultiplier)),
		}
	}
}

// WithTriggerLevel sets the initial squelch trigger level.
func WithTriggerLevel(level uint8) func(*Engine) {
	return func(e *Engine) {
		e.trigger = ClampTriggerLevel(int(level))
	}
}

// New creates an inactive engine. A session starts on the first Tick that
// sees the activation signal.
func New(hw Hardware, options ...func(*Engine)) *Engine {
	e := &Engine{
		radio:       hw.Radio,
		keypad:      hw.Keypad,
		clock:       hw.Clock,
		display:     hw.Display,
		backlight:   hw.Backlight,
		activation:  hw.Activation,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:    nopObserver{},
		config:      DefaultSweepConfig(),
		trigger:     DefaultTriggerLevel,
		listenDwell: DefaultListenDwell,
		settleDelay: DefaultSettleDelay,
		key:         KeyNone,
		prevKey:     KeyNone,
	}

	for _, option := range options {
		option(e)
	}

	e.peak = NewPeakTracker(e.agingCeiling)
	e.peak.Reset(e.config)
	return e
}

// Tick runs one iteration of the analyzer: input, then either a listen dwell
// or a sweep pass, then a frame for the display. It does nothing while the
// host holds the radio.
func (e *Engine) Tick() {
	if e.radio.IsLockedByHost() {
		return
	}

	if !e.session.active && e.activation.Signaled() {
		e.activation.Acknowledge()
		e.start()
	}
	if !e.session.active {
		return
	}

	if !e.handleInput() {
		return
	}

	if e.Listening() {
		e.listen()
	} else {
		e.scan()
	}

	e.display.Present(BuildFrame(e.config, &e.history, e.peak.State(), e.trigger))
}

// Active reports whether a session is running.
func (e *Engine) Active() bool {
	return e.session.active
}

// Listening reports whether the next update parks on the peak.
func (e *Engine) Listening() bool {
	return e.peak.State().RSSI >= e.trigger
}

// Snapshot returns a copy of the engine state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Active:       e.session.active,
		Listening:    e.Listening(),
		Config:       e.config,
		Peak:         e.peak.State(),
		TriggerLevel: e.trigger,
		History:      e.history.Bins(HistorySize),
	}
}

func (e *Engine) start() {
	e.session = session{
		active:         true,
		savedFrequency: e.radio.Frequency(),
		savedAF:        e.radio.ReadRegister(RegisterAF),
		savedFilter:    e.radio.ReadRegister(RegisterRFFilter),
	}

	e.config.CenterFrequency = ClampFrequency(int64(e.session.savedFrequency))
	e.key, e.prevKey = KeyNone, KeyNone
	e.listenFrequency = 0

	e.radio.WriteRegister(RegisterAF, 0)
	e.radio.WriteRegister(RegisterRFFilter, scanFilterBandwidth)
	e.peak.Reset(e.config)

	e.logger.Info("session started",
		slog.Uint64("frequency", uint64(e.config.CenterFrequency)),
		slog.Uint64("step", uint64(e.config.FrequencyStep)),
		slog.Int("bandwidthMultiplier", int(e.config.BandwidthMultiplier)),
		slog.Int("triggerLevel", int(e.trigger)))
	e.observer.SessionStarted(e.config)
}

func (e *Engine) stop() {
	e.display.Clear()
	e.radio.SetFrequency(e.session.savedFrequency)
	e.radio.WriteRegister(RegisterAF, e.session.savedAF)
	e.radio.WriteRegister(RegisterRFFilter, e.session.savedFilter)
	e.session.active = false

	e.logger.Info("session stopped", slog.Uint64("frequency", uint64(e.session.savedFrequency)))
	e.observer.SessionStopped()
}
