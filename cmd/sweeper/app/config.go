package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/handheld-spectrum/internal/radio"
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

const (
	defaultTickInterval  = 10 * time.Millisecond
	defaultKeyHold       = 150 * time.Millisecond
	defaultTerminalRate  = 200 * time.Millisecond
	defaultSnapshotScale = 4
	defaultLogMaxSize    = 10 // megabytes
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28 // days
)

// Duration is a time.Duration written as "150ms", "1s" or "2m" in the
// configuration file.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	duration, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Duration) Validate() error {
	if d < 0 {
		return fmt.Errorf("app.Duration: must not be negative: %s", d)
	}
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Config represents the main application configuration
type Config struct {
	Settings    Settings          `yaml:"settings"`
	Engine      EngineConfig      `yaml:"engine"`
	Environment EnvironmentConfig `yaml:"environment"`
	Storage     StorageConfig     `yaml:"storage"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Display     DisplayConfig     `yaml:"display"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel      string `yaml:"logLevel"`
	LogFile       string `yaml:"logFile"`       // Rotated log file, stderr only when empty
	LogMaxSize    int    `yaml:"logMaxSize"`    // Megabytes before rotation
	LogMaxBackups int    `yaml:"logMaxBackups"` // Rotated files to keep
	LogMaxAge     int    `yaml:"logMaxAge"`     // Days to keep rotated files
	LogCompress   bool   `yaml:"logCompress"`
}

// Level parses LogLevel, defaulting to info.
func (s *Settings) Level() (slog.Level, error) {
	var level slog.Level
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return level, nil
}

// EngineConfig holds the analyzer start-up parameters and host loop timing.
type EngineConfig struct {
	Device              string   `yaml:"device"`
	Frequency           uint32   `yaml:"frequency"` // Receiver frequency before activation, becomes the sweep center
	FrequencyStep       uint32   `yaml:"frequencyStep"`
	BandwidthMultiplier uint8    `yaml:"bandwidthMultiplier"`
	TriggerLevel        uint8    `yaml:"triggerLevel"`
	AgingCeiling        uint8    `yaml:"agingCeiling"`
	ListenDwell         Duration `yaml:"listenDwell"`
	SettleDelay         Duration `yaml:"settleDelay"`
	TickInterval        Duration `yaml:"tickInterval"`
	KeyHold             Duration `yaml:"keyHold"`
	TimeScale           float64  `yaml:"timeScale"` // Multiplier applied to every radio delay
	AutoActivate        bool     `yaml:"autoActivate"`
}

// SweepConfig returns the initial sweep parameters, clamped to the ranges the
// engine accepts.
func (c *EngineConfig) SweepConfig() spectrum.SweepConfig {
	return spectrum.SweepConfig{
		CenterFrequency:     spectrum.ClampFrequency(int64(c.Frequency)),
		FrequencyStep:       spectrum.ClampFrequencyStep(int64(c.FrequencyStep)),
		BandwidthMultiplier: spectrum.ClampBandwidthMultiplier(int(c.BandwidthMultiplier)),
	}
}

// EnvironmentConfig describes the simulated RF scene.
type EnvironmentConfig struct {
	Seed       uint64         `yaml:"seed"`
	NoiseFloor float64        `yaml:"noiseFloor"`
	Jitter     float64        `yaml:"jitter"`
	Signals    []radio.Signal `yaml:"signals"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// MetricsConfig controls the Prometheus endpoint. It is disabled when the
// listen address is empty.
type MetricsConfig struct {
	ListenAddress string `yaml:"listenAddress"`
	Path          string `yaml:"path"`
}

// DisplayConfig controls the terminal view and the snapshot written on exit.
type DisplayConfig struct {
	Terminal bool     `yaml:"terminal"`
	Refresh  Duration `yaml:"refresh"`
	Snapshot string   `yaml:"snapshot"` // PNG written on exit, skipped when empty
	Scale    int      `yaml:"scale"`
}

// LoadConfig reads the YAML configuration at path, fills in defaults and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML document into a validated Config.
func ParseConfig(data []byte) (*Config, error) {
	config := defaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultConfig() *Config {
	sweep := spectrum.DefaultSweepConfig()
	return &Config{
		Settings: Settings{
			LogLevel:      "info",
			LogMaxSize:    defaultLogMaxSize,
			LogMaxBackups: defaultLogMaxBackups,
			LogMaxAge:     defaultLogMaxAge,
		},
		Engine: EngineConfig{
			Device:              "simulator",
			Frequency:           sweep.CenterFrequency,
			FrequencyStep:       sweep.FrequencyStep,
			BandwidthMultiplier: sweep.BandwidthMultiplier,
			TriggerLevel:        spectrum.DefaultTriggerLevel,
			AgingCeiling:        spectrum.DefaultAgingCeiling,
			ListenDwell:         Duration(spectrum.DefaultListenDwell),
			SettleDelay:         Duration(spectrum.DefaultSettleDelay),
			TickInterval:        Duration(defaultTickInterval),
			KeyHold:             Duration(defaultKeyHold),
			TimeScale:           1,
			AutoActivate:        true,
		},
		Environment: EnvironmentConfig{
			Seed:       1,
			NoiseFloor: 40,
			Jitter:     4,
		},
		Storage: StorageConfig{
			DataDirectory: storageDir,
			MaxBatchSize:  maxBatchSize,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Display: DisplayConfig{
			Refresh: Duration(defaultTerminalRate),
			Scale:   defaultSnapshotScale,
		},
	}
}

// applyDefaults restores defaults for values a document explicitly zeroed
// where zero is meaningless.
func (c *Config) applyDefaults() {
	if c.Engine.TickInterval == 0 {
		c.Engine.TickInterval = Duration(defaultTickInterval)
	}
	if c.Engine.TimeScale == 0 {
		c.Engine.TimeScale = 1
	}
	if c.Storage.MaxBatchSize == 0 {
		c.Storage.MaxBatchSize = maxBatchSize
	}
	if c.Display.Scale == 0 {
		c.Display.Scale = defaultSnapshotScale
	}
	if c.Display.Refresh == 0 {
		c.Display.Refresh = Duration(defaultTerminalRate)
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func (c *Config) Validate() error {
	if _, err := c.Settings.Level(); err != nil {
		return fmt.Errorf("app.Config: %w", err)
	}

	e := &c.Engine
	if e.Frequency < spectrum.MinFrequency || e.Frequency > spectrum.MaxFrequency {
		return fmt.Errorf("app.Config: frequency must be between %d and %d Hz: %d given",
			spectrum.MinFrequency, spectrum.MaxFrequency, e.Frequency)
	}
	if e.FrequencyStep < spectrum.MinFrequencyStep || e.FrequencyStep > spectrum.MaxFrequencyStep {
		return fmt.Errorf("app.Config: frequency step must be between %d and %d Hz: %d given",
			spectrum.MinFrequencyStep, spectrum.MaxFrequencyStep, e.FrequencyStep)
	}
	if e.BandwidthMultiplier > spectrum.MaxBandwidthMultiplier {
		return fmt.Errorf("app.Config: bandwidth multiplier must not exceed %d: %d given",
			spectrum.MaxBandwidthMultiplier, e.BandwidthMultiplier)
	}
	if e.TriggerLevel < spectrum.MinTriggerLevel {
		return fmt.Errorf("app.Config: trigger level must be at least %d: %d given",
			spectrum.MinTriggerLevel, e.TriggerLevel)
	}
	if e.TimeScale < 0 {
		return fmt.Errorf("app.Config: time scale must not be negative: %0.2f given", e.TimeScale)
	}

	durations := []struct {
		name  string
		value Duration
	}{
		{name: "listen dwell", value: e.ListenDwell},
		{name: "settle delay", value: e.SettleDelay},
		{name: "tick interval", value: e.TickInterval},
		{name: "key hold", value: e.KeyHold},
		{name: "terminal refresh", value: c.Display.Refresh},
	}
	for _, d := range durations {
		if err := d.value.Validate(); err != nil {
			return fmt.Errorf("app.Config: invalid %s: %w", d.name, err)
		}
	}

	if c.Environment.Jitter < 0 {
		return errors.New("app.Config: jitter must not be negative")
	}
	for i, s := range c.Environment.Signals {
		if s.Frequency == 0 {
			return fmt.Errorf("app.Config: signal %d: frequency required", i)
		}
		if s.Width == 0 {
			return fmt.Errorf("app.Config: signal %d: width required", i)
		}
	}

	if c.Storage.MaxBatchSize < 0 {
		return fmt.Errorf("app.Config: max batch size must be positive: %d given", c.Storage.MaxBatchSize)
	}
	if c.Display.Scale < 1 {
		return fmt.Errorf("app.Config: snapshot scale must be at least 1: %d given", c.Display.Scale)
	}

	return nil
}
