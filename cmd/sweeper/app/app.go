package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/handheld-spectrum/internal/display"
	"github.com/roman-kulish/handheld-spectrum/internal/metrics"
	"github.com/roman-kulish/handheld-spectrum/internal/radio"
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
	"github.com/roman-kulish/handheld-spectrum/internal/storage"
)

const (
	storageDir      = "data"
	shutdownTimeout = 5 * time.Second
)

// Run assembles the simulated radio around the analyzer engine and runs it
// until ctx is done or the user quits.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	env := radio.NewEnvironment(
		config.Environment.NoiseFloor,
		config.Environment.Jitter,
		config.Environment.Seed,
		config.Environment.Signals...,
	)
	receiver := radio.NewReceiver(env, config.Engine.Frequency, radio.WithLogger(logger))
	keypad := radio.NewKeypad(time.Duration(config.Engine.KeyHold))
	flashlight := &radio.Flashlight{}
	backlight := radio.NewBacklight(true)
	fb := display.NewFramebuffer()

	observers := []spectrum.Observer{}

	m := metrics.New()
	observers = append(observers, m)

	var recorder *Recorder
	if config.Storage.Enabled {
		store, dbPath, err := createStorage(&config.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close storage", slog.String("error", err.Error()))
			}
			if stat, err := os.Stat(dbPath); err == nil {
				logger.Info("capture saved", slog.String("path", dbPath), slog.String("size", humanize.Bytes(uint64(stat.Size()))))
			}
		}()

		recorder = NewRecorder(store, config.Engine.Device,
			WithMaxBatchSize(config.Storage.MaxBatchSize),
			WithRecorderLogger(logger))
		recorder.Start(ctx)
		defer recorder.Close()

		observers = append(observers, recorder)
	}

	engine := spectrum.New(spectrum.Hardware{
		Radio:      receiver,
		Keypad:     keypad,
		Clock:      radio.Clock{Scale: config.Engine.TimeScale},
		Display:    fb,
		Backlight:  backlight,
		Activation: flashlight,
	},
		spectrum.WithLogger(logger),
		spectrum.WithObserver(spectrum.Observers(observers...)),
		spectrum.WithInitialConfig(config.Engine.SweepConfig()),
		spectrum.WithTriggerLevel(config.Engine.TriggerLevel),
		spectrum.WithAgingCeiling(config.Engine.AgingCeiling),
		spectrum.WithListenDwell(time.Duration(config.Engine.ListenDwell)),
		spectrum.WithSettleDelay(time.Duration(config.Engine.SettleDelay)),
	)

	options := []func(*Orchestrator){
		WithTickInterval(time.Duration(config.Engine.TickInterval)),
	}
	if config.Display.Terminal {
		options = append(options, WithTerminal(os.Stdout, time.Duration(config.Display.Refresh)))
	}
	snapshotter, err := display.NewSnapshotter(fb, config.Display.Scale)
	if err != nil {
		return fmt.Errorf("failed to create snapshotter: %w", err)
	}
	options = append(options, WithSnapshotter(snapshotter))

	orchestrator := NewOrchestrator(engine, fb, logger, options...)

	var wg sync.WaitGroup

	if config.Metrics.ListenAddress != "" {
		server := newMetricsServer(&config.Metrics, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveMetrics(ctx, server, logger)
		}()
	}

	if config.Display.Terminal {
		input := NewKeyboardInput(keypad, flashlight, receiver, func() {
			path := snapshotPath(config.Display.Snapshot, time.Now())
			if err := orchestrator.WriteSnapshot(path); err != nil {
				logger.Error(err.Error())
			}
		}, logger)

		// not waited for, a blocked terminal read is released by process exit
		go func() {
			if err := input.Run(ctx, cancel); err != nil {
				logger.Warn("keyboard input disabled", slog.String("error", err.Error()))
			}
		}()
	}

	if config.Engine.AutoActivate {
		flashlight.TurnOn()
	}

	logger.Info("simulator started",
		slog.String("device", config.Engine.Device),
		slog.Uint64("frequency", uint64(config.Engine.Frequency)),
		slog.Int("signals", len(config.Environment.Signals)))

	runErr := orchestrator.Run(ctx)
	cancel()
	wg.Wait()

	if config.Display.Snapshot != "" {
		if err := orchestrator.WriteSnapshot(config.Display.Snapshot); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}

	return runErr
}

func newMetricsServer(config *MetricsConfig, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(config.Path, m.Handler())

	return &http.Server{
		Addr:              config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func serveMetrics(ctx context.Context, server *http.Server, logger *slog.Logger) {
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", slog.String("error", err.Error()))
		}
	}()

	logger.Info("serving metrics", slog.String("address", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", slog.String("error", err.Error()))
	}
}

// snapshotPath derives a timestamped file name next to the configured
// snapshot path.
func snapshotPath(base string, now time.Time) string {
	if base == "" {
		base = "snapshot.png"
	}
	ext := filepath.Ext(base)
	name := base[:len(base)-len(ext)]
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s_%s%s", name, now.UTC().Format("20060102_150405"), ext)
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	dbPath := config.DataDirectory
	if dbPath == "" {
		dbPath = storageDir
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(wd, dbPath)
	}

	stat, err := os.Stat(dbPath)
	switch {
	case os.IsNotExist(err):
		return nil, "", fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
	case err != nil:
		return nil, "", fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	case !stat.IsDir():
		return nil, "", fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("spectrum_capture_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), dbPath, nil
}
