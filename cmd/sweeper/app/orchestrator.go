package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/handheld-spectrum/internal/display"
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

// WithTerminal redraws the framebuffer on w at the given interval.
func WithTerminal(w io.Writer, refresh time.Duration) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.terminal = w
		o.refresh = refresh
	}
}

// WithSnapshotter enables PNG snapshots of the display.
func WithSnapshotter(s *display.Snapshotter) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.snapshotter = s
	}
}

// WithTickInterval sets the pause between engine ticks.
func WithTickInterval(d time.Duration) func(*Orchestrator) {
	return func(o *Orchestrator) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

// Orchestrator plays the role of the radio firmware main loop: it ticks the
// engine until the context is done and mirrors the display to the terminal.
type Orchestrator struct {
	engine *spectrum.Engine
	fb     *display.Framebuffer
	logger *slog.Logger

	tickInterval time.Duration

	terminal io.Writer
	refresh  time.Duration

	snapshotter *display.Snapshotter
	snapshotMu  sync.Mutex

	// engine state published after every tick, the engine itself is only
	// touched by the loop goroutine
	stateMu sync.Mutex
	state   spectrum.Snapshot

	wg sync.WaitGroup
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(engine *spectrum.Engine, fb *display.Framebuffer, logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		engine:       engine,
		fb:           fb,
		logger:       logger,
		tickInterval: defaultTickInterval,
	}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// Run ticks the engine until ctx is done. A tick that dwells on a signal
// takes longer than the interval, missed ticks are skipped.
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.terminal != nil && o.refresh > 0 {
		o.wg.Add(1)
		go o.renderTerminal(ctx)
	}

	ticker := time.NewTicker(o.tickInterval)
	defer ticker.Stop()

	var ticks uint64
	for {
		select {
		case <-ctx.Done():
			o.wg.Wait()
			o.logger.Debug("host loop stopped", slog.Uint64("ticks", ticks))
			return nil
		case <-ticker.C:
		}

		o.engine.Tick()
		ticks++

		if o.terminal != nil {
			state := o.engine.Snapshot()
			o.stateMu.Lock()
			o.state = state
			o.stateMu.Unlock()
		}
	}
}

// State returns the engine state published by the last tick.
func (o *Orchestrator) State() spectrum.Snapshot {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

// WriteSnapshot renders the display into a PNG file at path.
func (o *Orchestrator) WriteSnapshot(path string) (err error) {
	if o.snapshotter == nil {
		return fmt.Errorf("snapshots are disabled")
	}

	o.snapshotMu.Lock()
	defer o.snapshotMu.Unlock()

	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing snapshot: %w", cerr)
		}
	}()

	if err = o.snapshotter.WritePNG(f); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	o.logger.Info("snapshot written", slog.String("path", path))
	return nil
}

func (o *Orchestrator) renderTerminal(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var sb strings.Builder
		sb.WriteString("\033[H\033[2J")
		sb.WriteString(o.fb.Text())
		sb.WriteString(statusLine(o.State()))
		sb.WriteByte('\n')

		// raw mode terminals need explicit carriage returns
		if _, err := io.WriteString(o.terminal, strings.ReplaceAll(sb.String(), "\n", "\r\n")); err != nil {
			o.logger.Warn("terminal write failed", slog.String("error", err.Error()))
			return
		}
	}
}

// statusLine summarizes the analyzer state under the terminal view.
func statusLine(s spectrum.Snapshot) string {
	if !s.Active {
		return "idle: press f or space to start, q to quit"
	}

	state := "scan"
	if s.Listening {
		state = "listen"
	}

	return fmt.Sprintf("%s  peak %s rssi %d  center %s  step %s  bw x%d  trigger %d",
		state,
		siHz(s.Peak.Frequency),
		s.Peak.RSSI,
		siHz(s.Config.CenterFrequency),
		siHz(s.Config.FrequencyStep),
		s.Config.BandwidthMultiplier,
		s.TriggerLevel,
	)
}

func siHz(hz uint32) string {
	value, prefix := humanize.ComputeSI(float64(hz))
	return fmt.Sprintf("%0.3f%sHz", value, prefix)
}
