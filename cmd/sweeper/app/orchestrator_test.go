package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/display"
	"github.com/roman-kulish/handheld-spectrum/internal/radio"
	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestOrchestrator_Run(t *testing.T) {
	env := radio.NewEnvironment(30, 0, 1, radio.Signal{Frequency: 433_050_000, Level: 200, Width: 50_000})
	receiver := radio.NewReceiver(env, 433_000_000)
	flashlight := &radio.Flashlight{}
	fb := display.NewFramebuffer()

	engine := spectrum.New(spectrum.Hardware{
		Radio:      receiver,
		Keypad:     radio.NewKeypad(time.Millisecond),
		Clock:      radio.Clock{Scale: 0.001},
		Display:    fb,
		Backlight:  radio.NewBacklight(true),
		Activation: flashlight,
	}, spectrum.WithListenDwell(10*time.Millisecond))

	snapshotter, err := display.NewSnapshotter(fb, 2)
	if err != nil {
		t.Fatalf("Failed to create snapshotter: %v", err)
	}

	var terminal syncBuffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(engine, fb, logger,
		WithTickInterval(time.Millisecond),
		WithTerminal(&terminal, 20*time.Millisecond),
		WithSnapshotter(snapshotter),
	)

	flashlight.TurnOn()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := o.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !engine.Active() {
		t.Fatal("Expected an active session")
	}
	if flashlight.Signaled() {
		t.Error("Expected flashlight acknowledged")
	}
	if fb.Frame() == nil {
		t.Fatal("Expected a presented frame")
	}

	state := o.State()
	if state.Peak.Frequency != 433_050_000 {
		t.Errorf("Expected peak at 433050000, got %d", state.Peak.Frequency)
	}
	if !state.Listening || !receiver.AudioOpen() {
		t.Error("Expected the receiver parked on the signal")
	}

	if out := terminal.String(); !strings.Contains(out, "listen  peak 433.050MHz") {
		t.Errorf("Expected status line in terminal output, got:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "shots", "snapshot.png")
	if err := o.WriteSnapshot(path); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}
	if stat, err := os.Stat(path); err != nil || stat.Size() == 0 {
		t.Errorf("Expected snapshot at %s: %v", path, err)
	}
}

func TestStatusLine(t *testing.T) {
	if got := statusLine(spectrum.Snapshot{}); !strings.HasPrefix(got, "idle") {
		t.Errorf("Expected idle status, got %q", got)
	}

	got := statusLine(spectrum.Snapshot{
		Active:       true,
		Config:       spectrum.DefaultSweepConfig(),
		Peak:         spectrum.PeakState{Frequency: 433_925_000, RSSI: 42},
		TriggerLevel: 100,
	})
	want := "scan  peak 433.925MHz rssi 42  center 433.000MHz  step 400.000kHz  bw x2  trigger 100"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSnapshotPath(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC)

	tests := []struct {
		base string
		want string
	}{
		{base: "", want: "snapshot_20240501_123015.png"},
		{base: "out/shot.png", want: "out/shot_20240501_123015.png"},
		{base: "out/shot", want: "out/shot_20240501_123015.png"},
	}
	for _, tt := range tests {
		if got := snapshotPath(tt.base, now); got != tt.want {
			t.Errorf("snapshotPath(%q): expected %q, got %q", tt.base, tt.want, got)
		}
	}
}
