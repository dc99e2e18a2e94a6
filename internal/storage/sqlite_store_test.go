package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	s := NewSqliteStore(filepath.Join(t.TempDir(), "capture.db"))
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return s
}

func testPass(ts time.Time, aborted bool, peak uint8) Pass {
	cfg := spectrum.SweepConfig{CenterFrequency: 433 * spectrum.MHz, FrequencyStep: spectrum.DefaultFrequencyStep, BandwidthMultiplier: 2}
	bins := make([]uint8, cfg.MeasurementCount())
	bins[3] = peak
	bins[7] = spectrum.Blacklisted

	return NewPass(ts, spectrum.PassReport{
		Config:   cfg,
		Measured: 31,
		Aborted:  aborted,
		Bins:     bins,
		Peak:     spectrum.PeakState{Frequency: cfg.BinFrequency(3), RSSI: peak, Index: 3},
	})
}

func TestSqliteStore_Sessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id1, err := s.CreateSession(ctx, "sim-1", spectrum.DefaultSweepConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	id2, err := s.CreateSession(ctx, "sim-2", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	sess, err := s.Session(ctx, id1)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if sess.Device != "sim-1" || sess.Config == nil {
		t.Errorf("Unexpected session %+v", sess)
	}
	if want := `{"centerFrequency":433000000,"frequencyStep":400000,"bandwidthMultiplier":2}`; *sess.Config != want {
		t.Errorf("Expected config %s, got %s", want, *sess.Config)
	}

	sessions, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != id1 || sessions[1].ID != id2 {
		t.Fatalf("Unexpected sessions %+v", sessions)
	}
	if sessions[1].Config != nil {
		t.Errorf("Expected no config, got %q", *sessions[1].Config)
	}
}

func TestSqliteStore_Passes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sessionID, err := s.CreateSession(ctx, "sim", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	passes := []Pass{
		testPass(base, false, 40),
		testPass(base.Add(100*time.Millisecond), true, 50),
		testPass(base.Add(200*time.Millisecond), false, 60),
		testPass(base.Add(time.Second), false, 70),
	}
	if err := s.StorePasses(ctx, sessionID, passes); err != nil {
		t.Fatalf("Failed to store passes: %v", err)
	}

	tests := []struct {
		name  string
		opts  []ReaderOption
		peaks []uint8
	}{
		{name: "all", peaks: []uint8{40, 50, 60, 70}},
		{name: "complete only", opts: []ReaderOption{WithCompleteOnly()}, peaks: []uint8{40, 60, 70}},
		{name: "start time", opts: []ReaderOption{WithStartTime(base.Add(150 * time.Millisecond))}, peaks: []uint8{60, 70}},
		{name: "time range", opts: []ReaderOption{WithTimeRange(base, base.Add(500*time.Millisecond))}, peaks: []uint8{40, 50, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.ReadPasses(ctx, sessionID, tt.opts...)
			if err != nil {
				t.Fatalf("Failed to create reader: %v", err)
			}
			defer r.Close()

			if r.Session().ID != sessionID {
				t.Errorf("Expected session %d, got %d", sessionID, r.Session().ID)
			}

			var peaks []uint8
			for r.Next(ctx) {
				p := r.Current()
				peaks = append(peaks, p.PeakRSSI)

				if len(p.Bins) != 32 || p.Bins[3] != p.PeakRSSI || p.Bins[7] != spectrum.Blacklisted {
					t.Errorf("Unexpected bins %v", p.Bins)
				}
				if p.SpanStart != 432_600_000 || p.ScanStep != 25_000 || p.Frequency(3) != p.PeakFrequency {
					t.Errorf("Unexpected geometry %+v", p)
				}
			}
			if err := r.Error(); err != nil {
				t.Fatalf("Reader failed: %v", err)
			}

			if len(peaks) != len(tt.peaks) {
				t.Fatalf("Expected %d passes, got %d", len(tt.peaks), len(peaks))
			}
			for i := range peaks {
				if peaks[i] != tt.peaks[i] {
					t.Errorf("Pass %d: expected peak %d, got %d", i, tt.peaks[i], peaks[i])
				}
			}
		})
	}
}

func TestSqliteStore_ReadPassesValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sessionID, err := s.CreateSession(ctx, "sim", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	now := time.Now()
	if _, err := s.ReadPasses(ctx, sessionID, WithTimeRange(now, now.Add(-time.Minute))); err == nil {
		t.Error("Expected inverted time range to fail")
	}
	if _, err := s.ReadPasses(ctx, 0); err == nil {
		t.Error("Expected missing session ID to fail")
	}
	if _, err := s.ReadPasses(ctx, sessionID+100); err == nil {
		t.Error("Expected unknown session to fail")
	}
}

func TestSqliteStore_LargeBatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sessionID, err := s.CreateSession(ctx, "sim", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// more rows than fit into one statement's bound variables
	const count = 3000
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	passes := make([]Pass, 0, count)
	for i := 0; i < count; i++ {
		passes = append(passes, testPass(base.Add(time.Duration(i)*time.Millisecond), false, uint8(i%200)))
	}
	if err := s.StorePasses(ctx, sessionID, passes); err != nil {
		t.Fatalf("Failed to store passes: %v", err)
	}

	r, err := s.ReadPasses(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer r.Close()

	n := 0
	for r.Next(ctx) {
		if got, want := r.Current().PeakRSSI, uint8(n%200); got != want {
			t.Fatalf("Pass %d: expected peak %d, got %d", n, want, got)
		}
		n++
	}
	if err := r.Error(); err != nil {
		t.Fatalf("Reader failed: %v", err)
	}
	if n != count {
		t.Errorf("Expected %d passes, got %d", count, n)
	}
}

func TestSqliteStore_Listens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sessionID, err := s.CreateSession(ctx, "sim", nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reports := []spectrum.ListenReport{
		{Frequency: 446_006_250, RSSI: 140, Retuned: true},
		{Frequency: 446_006_250, RSSI: 135},
	}
	for i, r := range reports {
		if err := s.StoreListen(ctx, sessionID, NewListen(base.Add(time.Duration(i)*time.Second), r)); err != nil {
			t.Fatalf("Failed to store listen %d: %v", i, err)
		}
	}

	listens, err := s.Listens(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to read listens: %v", err)
	}
	if len(listens) != 2 {
		t.Fatalf("Expected 2 listens, got %d", len(listens))
	}
	if !listens[0].Retuned || listens[0].RSSI != 140 || listens[1].Retuned || listens[1].RSSI != 135 {
		t.Errorf("Unexpected listens %+v", listens)
	}
	if !listens[1].Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("Expected timestamp %s, got %s", base.Add(time.Second), listens[1].Timestamp)
	}
}

func TestSqliteStore_CloseTwice(t *testing.T) {
	s := NewSqliteStore(filepath.Join(t.TempDir(), "capture.db"))
	if _, err := s.CreateSession(context.Background(), "sim", "raw"); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Expected second close to succeed, got %v", err)
	}
}
