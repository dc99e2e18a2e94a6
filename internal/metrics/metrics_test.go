package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

func TestMetrics_Observer(t *testing.T) {
	m := New()
	cfg := spectrum.DefaultSweepConfig()

	m.SessionStarted(cfg)
	m.PassCompleted(spectrum.PassReport{Config: cfg, Measured: 32, Replaced: true,
		Peak: spectrum.PeakState{Frequency: 433_125_000, RSSI: 130}})
	m.PassCompleted(spectrum.PassReport{Config: cfg, Measured: 5, Aborted: true,
		Peak: spectrum.PeakState{Frequency: 433_125_000, RSSI: 130}})
	m.Listened(spectrum.ListenReport{Frequency: 433_125_000, RSSI: 128, Retuned: true})
	m.Listened(spectrum.ListenReport{Frequency: 433_125_000, RSSI: 126})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "sessions", got: testutil.ToFloat64(m.sessions), want: 1},
		{name: "active", got: testutil.ToFloat64(m.sessionActive), want: 1},
		{name: "complete passes", got: testutil.ToFloat64(m.passes.WithLabelValues("complete")), want: 1},
		{name: "aborted passes", got: testutil.ToFloat64(m.passes.WithLabelValues("aborted")), want: 1},
		{name: "bins", got: testutil.ToFloat64(m.binsMeasured), want: 37},
		{name: "replacements", got: testutil.ToFloat64(m.peakReplacements), want: 1},
		{name: "retuned listens", got: testutil.ToFloat64(m.listens.WithLabelValues("true")), want: 1},
		{name: "listens", got: testutil.ToFloat64(m.listens.WithLabelValues("false")), want: 1},
		{name: "listening", got: testutil.ToFloat64(m.listening), want: 1},
		{name: "peak rssi", got: testutil.ToFloat64(m.peakRSSI), want: 126},
		{name: "center", got: testutil.ToFloat64(m.centerFrequency), want: float64(spectrum.DefaultCenterFrequency)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}

	m.SessionStopped()
	if got := testutil.ToFloat64(m.sessionActive); got != 0 {
		t.Errorf("Expected inactive session, got %v", got)
	}
	if got := testutil.ToFloat64(m.listening); got != 0 {
		t.Errorf("Expected not listening after stop, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SessionStarted(spectrum.DefaultSweepConfig())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "handheld_spectrum_sessions_total 1") {
		t.Errorf("Expected sessions counter in output:\n%s", body)
	}
}
