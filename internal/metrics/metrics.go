package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
)

const namespace = "handheld_spectrum"

// Metrics exposes analyzer activity as Prometheus collectors. It implements
// spectrum.Observer so it can be attached to an engine directly.
type Metrics struct {
	registry *prometheus.Registry

	sessions         prometheus.Counter     // Sessions started
	sessionActive    prometheus.Gauge       // 1 while a session runs
	passes           *prometheus.CounterVec // Sweep passes by result
	binsMeasured     prometheus.Counter     // Bins sampled across all passes
	peakReplacements prometheus.Counter     // Passes that replaced the peak
	listens          *prometheus.CounterVec // Listen dwells, split by retune
	listening        prometheus.Gauge       // 1 while parked on the peak
	peakRSSI         prometheus.Gauge       // Latest peak strength
	peakFrequency    prometheus.Gauge       // Latest peak frequency
	centerFrequency  prometheus.Gauge       // Center of the current span
}

// New creates the collectors on their own registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Number of analyzer sessions started",
		}),
		sessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_active",
			Help:      "Whether an analyzer session is running",
		}),
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Number of sweep passes, complete or aborted by a key press",
		}, []string{"result"}),
		binsMeasured: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bins_measured_total",
			Help:      "Number of bins sampled",
		}),
		peakReplacements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peak_replacements_total",
			Help:      "Number of passes that replaced the tracked peak",
		}),
		listens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listens_total",
			Help:      "Number of listen dwells on the peak frequency",
		}, []string{"retuned"}),
		listening: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listening",
			Help:      "Whether the receiver is parked on the peak with audio enabled",
		}),
		peakRSSI: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_rssi",
			Help:      "Strength of the tracked peak in raw RSSI units",
		}),
		peakFrequency: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_frequency_hz",
			Help:      "Frequency of the tracked peak",
		}),
		centerFrequency: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "center_frequency_hz",
			Help:      "Center frequency of the swept span",
		}),
	}
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SessionStarted(cfg spectrum.SweepConfig) {
	m.sessions.Inc()
	m.sessionActive.Set(1)
	m.listening.Set(0)
	m.centerFrequency.Set(float64(cfg.CenterFrequency))
}

func (m *Metrics) SessionStopped() {
	m.sessionActive.Set(0)
	m.listening.Set(0)
}

func (m *Metrics) PassCompleted(r spectrum.PassReport) {
	result := "complete"
	if r.Aborted {
		result = "aborted"
	}
	m.passes.WithLabelValues(result).Inc()
	m.binsMeasured.Add(float64(r.Measured))
	if r.Replaced {
		m.peakReplacements.Inc()
	}

	m.listening.Set(0)
	m.peakRSSI.Set(float64(r.Peak.RSSI))
	m.peakFrequency.Set(float64(r.Peak.Frequency))
	m.centerFrequency.Set(float64(r.Config.CenterFrequency))
}

func (m *Metrics) Listened(r spectrum.ListenReport) {
	retuned := "false"
	if r.Retuned {
		retuned = "true"
	}
	m.listens.WithLabelValues(retuned).Inc()

	m.listening.Set(1)
	m.peakRSSI.Set(float64(r.RSSI))
	m.peakFrequency.Set(float64(r.Frequency))
}

var _ spectrum.Observer = (*Metrics)(nil)
