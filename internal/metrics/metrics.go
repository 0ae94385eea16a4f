// Package metrics exposes session counters on a private Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hologram"

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// which keeps tests and tools free of registry setup.
type Metrics struct {
	registry *prometheus.Registry

	detectionFrames  prometheus.Counter
	detectionErrors  prometheus.Counter
	malformedHands   prometheus.Counter
	unknownHands     prometheus.Counter
	detectionLatency prometheus.Histogram
	handsDetected    *prometheus.GaugeVec
	renderTicks      prometheus.Counter
	focusChanges     prometheus.Counter
	fps              prometheus.Gauge
	wsClients        prometheus.Gauge
}

// New registers all collectors on a fresh registry, plus the Go runtime
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		detectionFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "detection", Name: "frames_total",
			Help: "Detection results applied to the interaction state.",
		}),
		detectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "detection", Name: "errors_total",
			Help: "Detection calls that failed.",
		}),
		malformedHands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "detection", Name: "malformed_hands_total",
			Help: "Hands dropped for not carrying 21 landmarks.",
		}),
		unknownHands: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "detection", Name: "unknown_hands_total",
			Help: "Hands dropped for unrecognised handedness.",
		}),
		detectionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "detection", Name: "latency_seconds",
			Help:    "Time spent in one Detect call.",
			Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		handsDetected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "detection", Name: "hand_present",
			Help: "1 when the hand role was seen in the latest frame.",
		}, []string{"role"}),
		renderTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "render", Name: "ticks_total",
			Help: "Render ticks produced.",
		}),
		focusChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "render", Name: "focus_changes_total",
			Help: "Times the focused body changed.",
		}),
		fps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "render", Name: "fps",
			Help: "Render ticks counted over the last second.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "server", Name: "ws_clients",
			Help: "Connected websocket display clients.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.detectionFrames,
		m.detectionErrors,
		m.malformedHands,
		m.unknownHands,
		m.detectionLatency,
		m.handsDetected,
		m.renderTicks,
		m.focusChanges,
		m.fps,
		m.wsClients,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDetection records one successful detection and how its hands were used.
func (m *Metrics) ObserveDetection(took time.Duration, left, right bool, malformed, unknown int) {
	if m == nil {
		return
	}
	m.detectionFrames.Inc()
	m.detectionLatency.Observe(took.Seconds())
	m.malformedHands.Add(float64(malformed))
	m.unknownHands.Add(float64(unknown))
	m.handsDetected.WithLabelValues("left").Set(boolToFloat(left))
	m.handsDetected.WithLabelValues("right").Set(boolToFloat(right))
}

// DetectionFailed counts a failed Detect call.
func (m *Metrics) DetectionFailed() {
	if m == nil {
		return
	}
	m.detectionErrors.Inc()
}

// RenderTick counts a render tick.
func (m *Metrics) RenderTick(focusChanged bool) {
	if m == nil {
		return
	}
	m.renderTicks.Inc()
	if focusChanged {
		m.focusChanges.Inc()
	}
}

// SetFPS publishes the measured frame rate.
func (m *Metrics) SetFPS(fps int) {
	if m == nil {
		return
	}
	m.fps.Set(float64(fps))
}

// WSClientConnected and WSClientDisconnected track the websocket client gauge.
func (m *Metrics) WSClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) WSClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
