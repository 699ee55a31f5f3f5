package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for resilix. A disabled instance is
// a safe no-op, so call sites never need nil checks on individual metrics.
type Metrics struct {
	config MetricsConfig

	// Execution metrics
	executions        *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec

	// Fallback metrics
	fallbacks *prometheus.CounterVec

	// Confirmation gate metrics
	confirmationsRequested *prometheus.CounterVec

	// Tier health
	tierAvailable *prometheus.GaugeVec

	// Capability detection
	detections        prometheus.Counter
	detectionDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Total number of intent executions by tier and status",
			},
			[]string{"tier", "status"},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Duration of intent execution in seconds",
				Buckets:   buckets,
			},
			[]string{"tier"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallbacks_total",
				Help:      "Total number of fallbacks from a failed tier to a lower one",
			},
			[]string{"from_tier", "to_tier"},
		),
		confirmationsRequested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmations_requested_total",
				Help:      "Total number of confirmation-gate stops by tier",
			},
			[]string{"tier"},
		),
		tierAvailable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tier_available",
				Help:      "Tier availability (1=available, 0=unavailable)",
			},
			[]string{"tier"},
		),
		detections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capability_detections_total",
				Help:      "Total number of capability detection passes",
			},
		),
		detectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capability_detection_duration_seconds",
				Help:      "Duration of a full capability detection pass in seconds",
				Buckets:   buckets,
			},
		),
	}

	collectors := []prometheus.Collector{
		m.executions,
		m.executionDuration,
		m.fallbacks,
		m.confirmationsRequested,
		m.tierAvailable,
		m.detections,
		m.detectionDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return m, nil
}

// RecordExecution records one tier execution attempt.
func (m *Metrics) RecordExecution(tier string, success bool, duration time.Duration) {
	if m.registry == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	m.executions.WithLabelValues(tier, status).Inc()
	m.executionDuration.WithLabelValues(tier).Observe(duration.Seconds())
}

// RecordFallback records a fallback from one tier to another.
func (m *Metrics) RecordFallback(fromTier, toTier string) {
	if m.registry == nil {
		return
	}
	m.fallbacks.WithLabelValues(fromTier, toTier).Inc()
}

// RecordConfirmationRequested records a confirmation-gate stop.
func (m *Metrics) RecordConfirmationRequested(tier string) {
	if m.registry == nil {
		return
	}
	m.confirmationsRequested.WithLabelValues(tier).Inc()
}

// SetTierAvailable records whether a tier is available on this host.
func (m *Metrics) SetTierAvailable(tier string, available bool) {
	if m.registry == nil {
		return
	}
	v := 0.0
	if available {
		v = 1.0
	}
	m.tierAvailable.WithLabelValues(tier).Set(v)
}

// RecordDetection records one full capability detection pass.
func (m *Metrics) RecordDetection(duration time.Duration) {
	if m.registry == nil {
		return
	}
	m.detections.Inc()
	m.detectionDuration.Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint, or nil
// when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ListenAndServe serves the metrics endpoint on the configured address.
// It blocks, so callers typically run it in a goroutine.
func (m *Metrics) ListenAndServe() error {
	if m.registry == nil {
		return nil
	}
	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	return http.ListenAndServe(m.config.ListenAddress, mux)
}
