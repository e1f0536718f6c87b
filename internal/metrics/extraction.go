// Package metrics exposes Prometheus instrumentation for extraction runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExtractionMetrics tracks extraction runs on a private registry. A nil
// *ExtractionMetrics is valid and records nothing.
type ExtractionMetrics struct {
	registry *prometheus.Registry

	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     prometheus.Histogram
	inFlight prometheus.Gauge
}

func NewExtractionMetrics() *ExtractionMetrics {
	registry := prometheus.NewRegistry()

	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finx",
			Subsystem: "extraction",
			Name:      "total",
			Help:      "Total extraction runs by status.",
		},
		[]string{"status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finx",
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Extraction duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	rows := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "finx",
			Subsystem: "extraction",
			Name:      "rows",
			Help:      "Records produced per successful extraction.",
			Buckets:   []float64{12, 24, 36, 48, 60, 90, 120, 240},
		},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "finx",
			Subsystem: "extraction",
			Name:      "in_flight",
			Help:      "Number of extractions currently running.",
		},
	)

	registry.MustRegister(total, duration, rows, inFlight)

	return &ExtractionMetrics{
		registry: registry,
		total:    total,
		duration: duration,
		rows:     rows,
		inFlight: inFlight,
	}
}

// Registry returns the underlying registry
func (m *ExtractionMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *ExtractionMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ExtractionMetrics) Start() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// Finish closes a run opened with Start. rows is only observed on success.
func (m *ExtractionMetrics) Finish(duration time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	m.inFlight.Dec()

	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	m.total.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(status).Observe(duration.Seconds())
	if err == nil {
		m.rows.Observe(float64(rows))
	}
}
