// Package monitoring provides Prometheus metrics for backend operations.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times protocol operations per backend.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Errors     *prometheus.CounterVec
}

// New creates a metrics collector registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_operations_total",
				Help: "Total number of backend operations",
			},
			[]string{"backend", "op"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_operation_duration_seconds",
				Help:    "Backend operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "op"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_operation_errors_total",
				Help: "Total number of failed backend operations",
			},
			[]string{"backend", "op"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration, m.Errors)
	return m
}

// NewDefault registers the collector with the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// Observe records one completed operation. Safe on a nil receiver so
// backends can run unmetered.
func (m *Metrics) Observe(backend, op string, start time.Time, failed bool) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(backend, op).Inc()
	m.Duration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
	if failed {
		m.Errors.WithLabelValues(backend, op).Inc()
	}
}
