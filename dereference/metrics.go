package dereference

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// derefMetrics holds Prometheus metrics for dereference operations.
type derefMetrics struct {
	requests      *prometheus.CounterVec   // By authority and outcome (ok or failure kind)
	fetchDuration *prometheus.HistogramVec // By authority
}

// newDerefMetrics creates and registers dereference metrics with reg.
func newDerefMetrics(reg prometheus.Registerer) (*derefMetrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &derefMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semderef",
			Subsystem: "dereference",
			Name:      "requests_total",
			Help:      "Total number of dereference attempts",
		}, []string{"authority", "outcome"}),

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semderef",
			Subsystem: "dereference",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of resource fetches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"authority"}),
	}

	if err := reg.Register(m.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(m.fetchDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *derefMetrics) recordOutcome(authorityName string, kind Kind) {
	if m == nil {
		return
	}
	if authorityName == "" {
		authorityName = "none"
	}
	outcome := "ok"
	if kind != KindUnknown {
		outcome = kind.label()
	}
	m.requests.WithLabelValues(authorityName, outcome).Inc()
}

func (m *derefMetrics) recordFetch(authorityName string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(authorityName).Observe(d.Seconds())
}
