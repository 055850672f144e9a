package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semderef/authority"
)

// gatewayMetrics holds Prometheus metrics for proxied requests.
type gatewayMetrics struct {
	requests *prometheus.CounterVec   // By client and status class (2xx, 4xx, 5xx)
	duration *prometheus.HistogramVec // By client
}

func newGatewayMetrics(reg prometheus.Registerer) (*gatewayMetrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &gatewayMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semderef",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of proxy requests",
		}, []string{"client", "status_class"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semderef",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Proxy request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"client"}),
	}

	if err := reg.Register(m.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *gatewayMetrics) record(client authority.ProxyClient, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(client), statusClass(status)).Inc()
	m.duration.WithLabelValues(string(client)).Observe(d.Seconds())
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
