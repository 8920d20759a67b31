package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records latency and outcomes of order store operations.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer, namespace, backend string) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	constLabels := prometheus.Labels{"backend": normalizeLabel(backend)}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        "store_operation_duration_seconds",
		Help:        "Duration of order store operations in seconds.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: constLabels,
	}, []string{"op"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "store_operation_success_total",
		Help:        "Successful order store operations.",
		ConstLabels: constLabels,
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "store_operation_failure_total",
		Help:        "Failed order store operations by error code.",
		ConstLabels: constLabels,
	}, []string{"op", "code"})
	reg.MustRegister(duration, success, failure)
	return &StoreMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// Observe records one finished operation. An empty code counts as success.
func (m *StoreMetrics) Observe(op string, elapsed time.Duration, code string) {
	if m == nil || m.duration == nil {
		return
	}
	op = normalizeLabel(op)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if code == "" {
		m.success.WithLabelValues(op).Inc()
		return
	}
	m.failure.WithLabelValues(op, code).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
