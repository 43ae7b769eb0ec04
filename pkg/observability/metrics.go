package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector records store activity. The data store and session
// store report through this interface so tests can pass a no-op.
type MetricsCollector interface {
	RecordMutation(entity, operation string)
	RecordPersistSuccess(duration time.Duration)
	RecordPersistFailure(key string)
	RecordStorageReadFailure(key string)
}

// Metrics is the Prometheus-backed collector
type Metrics struct {
	mutations      *prometheus.CounterVec
	persistSuccess prometheus.Counter
	persistFail    *prometheus.CounterVec
	readFail       *prometheus.CounterVec
	persistLatency prometheus.Histogram
}

// NewMetrics creates a collector and registers it with the given registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholarmind_store_mutations_total",
			Help: "Store mutations by entity and operation",
		}, []string{"entity", "operation"}),
		persistSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scholarmind_persist_success_total",
			Help: "Successful snapshot writes to the key-value store",
		}),
		persistFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholarmind_persist_fail_total",
			Help: "Failed snapshot writes by storage key",
		}, []string{"key"}),
		readFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scholarmind_storage_read_fail_total",
			Help: "Failed storage reads by storage key",
		}, []string{"key"}),
		persistLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scholarmind_persist_latency_seconds",
			Help:    "Latency of full-snapshot persistence",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.mutations,
		m.persistSuccess,
		m.persistFail,
		m.readFail,
		m.persistLatency,
	)

	return m
}

// RecordMutation counts a store mutation
func (m *Metrics) RecordMutation(entity, operation string) {
	m.mutations.WithLabelValues(entity, operation).Inc()
}

// RecordPersistSuccess counts a completed snapshot write and its latency
func (m *Metrics) RecordPersistSuccess(duration time.Duration) {
	m.persistSuccess.Inc()
	m.persistLatency.Observe(duration.Seconds())
}

// RecordPersistFailure counts a failed snapshot write
func (m *Metrics) RecordPersistFailure(key string) {
	m.persistFail.WithLabelValues(key).Inc()
}

// RecordStorageReadFailure counts a failed storage read
func (m *Metrics) RecordStorageReadFailure(key string) {
	m.readFail.WithLabelValues(key).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop is a MetricsCollector that records nothing. Test helper.
type Noop struct{}

func (Noop) RecordMutation(entity, operation string)     {}
func (Noop) RecordPersistSuccess(duration time.Duration) {}
func (Noop) RecordPersistFailure(key string)             {}
func (Noop) RecordStorageReadFailure(key string)         {}
