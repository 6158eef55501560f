package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/refdata-go/core/metrics"
	"github.com/codewandler/refdata-go/core/refdata"
)

// cacheMetrics implements refdata.Metrics using Prometheus.
type cacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	staleServed   *prometheus.CounterVec
	revalidations *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchSize     *prometheus.HistogramVec
	fetchDuration *prometheus.HistogramVec
}

// NewCacheMetrics creates a new Prometheus implementation of refdata.Metrics.
func NewCacheMetrics(reg prometheus.Registerer) refdata.Metrics {
	m := &cacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refdata_cache_hits_total",
			Help: "Fresh cache entries served",
		}, []string{"resource"}),

		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refdata_cache_misses_total",
			Help: "Reads that had to hit the backend",
		}, []string{"resource"}),

		staleServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refdata_cache_stale_served_total",
			Help: "Stale entries served while revalidating",
		}, []string{"resource"}),

		revalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refdata_cache_revalidations_total",
			Help: "Background revalidations completed",
		}, []string{"resource", "success"}),

		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refdata_batch_fetches_total",
			Help: "Batched id fetches issued by the resolver",
		}, []string{"resource"}),

		batchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "refdata_batch_size_ids",
			Help:    "Distinct ids per batched fetch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"resource"}),

		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "refdata_fetch_duration_seconds",
			Help:    "Backend fetch time in seconds",
			Buckets: defaultBuckets,
		}, []string{"resource"}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.staleServed,
		m.revalidations,
		m.batchesTotal,
		m.batchSize,
		m.fetchDuration,
	)

	return m
}

func (m *cacheMetrics) Hit(resource string) {
	m.hits.WithLabelValues(resource).Inc()
}

func (m *cacheMetrics) Miss(resource string) {
	m.misses.WithLabelValues(resource).Inc()
}

func (m *cacheMetrics) StaleServed(resource string) {
	m.staleServed.WithLabelValues(resource).Inc()
}

func (m *cacheMetrics) Revalidated(resource string, success bool) {
	m.revalidations.WithLabelValues(resource, boolToStr(success)).Inc()
}

func (m *cacheMetrics) BatchFetch(resource string, size int) {
	m.batchesTotal.WithLabelValues(resource).Inc()
	m.batchSize.WithLabelValues(resource).Observe(float64(size))
}

func (m *cacheMetrics) FetchDuration(resource string) metrics.Timer {
	return newTimer(m.fetchDuration.WithLabelValues(resource))
}

var _ refdata.Metrics = (*cacheMetrics)(nil)
