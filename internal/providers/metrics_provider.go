package providers

import (
	"bibled/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncChaptersScanned()
	IncChapterFetchFailures()
	ObserveSearchResults(count int)
}

type MetricsProvider struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	cacheHits            prometheus.Counter
	cacheMisses          prometheus.Counter
	persistenceDuration  prometheus.Histogram
	chaptersScanned      prometheus.Counter
	chapterFetchFailures prometheus.Counter
	searchResults        prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncChaptersScanned() {
	m.chaptersScanned.Inc()
}

func (m *MetricsProvider) IncChapterFetchFailures() {
	m.chapterFetchFailures.Inc()
}

func (m *MetricsProvider) ObserveSearchResults(count int) {
	m.searchResults.Observe(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, store KeyValueStore) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bibled_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bibled_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bibled_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bibled_cache_misses_total",
			Help: "Total number of cache misses, stale entries included",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bibled_snapshot_duration_seconds",
			Help:    "Duration of cache snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		chaptersScanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bibled_search_chapters_scanned_total",
			Help: "Chapters fetched and scanned by search",
		}),

		chapterFetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bibled_search_chapter_failures_total",
			Help: "Sampled chapters skipped by search because the fetch failed",
		}),

		searchResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bibled_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50},
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "bibled_cache_entries",
		Help: "Current number of items in the cache store",
	}, func() float64 {
		keys, err := store.Keys()
		if err != nil {
			return 0
		}
		return float64(len(keys))
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncChaptersScanned()                              {}
func (n *noopMetrics) IncChapterFetchFailures()                         {}
func (n *noopMetrics) ObserveSearchResults(_ int)                       {}
