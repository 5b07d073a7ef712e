package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)
)

// Pipeline metrics
var (
	NewsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "news_total",
			Help: "Total number of news rows in the store",
		},
	)

	RecordsCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_records_collected_total",
			Help: "Records kept by collection (image present) per category",
		},
		[]string{"category"},
	)

	RecordsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_records_persisted_total",
			Help: "Persistence outcomes per record",
		},
		[]string{"outcome"}, // inserted, duplicate, failed
	)

	FaviconResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_favicon_resolutions_total",
			Help: "Favicon resolutions actually performed, by outcome",
		},
		[]string{"status"}, // found, not_found, degraded
	)

	FaviconCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_favicon_cache_hits_total",
			Help: "Favicon lookups served from the process cache or a shared in-flight resolution",
		},
	)

	FaviconResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_favicon_resolution_duration_seconds",
			Help:    "Time taken to resolve one site's favicon",
			Buckets: []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_search_requests_total",
			Help: "Upstream search calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	CategoryRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_category_run_duration_seconds",
			Help:    "Time taken by one category worker",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"category"},
	)

	CategoryRunErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_category_run_errors_total",
			Help: "Category worker failures by stage",
		},
		[]string{"category", "stage"},
	)
)

// Database metrics
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
