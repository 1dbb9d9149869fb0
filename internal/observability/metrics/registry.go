// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Scraping metrics track crawl runs and article processing
var (
	// ScrapeRunsTotal counts scrape runs by mode and final status
	ScrapeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_runs_total",
			Help: "Total number of scrape runs",
		},
		[]string{"run_type", "status"},
	)

	// ScrapeRunDuration measures end-to-end scrape run duration
	ScrapeRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_run_duration_seconds",
			Help:    "End-to-end duration of a scrape run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"run_type"},
	)

	// ArticlesProcessedTotal counts processed articles by outcome
	ArticlesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_processed_total",
			Help: "Total number of article candidates processed",
		},
		[]string{"outcome"}, // outcome: saved, skipped, errored
	)

	// ArticlesFoundTotal counts article candidates discovered on listings
	ArticlesFoundTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_found_total",
			Help: "Total number of article candidates found on listing pages",
		},
	)

	// ArticlesScrapedTotal counts articles whose pages were fetched and parsed
	ArticlesScrapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_scraped_total",
			Help: "Total number of article pages successfully scraped",
		},
	)

	// LastScrapeSuccessTimestamp records when a run last completed cleanly
	LastScrapeSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "last_scrape_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful scrape run",
		},
	)

	// PageFetchDuration measures time to fetch and render a page
	PageFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "page_fetch_duration_seconds",
			Help:    "Time taken to fetch a page",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8, 25.6},
		},
	)

	// PageFetchErrors counts page fetch failures by error type
	PageFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_fetch_errors_total",
			Help: "Total number of page fetch errors",
		},
		[]string{"error_type"},
	)

	// ArticlesTotal tracks total number of articles in database
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Total number of articles in the database",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
