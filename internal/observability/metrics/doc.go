// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Scraping metrics (runs, article outcomes, page fetches)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "ft-crawler/internal/observability/metrics"
//
//	func runScrape(runType string) {
//	    start := time.Now()
//	    // ... crawl and ingest ...
//
//	    metrics.RecordScrapeRun(runType, "success", time.Since(start))
//	}
package metrics
