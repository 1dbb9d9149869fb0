package metrics

import "time"

// RecordScrapeRun records the completion of a scrape run.
// Status should be either "success" or "failure".
func RecordScrapeRun(runType, status string, duration time.Duration) {
	ScrapeRunsTotal.WithLabelValues(runType, status).Inc()
	ScrapeRunDuration.WithLabelValues(runType).Observe(duration.Seconds())
}

// RecordScrapeCounters records the per-run article counters. Found counts
// listing candidates, scraped counts fetched-and-parsed pages; the
// remaining three partition the scraped set.
func RecordScrapeCounters(found, scraped, saved, skipped, errors int64) {
	ArticlesFoundTotal.Add(float64(found))
	ArticlesScrapedTotal.Add(float64(scraped))
	ArticlesProcessedTotal.WithLabelValues("saved").Add(float64(saved))
	ArticlesProcessedTotal.WithLabelValues("skipped").Add(float64(skipped))
	ArticlesProcessedTotal.WithLabelValues("errored").Add(float64(errors))
}

// RecordArticleOutcome records the outcome of processing a single article
// candidate. Outcome should be one of "saved", "skipped" or "errored".
func RecordArticleOutcome(outcome string) {
	ArticlesProcessedTotal.WithLabelValues(outcome).Inc()
}

// SetLastScrapeSuccess marks the time a scrape run last completed cleanly.
func SetLastScrapeSuccess(t time.Time) {
	LastScrapeSuccessTimestamp.Set(float64(t.Unix()))
}

// RecordPageFetch records a successful page fetch.
func RecordPageFetch(duration time.Duration) {
	PageFetchDuration.Observe(duration.Seconds())
}

// RecordPageFetchError records a failed page fetch.
// ErrorType groups failures for alerting (e.g. "timeout", "navigation").
func RecordPageFetchError(errorType string) {
	PageFetchErrors.WithLabelValues(errorType).Inc()
}

// UpdateArticlesTotal updates the total count of articles in the database.
// This gauge should be updated periodically to reflect the current state.
func UpdateArticlesTotal(count int) {
	ArticlesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_articles", "insert_article").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
