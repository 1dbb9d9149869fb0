package entity

import "time"

// RunType identifies which collection mode produced a scrape run.
type RunType string

const (
	// RunTypeInitial is the first-run bulk backfill over a multi-day window.
	RunTypeInitial RunType = "initial"

	// RunTypeIncremental is the steady-state recent-window collection.
	RunTypeIncremental RunType = "incremental"
)

// ScrapeRun records the outcome of a single scraping job execution.
// The counters satisfy: Scraped+Skipped(pre-scrape) == Found and every
// scraped article resolves to exactly one of Saved, Skipped or Errors.
type ScrapeRun struct {
	ID        int64
	RunID     string
	RunType   RunType
	Found     int64
	Scraped   int64
	Saved     int64
	Skipped   int64
	Errors    int64
	StartedAt time.Time
	Duration  time.Duration
}
