package ingest

import "sync/atomic"

// Outcome is the per-teaser result of one fetch+extract+persist unit.
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeSkipped
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Stats aggregates one job run's counters. Fields are updated atomically by
// concurrent pool workers; aggregation is order-independent.
//
// The counters satisfy two identities: scraped plus pre-scrape skips equals
// found, and saved plus post-scrape skips plus errors equals scraped.
type Stats struct {
	Found   int64
	Scraped int64
	Saved   int64
	Skipped int64
	Errors  int64
}

func (s *Stats) AddFound(n int64)  { atomic.AddInt64(&s.Found, n) }
func (s *Stats) IncScraped()       { atomic.AddInt64(&s.Scraped, 1) }
func (s *Stats) IncSaved()         { atomic.AddInt64(&s.Saved, 1) }
func (s *Stats) IncSkipped()       { atomic.AddInt64(&s.Skipped, 1) }
func (s *Stats) IncErrors()        { atomic.AddInt64(&s.Errors, 1) }

// Snapshot returns a consistent copy for logging and persistence.
func (s *Stats) Snapshot() Stats {
	return Stats{
		Found:   atomic.LoadInt64(&s.Found),
		Scraped: atomic.LoadInt64(&s.Scraped),
		Saved:   atomic.LoadInt64(&s.Saved),
		Skipped: atomic.LoadInt64(&s.Skipped),
		Errors:  atomic.LoadInt64(&s.Errors),
	}
}
