// Package ingest implements the crawl-and-ingest pipeline: discovery of
// article candidates, concurrent extraction, and idempotent persistence.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ft-crawler/internal/domain/entity"
	"ft-crawler/internal/infra/browser"
	"ft-crawler/internal/infra/scraper"
	"ft-crawler/internal/observability/metrics"
	"ft-crawler/internal/repository"

	"github.com/google/uuid"
)

// Discovery selects how article candidates are found.
const (
	DiscoveryListing = "listing"
	DiscoveryRSS     = "rss"
)

// Config holds the orchestrator's crawl parameters. Defaults mirror the
// worker's environment configuration.
type Config struct {
	ListingURL string
	BaseURL    string
	// FeedURL and Discovery switch candidate discovery to an RSS feed.
	FeedURL   string
	Discovery string

	InitialDaysBack     int
	RecentWindow        time.Duration
	MaxPagesInitial     int
	MaxPagesIncremental int

	Concurrency       int
	PerRequestDelay   time.Duration
	InterPageDelay    time.Duration
	NavigationTimeout time.Duration

	LaunchMaxAttempts int
	LaunchBackoffCap  time.Duration

	BrowserOptions browser.Options
}

// Orchestrator wires discovery, the fetch pool and the store into one job
// execution, and selects bulk or incremental mode per run.
type Orchestrator struct {
	launcher   browser.Launcher
	store      *Store
	runs       repository.ScrapeRunRepository
	selectors  scraper.Selectors
	discoverer *scraper.RSSDiscoverer
	cfg        Config

	listingParser *scraper.ListingParser
	articleParser *scraper.ArticleParser

	// jobMu enforces at most one run in flight; a run due while the
	// previous is still executing is skipped, not queued.
	jobMu      sync.Mutex
	running    atomic.Bool
	hasRunOnce atomic.Bool
}

// NewOrchestrator creates the orchestrator. The RSS discoverer may be nil
// when discovery is listing-based; runs may be nil to disable run
// persistence.
func NewOrchestrator(
	launcher browser.Launcher,
	store *Store,
	runs repository.ScrapeRunRepository,
	selectors scraper.Selectors,
	discoverer *scraper.RSSDiscoverer,
	cfg Config,
) (*Orchestrator, error) {
	listingParser, err := scraper.NewListingParser(selectors.Listing, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create listing parser: %w", err)
	}
	articleParser, err := scraper.NewArticleParser(selectors.Article, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create article parser: %w", err)
	}

	return &Orchestrator{
		launcher:      launcher,
		store:         store,
		runs:          runs,
		selectors:     selectors,
		discoverer:    discoverer,
		cfg:           cfg,
		listingParser: listingParser,
		articleParser: articleParser,
	}, nil
}

// InProgress reports whether a job run is currently executing. Exposed to
// the health endpoint.
func (o *Orchestrator) InProgress() bool {
	return o.running.Load()
}

// RunJob executes one crawl. It picks bulk mode when the store is empty on
// the process's first run, incremental mode otherwise, and permanently
// stays incremental once any run has executed. Returns ErrJobInProgress
// when the previous run is still executing.
func (o *Orchestrator) RunJob(ctx context.Context) (*entity.ScrapeRun, error) {
	if !o.jobMu.TryLock() {
		slog.Warn("previous scrape run still in progress, skipping this trigger")
		return nil, ErrJobInProgress
	}
	defer o.jobMu.Unlock()

	o.running.Store(true)
	defer o.running.Store(false)
	// The mode decision is made once per process lifetime. A transient
	// count error later must not re-trigger bulk mode.
	defer o.hasRunOnce.Store(true)

	startedAt := time.Now().UTC()
	runType := o.selectMode(ctx)
	window, maxPages := o.windowFor(runType)

	run := &entity.ScrapeRun{
		RunID:     uuid.NewString(),
		RunType:   runType,
		StartedAt: startedAt,
	}

	slog.Info("starting scrape run",
		slog.String("run_id", run.RunID),
		slog.String("run_type", string(runType)),
		slog.Time("cutoff", window.Cutoff()),
		slog.Int("max_pages", maxPages))

	stats := &Stats{}
	jobErr := o.execute(ctx, maxPages, &window, stats)

	o.finalize(ctx, run, stats, time.Since(startedAt), jobErr)

	if jobErr != nil {
		return run, fmt.Errorf("scrape run %s: %w", run.RunID, jobErr)
	}
	return run, nil
}

// selectMode returns the run type for this execution.
func (o *Orchestrator) selectMode(ctx context.Context) entity.RunType {
	if o.hasRunOnce.Load() {
		return entity.RunTypeIncremental
	}

	empty, err := o.store.IsEmpty(ctx)
	if err != nil {
		slog.Warn("could not determine store emptiness, assuming incremental mode",
			slog.Any("error", err))
		return entity.RunTypeIncremental
	}
	if empty {
		return entity.RunTypeInitial
	}
	return entity.RunTypeIncremental
}

func (o *Orchestrator) windowFor(runType entity.RunType) (entity.TimeWindow, int) {
	if runType == entity.RunTypeInitial {
		span := time.Duration(o.cfg.InitialDaysBack) * 24 * time.Hour
		return entity.WindowSince(span), o.cfg.MaxPagesInitial
	}
	return entity.WindowSince(o.cfg.RecentWindow), o.cfg.MaxPagesIncremental
}

// execute runs discovery and the fetch pool against a fresh browser
// session. The session is always torn down, including on failure.
func (o *Orchestrator) execute(ctx context.Context, maxPages int, window *entity.TimeWindow, stats *Stats) error {
	session, err := browser.LaunchWithRetry(ctx, o.launcher, o.cfg.BrowserOptions,
		o.cfg.LaunchMaxAttempts, o.cfg.LaunchBackoffCap)
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer browser.CloseQuietly(session)

	teasers, err := o.discover(ctx, session, maxPages, window)
	if err != nil {
		return fmt.Errorf("discover articles: %w", err)
	}

	stats.AddFound(int64(len(teasers)))
	if len(teasers) == 0 {
		slog.Warn("no articles found")
		return nil
	}

	pool := NewFetchPool(func() (scraper.Fetcher, func(), error) {
		page, err := session.NewPage()
		if err != nil {
			return nil, nil, err
		}
		fetcher := scraper.NewPageFetcher(page, o.cfg.NavigationTimeout)
		return fetcher, func() { _ = page.Close() }, nil
	}, o.articleParser, o.store, o.cfg.Concurrency, o.cfg.PerRequestDelay)

	return pool.Run(ctx, teasers, stats)
}

// discover returns candidate teasers either from the RSS feed or by
// walking the listing pages.
func (o *Orchestrator) discover(ctx context.Context, session browser.Session, maxPages int, window *entity.TimeWindow) ([]scraper.Teaser, error) {
	if o.cfg.Discovery == DiscoveryRSS && o.discoverer != nil {
		return o.discoverer.Discover(ctx, o.cfg.FeedURL, window)
	}

	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open listing page: %w", err)
	}
	defer func() { _ = page.Close() }()

	fetcher := scraper.NewPageFetcher(page, o.cfg.NavigationTimeout)
	walker := scraper.NewPaginationWalker(fetcher, o.listingParser, o.cfg.ListingURL, o.cfg.InterPageDelay)
	return walker.Walk(ctx, maxPages, window)
}

// finalize records counters, metrics and the persisted run row. It runs on
// every path, including fatal initialization failures.
func (o *Orchestrator) finalize(ctx context.Context, run *entity.ScrapeRun, stats *Stats, duration time.Duration, jobErr error) {
	snapshot := stats.Snapshot()
	run.Found = snapshot.Found
	run.Scraped = snapshot.Scraped
	run.Saved = snapshot.Saved
	run.Skipped = snapshot.Skipped
	run.Errors = snapshot.Errors
	run.Duration = duration

	status := "success"
	if jobErr != nil {
		status = "failure"
	}
	metrics.RecordScrapeRun(string(run.RunType), status, duration)
	metrics.RecordScrapeCounters(snapshot.Found, snapshot.Scraped, snapshot.Saved, snapshot.Skipped, snapshot.Errors)
	if jobErr == nil {
		metrics.SetLastScrapeSuccess(time.Now())
	}

	if o.runs != nil {
		// Run persistence must survive job-level cancellation.
		safeCtx := context.WithoutCancel(ctx)
		if err := o.runs.Record(safeCtx, run); err != nil {
			slog.Warn("failed to persist scrape run",
				slog.String("run_id", run.RunID),
				slog.Any("error", err))
		}
	}

	slog.Info("scrape run completed",
		slog.String("run_id", run.RunID),
		slog.String("run_type", string(run.RunType)),
		slog.String("status", status),
		slog.Int64("found", snapshot.Found),
		slog.Int64("scraped", snapshot.Scraped),
		slog.Int64("saved", snapshot.Saved),
		slog.Int64("skipped", snapshot.Skipped),
		slog.Int64("errors", snapshot.Errors),
		slog.Duration("duration", duration))

	if jobErr != nil {
		slog.Error("scrape run failed",
			slog.String("run_id", run.RunID),
			slog.Any("error", jobErr))
	}
}
