package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ft-crawler/internal/infra/scraper"
	"ft-crawler/internal/observability/metrics"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultConcurrency bounds simultaneous article fetches.
const DefaultConcurrency = 5

// DefaultPerRequestDelay is applied before each article fetch. Workers pace
// themselves independently; the delay is per worker, not global.
const DefaultPerRequestDelay = 2 * time.Second

// FetcherFactory creates a per-worker fetcher and its teardown function.
// Each pool worker owns its own page for the duration of the run.
type FetcherFactory func() (scraper.Fetcher, func(), error)

// FetchPool processes discovered teasers concurrently: fetch the article
// page, extract its fields, and persist. Workers are isolated; one
// article's failure never cancels its siblings.
type FetchPool struct {
	newFetcher      FetcherFactory
	parser          *scraper.ArticleParser
	store           *Store
	concurrency     int
	perRequestDelay time.Duration
}

func NewFetchPool(newFetcher FetcherFactory, parser *scraper.ArticleParser, store *Store, concurrency int, perRequestDelay time.Duration) *FetchPool {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if perRequestDelay < 0 {
		perRequestDelay = DefaultPerRequestDelay
	}
	return &FetchPool{
		newFetcher:      newFetcher,
		parser:          parser,
		store:           store,
		concurrency:     concurrency,
		perRequestDelay: perRequestDelay,
	}
}

// Run processes all teasers and tallies outcomes into stats. At most
// `concurrency` articles are in flight at any point. The error return is
// reserved for total worker startup failure; per-article failures are
// counted, logged and swallowed.
func (p *FetchPool) Run(ctx context.Context, teasers []scraper.Teaser, stats *Stats) error {
	if len(teasers) == 0 {
		return nil
	}

	workers := p.concurrency
	if len(teasers) < workers {
		workers = len(teasers)
	}

	// Acquire every worker's page up front so a partial browser failure
	// degrades to fewer workers instead of a stalled run.
	type poolWorker struct {
		fetcher scraper.Fetcher
		close   func()
	}
	acquired := make([]poolWorker, 0, workers)
	for i := 0; i < workers; i++ {
		fetcher, closeFetcher, err := p.newFetcher()
		if err != nil {
			slog.Warn("pool worker could not acquire a page",
				slog.Any("error", err))
			continue
		}
		acquired = append(acquired, poolWorker{fetcher: fetcher, close: closeFetcher})
	}
	if len(acquired) == 0 {
		return errors.New("no pool worker could start")
	}

	jobs := make(chan scraper.Teaser)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, w := range acquired {
		w := w
		eg.Go(func() error {
			defer w.close()
			limiter := p.newWorkerLimiter()
			for {
				select {
				case <-egCtx.Done():
					return nil
				case teaser, ok := <-jobs:
					if !ok {
						return nil
					}
					outcome := p.processTeaser(egCtx, w.fetcher, limiter, teaser, stats)
					metrics.RecordArticleOutcome(outcome.String())
				}
			}
		})
	}

	for _, teaser := range teasers {
		select {
		case <-egCtx.Done():
		case jobs <- teaser:
			continue
		}
		break
	}
	close(jobs)

	return eg.Wait()
}

// newWorkerLimiter builds the per-worker pacing limiter. The initial token
// is drained so the delay also applies before the worker's first fetch.
func (p *FetchPool) newWorkerLimiter() *rate.Limiter {
	if p.perRequestDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	limiter := rate.NewLimiter(rate.Every(p.perRequestDelay), 1)
	limiter.Allow()
	return limiter
}

// processTeaser handles one article end to end. All failure paths resolve
// to a counted outcome; errors never escape the article boundary.
func (p *FetchPool) processTeaser(ctx context.Context, fetcher scraper.Fetcher, limiter *rate.Limiter, teaser scraper.Teaser, stats *Stats) Outcome {
	if err := limiter.Wait(ctx); err != nil {
		stats.IncSkipped()
		return OutcomeSkipped
	}

	html, err := fetcher.Fetch(ctx, teaser.URL)
	if err != nil {
		slog.Warn("article fetch failed, skipping",
			slog.String("url", teaser.URL),
			slog.Any("error", err))
		stats.IncSkipped()
		return OutcomeSkipped
	}

	article, ok, err := p.parser.Parse(teaser.URL, html)
	if err != nil {
		slog.Warn("article parse failed, skipping",
			slog.String("url", teaser.URL),
			slog.Any("error", err))
		stats.IncSkipped()
		return OutcomeSkipped
	}
	if !ok {
		stats.IncSkipped()
		return OutcomeSkipped
	}

	stats.IncScraped()

	// Teaser metadata fills fields the article page did not provide.
	if article.Author == "" && teaser.Author != scraper.UnknownAuthor {
		article.Author = teaser.Author
	}
	if article.Subtitle == "" {
		article.Subtitle = teaser.Standfirst
	}

	outcome, err := p.store.TrySave(ctx, article)
	if err != nil {
		slog.Error("article save failed",
			slog.String("url", teaser.URL),
			slog.Any("error", err))
		stats.IncErrors()
		return OutcomeErrored
	}

	if outcome == Inserted {
		stats.IncSaved()
		slog.Info("article saved",
			slog.String("url", article.URL),
			slog.String("title", article.Title))
		return OutcomeSaved
	}

	stats.IncSkipped()
	return OutcomeSkipped
}
