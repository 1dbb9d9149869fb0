package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"ft-crawler/internal/domain/entity"
)

const (
	// maxConsecutiveEmptyPages stops pagination once this many pages in a
	// row yield no matching items.
	maxConsecutiveEmptyPages = 3

	// DefaultInterPageDelay paces listing page requests.
	DefaultInterPageDelay = time.Second
)

// PaginationWalker drives the listing parser across successive pages,
// collecting teasers until a stop condition fires.
type PaginationWalker struct {
	fetcher        Fetcher
	parser         *ListingParser
	listingURL     string
	interPageDelay time.Duration
}

// NewPaginationWalker creates a walker over the given listing URL. A
// non-positive delay falls back to the default inter-page delay.
func NewPaginationWalker(fetcher Fetcher, parser *ListingParser, listingURL string, interPageDelay time.Duration) *PaginationWalker {
	if interPageDelay <= 0 {
		interPageDelay = DefaultInterPageDelay
	}
	return &PaginationWalker{
		fetcher:        fetcher,
		parser:         parser,
		listingURL:     listingURL,
		interPageDelay: interPageDelay,
	}
}

// Walk fetches listing pages in strictly increasing order and returns the
// concatenation of their matching teasers. It stops when maxPages is
// reached, when three consecutive pages yield no items, or when the time
// window boundary is crossed.
func (w *PaginationWalker) Walk(ctx context.Context, maxPages int, window *entity.TimeWindow) ([]Teaser, error) {
	var (
		teasers          []Teaser
		consecutiveEmpty int
	)

	for page := 1; page <= maxPages; page++ {
		if page > 1 {
			if err := sleepCtx(ctx, w.interPageDelay); err != nil {
				return teasers, err
			}
		}

		pageURL, err := w.pageURL(page)
		if err != nil {
			return teasers, fmt.Errorf("build page URL: %w", err)
		}

		pageTeasers, boundaryCrossed := w.fetchPage(ctx, page, pageURL, window)
		if err := ctx.Err(); err != nil {
			return teasers, err
		}

		teasers = append(teasers, pageTeasers...)

		if len(pageTeasers) == 0 {
			consecutiveEmpty++
			if consecutiveEmpty >= maxConsecutiveEmptyPages {
				slog.Info("stopping pagination after consecutive empty pages",
					slog.Int("page", page),
					slog.Int("consecutive_empty", consecutiveEmpty))
				break
			}
		} else {
			consecutiveEmpty = 0
		}

		if window != nil && boundaryCrossed {
			slog.Info("stopping pagination at time window boundary",
				slog.Int("page", page),
				slog.Time("cutoff", window.Cutoff()))
			break
		}
	}

	return teasers, nil
}

// fetchPage fetches and parses one listing page. Fetch and parse failures
// degrade to an empty page so the exhaustion heuristic can take over.
func (w *PaginationWalker) fetchPage(ctx context.Context, page int, pageURL string, window *entity.TimeWindow) ([]Teaser, bool) {
	html, err := w.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		slog.Warn("listing page fetch failed, treating as empty",
			slog.Int("page", page),
			slog.String("url", pageURL),
			slog.Any("error", err))
		return nil, false
	}

	teasers, boundaryCrossed, err := w.parser.Parse(html, window)
	if err != nil {
		slog.Warn("listing page parse failed, treating as empty",
			slog.Int("page", page),
			slog.String("url", pageURL),
			slog.Any("error", err))
		return nil, false
	}

	slog.Debug("listing page parsed",
		slog.Int("page", page),
		slog.Int("teasers", len(teasers)))

	return teasers, boundaryCrossed
}

// pageURL returns the listing URL for the given page number. Page 1 is the
// bare listing URL; later pages carry a page query parameter.
func (w *PaginationWalker) pageURL(page int) (string, error) {
	if page <= 1 {
		return w.listingURL, nil
	}

	u, err := url.Parse(w.listingURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
