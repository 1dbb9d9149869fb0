package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ft-crawler/internal/domain/entity"
	"ft-crawler/internal/resilience/circuitbreaker"
	"ft-crawler/internal/resilience/retry"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// RSSDiscoverer discovers article candidates from an RSS/Atom feed instead
// of walking listing pages. It includes circuit breaker and retry logic.
type RSSDiscoverer struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	now            func() time.Time
}

// NewRSSDiscoverer creates a discoverer with the given HTTP client.
func NewRSSDiscoverer(client *http.Client) *RSSDiscoverer {
	return &RSSDiscoverer{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Discover fetches the feed and returns its entries as teasers, in feed
// order, dropping entries outside the time window.
func (d *RSSDiscoverer) Discover(ctx context.Context, feedURL string, window *entity.TimeWindow) ([]Teaser, error) {
	var teasers []Teaser

	retryErr := retry.WithBackoff(ctx, d.retryConfig, func() error {
		cbResult, err := d.circuitBreaker.Execute(func() (interface{}, error) {
			return d.doDiscover(ctx, feedURL, window)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("url", feedURL),
					slog.String("state", d.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		teasers = cbResult.([]Teaser)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return teasers, nil
}

// doDiscover performs the actual feed fetch without retry or circuit breaker.
func (d *RSSDiscoverer) doDiscover(ctx context.Context, feedURL string, window *entity.TimeWindow) ([]Teaser, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "ft-crawler/1.0"
	fp.Client = d.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	teasers := make([]Teaser, 0, len(feed.Items))
	for _, item := range feed.Items {
		publishedAt := d.now()
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		}

		if window != nil && !window.Contains(publishedAt) {
			continue
		}

		author := UnknownAuthor
		if len(item.Authors) > 0 && item.Authors[0].Name != "" {
			author = item.Authors[0].Name
		}

		teasers = append(teasers, Teaser{
			URL:         item.Link,
			Title:       item.Title,
			Standfirst:  item.Description,
			Author:      author,
			PublishedAt: publishedAt,
		})
	}

	return teasers, nil
}
