package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"ft-crawler/internal/infra/browser"
	"ft-crawler/internal/observability/metrics"
	"ft-crawler/internal/resilience/circuitbreaker"
	"ft-crawler/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// Fetcher retrieves rendered HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// PageFetcher fetches pages through a browser page with retry and circuit
// breaker protection. It is not safe for concurrent use; concurrent callers
// must each own their own PageFetcher over their own page.
type PageFetcher struct {
	page           browser.Page
	timeout        time.Duration
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewPageFetcher wraps the given browser page. A non-positive timeout falls
// back to the default navigation timeout.
func NewPageFetcher(page browser.Page, timeout time.Duration) *PageFetcher {
	if timeout <= 0 {
		timeout = browser.DefaultNavigationTimeout
	}
	return &PageFetcher{
		page:           page,
		timeout:        timeout,
		circuitBreaker: circuitbreaker.New(circuitbreaker.PageFetchConfig()),
		retryConfig:    retry.PageFetchConfig(),
	}
}

// Fetch navigates to the URL and returns the rendered HTML.
// Navigation waits for network idle first and falls back to the load event
// when the stricter wait times out.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := validatePageURL(pageURL); err != nil {
		return "", fmt.Errorf("URL validation failed: %w", err)
	}

	var html string

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, pageURL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("page fetch circuit breaker open, request rejected",
					slog.String("service", "page-fetch"),
					slog.String("url", pageURL),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		html = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	return html, nil
}

// doFetch performs one navigation attempt without retry or circuit breaker.
func (f *PageFetcher) doFetch(ctx context.Context, pageURL string) (string, error) {
	start := time.Now()

	err := f.page.Goto(ctx, pageURL, browser.WaitNetworkIdle, f.timeout)
	if err != nil {
		if !isNavigationTimeout(err) {
			metrics.RecordPageFetchError("navigation")
			return "", fmt.Errorf("navigation failed: %w", err)
		}

		slog.Debug("network idle wait timed out, retrying with load event",
			slog.String("url", pageURL))

		if err := f.page.Goto(ctx, pageURL, browser.WaitLoad, f.timeout); err != nil {
			metrics.RecordPageFetchError("timeout")
			return "", fmt.Errorf("navigation failed after load fallback: %w", err)
		}
	}

	html, err := f.page.Content(ctx)
	if err != nil {
		metrics.RecordPageFetchError("content")
		return "", fmt.Errorf("read page content: %w", err)
	}

	metrics.RecordPageFetch(time.Since(start))
	return html, nil
}

func isNavigationTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// validatePageURL rejects URLs that are not plain http/https pages.
func validatePageURL(pageURL string) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must have a host")
	}
	return nil
}
