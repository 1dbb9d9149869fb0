// Package browser abstracts the page-fetching transport behind launch/page
// interfaces so the crawl pipeline does not depend on how pages are rendered.
// The shipped implementation is a plain HTTP transport; a headless browser
// can be plugged in behind the same seam.
package browser

import (
	"context"
	"log/slog"
	"time"
)

// WaitStrategy controls when a navigation is considered complete.
type WaitStrategy string

const (
	// WaitNetworkIdle waits until the page has stopped issuing requests.
	WaitNetworkIdle WaitStrategy = "networkidle"

	// WaitLoad waits only for the load event. Used as the fallback when
	// a network-idle wait times out on chatty pages.
	WaitLoad WaitStrategy = "load"
)

// DefaultNavigationTimeout bounds a single page navigation.
const DefaultNavigationTimeout = 30 * time.Second

// Options configures a session launch.
type Options struct {
	// UserAgent is sent with every navigation.
	UserAgent string

	// NavigationTimeout bounds each Goto call. Zero means DefaultNavigationTimeout.
	NavigationTimeout time.Duration
}

// Launcher creates page-fetching sessions.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Session, error)
}

// Session is a running page-fetching resource. A session hands out pages;
// each concurrent worker owns its own page for the duration of a job.
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// Page navigates to URLs and returns rendered HTML.
type Page interface {
	Goto(ctx context.Context, url string, wait WaitStrategy, timeout time.Duration) error
	Content(ctx context.Context) (string, error)
	Close() error
}

// LaunchWithRetry launches a session, retrying up to maxAttempts with
// exponential backoff (2^attempt seconds, capped). Exhaustion surfaces the
// last error as a fatal initialization failure.
func LaunchWithRetry(ctx context.Context, l Launcher, opts Options, maxAttempts int, cap time.Duration) (Session, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		session, err := l.Launch(ctx, opts)
		if err == nil {
			if attempt > 1 {
				slog.Info("browser session launched after retry", slog.Int("attempt", attempt))
			}
			return session, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := time.Duration(1<<uint(attempt)) * time.Second
		if delay > cap {
			delay = cap
		}
		slog.Warn("browser launch failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.Any("error", err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// CloseQuietly closes a session and logs close failures instead of
// propagating them. Used on teardown paths where the job outcome is
// already decided.
func CloseQuietly(s Session) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		slog.Warn("browser session close failed", slog.Any("error", err))
	}
}
