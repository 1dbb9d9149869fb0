package worker

import (
	"fmt"
	"log/slog"
	"time"

	"ft-crawler/internal/pkg/config"
)

// ScraperConfig holds the configuration for the scraper worker.
// It controls the crawl schedule, the listing and article fetch behavior,
// and the operational parameters of the worker process.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// All fields have defaults and validation rules so the worker can operate
// safely even with invalid or missing configuration.
type ScraperConfig struct {
	// IntervalHours is the scheduling interval between scrape runs.
	// Range: 1-24. Default: 1 (hourly).
	IntervalHours int

	// Schedule optionally overrides the interval with a full cron
	// expression ("minute hour day month weekday"). Empty means the
	// schedule is derived from IntervalHours.
	Schedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC".
	Timezone string

	// InitialDaysBack is the lookback window in days for the first-run
	// bulk collection. Range: 1-365. Default: 30.
	InitialDaysBack int

	// RecentWindow is the lookback window for incremental runs.
	// Default: 1 hour.
	RecentWindow time.Duration

	// MaxConcurrentRequests bounds simultaneous article fetches.
	// Range: 1-20. Default: 5.
	MaxConcurrentRequests int

	// RequestDelaySeconds is the per-worker delay before each article
	// fetch, in whole seconds. Range: 0-60. Default: 2.
	RequestDelaySeconds int

	// ListingURL is the section page the pagination walker starts from.
	ListingURL string

	// BaseURL resolves relative article links found on listing pages.
	BaseURL string

	// FeedURL is the RSS feed used when Discovery is "rss".
	FeedURL string

	// Discovery selects candidate discovery: "listing" or "rss".
	Discovery string

	// MaxPagesInitial caps listing pages walked in bulk mode.
	// Range: 1-200. Default: 50.
	MaxPagesInitial int

	// MaxPagesIncremental caps listing pages walked in incremental mode.
	// Range: 1-50. Default: 5.
	MaxPagesIncremental int

	// SelectorsFile optionally points at a YAML file overriding the
	// built-in CSS selectors. Empty means defaults only.
	SelectorsFile string

	// RunOnStart triggers a scrape run immediately at startup instead of
	// waiting for the first scheduled tick. Default: true.
	RunOnStart bool

	// CrawlTimeout is the maximum duration for a single scrape run.
	// After this timeout, the run is cancelled. Default: 30 minutes.
	CrawlTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091.
	HealthPort int
}

// DefaultConfig returns a ScraperConfig with production defaults: an
// hourly schedule, a 30-day first-run backfill, five concurrent fetches
// paced two seconds apart.
func DefaultConfig() ScraperConfig {
	return ScraperConfig{
		IntervalHours:         1,
		Schedule:              "",
		Timezone:              "UTC",
		InitialDaysBack:       30,
		RecentWindow:          time.Hour,
		MaxConcurrentRequests: 5,
		RequestDelaySeconds:   2,
		ListingURL:            "https://www.ft.com/world",
		BaseURL:               "https://www.ft.com",
		FeedURL:               "",
		Discovery:             "listing",
		MaxPagesInitial:       50,
		MaxPagesIncremental:   5,
		SelectorsFile:         "",
		RunOnStart:            true,
		CrawlTimeout:          30 * time.Minute,
		HealthPort:            9091,
	}
}

// RequestDelay returns the per-request pacing delay as a duration.
func (c *ScraperConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds) * time.Second
}

// CronSpec returns the cron expression the scheduler should run on:
// the explicit Schedule when set, otherwise one derived from
// IntervalHours.
func (c *ScraperConfig) CronSpec() string {
	if c.Schedule != "" {
		return c.Schedule
	}
	return fmt.Sprintf("0 */%d * * *", c.IntervalHours)
}

// Validate checks the configuration values using the reusable validators
// from internal/pkg/config. Errors across fields are aggregated.
func (c *ScraperConfig) Validate() error {
	var errs []error

	if err := config.ValidateIntRange(c.IntervalHours, 1, 24); err != nil {
		errs = append(errs, fmt.Errorf("interval hours: %w", err))
	}
	if c.Schedule != "" {
		if err := config.ValidateCronSchedule(c.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("schedule: %w", err))
		}
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.InitialDaysBack, 1, 365); err != nil {
		errs = append(errs, fmt.Errorf("initial days back: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RecentWindow); err != nil {
		errs = append(errs, fmt.Errorf("recent window: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxConcurrentRequests, 1, 20); err != nil {
		errs = append(errs, fmt.Errorf("max concurrent requests: %w", err))
	}
	if err := config.ValidateIntRange(c.RequestDelaySeconds, 0, 60); err != nil {
		errs = append(errs, fmt.Errorf("request delay: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxPagesInitial, 1, 200); err != nil {
		errs = append(errs, fmt.Errorf("max pages initial: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxPagesIncremental, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("max pages incremental: %w", err))
	}
	if err := config.ValidateDuration(c.CrawlTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("crawl timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if c.Discovery != "listing" && c.Discovery != "rss" {
		errs = append(errs, fmt.Errorf("discovery: must be \"listing\" or \"rss\", got %q", c.Discovery))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the scraper configuration from environment
// variables with validation and automatic fallback to defaults on
// failure (fail-open strategy).
//
// Environment variables:
//   - SCRAPER_INTERVAL_HOURS: Integer 1-24 (default: 1)
//   - SCRAPER_SCHEDULE: Optional cron expression overriding the interval
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - INITIAL_DAYS_BACK: Integer 1-365 (default: 30)
//   - RECENT_WINDOW: Duration string, e.g. "1h" (default: 1 hour)
//   - MAX_CONCURRENT_REQUESTS: Integer 1-20 (default: 5)
//   - REQUEST_DELAY: Integer seconds 0-60 (default: 2)
//   - LISTING_URL: Section page URL (default: https://www.ft.com/world)
//   - BASE_URL: Base URL for relative links (default: https://www.ft.com)
//   - FEED_URL: RSS feed URL for rss discovery (default: empty)
//   - DISCOVERY: "listing" or "rss" (default: "listing")
//   - MAX_PAGES_INITIAL: Integer 1-200 (default: 50)
//   - MAX_PAGES_INCREMENTAL: Integer 1-50 (default: 5)
//   - SELECTORS_FILE: Optional YAML selector override path (default: empty)
//   - RUN_ON_START: Boolean, run immediately at startup (default: true)
//   - CRAWL_TIMEOUT: Duration string, e.g. "30m" (default: 30 minutes)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//
// An invalid value never aborts startup: the field falls back to its
// default, a warning is logged and the fallback metrics are incremented.
// The returned error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*ScraperConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	fallback := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	cfg.IntervalHours = apply("scraper_interval_hours", fallback,
		config.LoadEnvInt("SCRAPER_INTERVAL_HOURS", cfg.IntervalHours, intRange(1, 24)))
	cfg.Schedule = apply("scraper_schedule", fallback,
		config.LoadEnvWithFallback("SCRAPER_SCHEDULE", cfg.Schedule, config.ValidateCronSchedule))
	cfg.Timezone = apply("timezone", fallback,
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.InitialDaysBack = apply("initial_days_back", fallback,
		config.LoadEnvInt("INITIAL_DAYS_BACK", cfg.InitialDaysBack, intRange(1, 365)))
	cfg.RecentWindow = apply("recent_window", fallback,
		config.LoadEnvDuration("RECENT_WINDOW", cfg.RecentWindow, durationRange(time.Minute, 7*24*time.Hour)))
	cfg.MaxConcurrentRequests = apply("max_concurrent_requests", fallback,
		config.LoadEnvInt("MAX_CONCURRENT_REQUESTS", cfg.MaxConcurrentRequests, intRange(1, 20)))
	cfg.RequestDelaySeconds = apply("request_delay", fallback,
		config.LoadEnvInt("REQUEST_DELAY", cfg.RequestDelaySeconds, intRange(0, 60)))

	cfg.ListingURL = config.LoadEnvString("LISTING_URL", cfg.ListingURL)
	cfg.BaseURL = config.LoadEnvString("BASE_URL", cfg.BaseURL)
	cfg.FeedURL = config.LoadEnvString("FEED_URL", cfg.FeedURL)
	cfg.SelectorsFile = config.LoadEnvString("SELECTORS_FILE", cfg.SelectorsFile)

	cfg.Discovery = apply("discovery", fallback,
		config.LoadEnvWithFallback("DISCOVERY", cfg.Discovery, func(s string) error {
			if s != "listing" && s != "rss" {
				return fmt.Errorf("must be \"listing\" or \"rss\", got %q", s)
			}
			return nil
		}))
	cfg.MaxPagesInitial = apply("max_pages_initial", fallback,
		config.LoadEnvInt("MAX_PAGES_INITIAL", cfg.MaxPagesInitial, intRange(1, 200)))
	cfg.MaxPagesIncremental = apply("max_pages_incremental", fallback,
		config.LoadEnvInt("MAX_PAGES_INCREMENTAL", cfg.MaxPagesIncremental, intRange(1, 50)))
	cfg.RunOnStart = apply("run_on_start", fallback,
		config.LoadEnvBool("RUN_ON_START", cfg.RunOnStart))
	cfg.CrawlTimeout = apply("crawl_timeout", fallback,
		config.LoadEnvDuration("CRAWL_TIMEOUT", cfg.CrawlTimeout, durationRange(time.Minute, 4*time.Hour)))
	cfg.HealthPort = apply("worker_health_port", fallback,
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, intRange(1024, 65535)))

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	// Always return a valid config (fail-open strategy).
	return &cfg, nil
}

// apply folds one load result into the config, recording fallback
// telemetry when the environment value was rejected.
func apply[T any](field string, fallback func(string, []string), r config.Result[T]) T {
	if r.FallbackApplied {
		fallback(field, r.Warnings)
	}
	return r.Value
}

func intRange(min, max int) func(int) error {
	return func(v int) error { return config.ValidateIntRange(v, min, max) }
}

func durationRange(min, max time.Duration) func(time.Duration) error {
	return func(d time.Duration) error { return config.ValidateDuration(d, min, max) }
}
