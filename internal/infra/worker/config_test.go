package worker

import (
	"bytes"
	"log/slog"
	"testing"
	"time"
)

// globalTestMetrics is a shared metrics instance for tests to avoid
// duplicate Prometheus registration panics from promauto.
var globalTestMetrics = NewWorkerMetrics()

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.IntervalHours != 1 {
		t.Errorf("Expected IntervalHours 1, got %d", config.IntervalHours)
	}
	if config.Timezone != "UTC" {
		t.Errorf("Expected Timezone 'UTC', got '%s'", config.Timezone)
	}
	if config.InitialDaysBack != 30 {
		t.Errorf("Expected InitialDaysBack 30, got %d", config.InitialDaysBack)
	}
	if config.RecentWindow != time.Hour {
		t.Errorf("Expected RecentWindow 1h, got %v", config.RecentWindow)
	}
	if config.MaxConcurrentRequests != 5 {
		t.Errorf("Expected MaxConcurrentRequests 5, got %d", config.MaxConcurrentRequests)
	}
	if config.RequestDelaySeconds != 2 {
		t.Errorf("Expected RequestDelaySeconds 2, got %d", config.RequestDelaySeconds)
	}
	if config.MaxPagesInitial != 50 {
		t.Errorf("Expected MaxPagesInitial 50, got %d", config.MaxPagesInitial)
	}
	if config.MaxPagesIncremental != 5 {
		t.Errorf("Expected MaxPagesIncremental 5, got %d", config.MaxPagesIncremental)
	}
	if config.Discovery != "listing" {
		t.Errorf("Expected Discovery 'listing', got '%s'", config.Discovery)
	}
	if !config.RunOnStart {
		t.Error("Expected RunOnStart true")
	}
	if config.CrawlTimeout != 30*time.Minute {
		t.Errorf("Expected CrawlTimeout 30m, got %v", config.CrawlTimeout)
	}
	if config.HealthPort != 9091 {
		t.Errorf("Expected HealthPort 9091, got %d", config.HealthPort)
	}
}

func TestScraperConfig_RequestDelay(t *testing.T) {
	config := DefaultConfig()
	config.RequestDelaySeconds = 3

	if got := config.RequestDelay(); got != 3*time.Second {
		t.Errorf("RequestDelay() = %v, want 3s", got)
	}
}

func TestScraperConfig_CronSpec(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		schedule string
		want     string
	}{
		{"hourly default", 1, "", "0 */1 * * *"},
		{"every six hours", 6, "", "0 */6 * * *"},
		{"explicit schedule wins", 1, "30 5 * * *", "30 5 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.IntervalHours = tt.interval
			config.Schedule = tt.schedule

			if got := config.CronSpec(); got != tt.want {
				t.Errorf("CronSpec() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScraperConfig_Validate_ValidConfig(t *testing.T) {
	config := DefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got error: %v", err)
	}
}

func TestScraperConfig_Validate_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScraperConfig)
	}{
		{"interval too low", func(c *ScraperConfig) { c.IntervalHours = 0 }},
		{"interval too high", func(c *ScraperConfig) { c.IntervalHours = 25 }},
		{"bad schedule", func(c *ScraperConfig) { c.Schedule = "not a cron" }},
		{"bad timezone", func(c *ScraperConfig) { c.Timezone = "Invalid/Zone" }},
		{"days back zero", func(c *ScraperConfig) { c.InitialDaysBack = 0 }},
		{"days back too high", func(c *ScraperConfig) { c.InitialDaysBack = 366 }},
		{"negative recent window", func(c *ScraperConfig) { c.RecentWindow = -time.Minute }},
		{"concurrency zero", func(c *ScraperConfig) { c.MaxConcurrentRequests = 0 }},
		{"concurrency too high", func(c *ScraperConfig) { c.MaxConcurrentRequests = 21 }},
		{"negative delay", func(c *ScraperConfig) { c.RequestDelaySeconds = -1 }},
		{"max pages initial zero", func(c *ScraperConfig) { c.MaxPagesInitial = 0 }},
		{"crawl timeout too short", func(c *ScraperConfig) { c.CrawlTimeout = time.Second }},
		{"privileged health port", func(c *ScraperConfig) { c.HealthPort = 80 }},
		{"unknown discovery", func(c *ScraperConfig) { c.Discovery = "sitemap" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			if err := config.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestScraperConfig_Validate_BoundaryValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScraperConfig)
	}{
		{"interval max", func(c *ScraperConfig) { c.IntervalHours = 24 }},
		{"days back max", func(c *ScraperConfig) { c.InitialDaysBack = 365 }},
		{"concurrency max", func(c *ScraperConfig) { c.MaxConcurrentRequests = 20 }},
		{"zero delay", func(c *ScraperConfig) { c.RequestDelaySeconds = 0 }},
		{"crawl timeout max", func(c *ScraperConfig) { c.CrawlTimeout = 4 * time.Hour }},
		{"rss discovery", func(c *ScraperConfig) { c.Discovery = "rss" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			if err := config.Validate(); err != nil {
				t.Errorf("Expected boundary value to be valid, got error: %v", err)
			}
		})
	}
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)
	if err != nil {
		t.Fatalf("LoadConfigFromEnv should never return an error, got: %v", err)
	}
	if config == nil {
		t.Fatal("LoadConfigFromEnv returned nil config")
	}

	want := DefaultConfig()
	if config.IntervalHours != want.IntervalHours {
		t.Errorf("IntervalHours = %d, want default %d", config.IntervalHours, want.IntervalHours)
	}
	if config.ListingURL != want.ListingURL {
		t.Errorf("ListingURL = %q, want default %q", config.ListingURL, want.ListingURL)
	}
}

func TestLoadConfigFromEnv_ValidOverrides(t *testing.T) {
	t.Setenv("SCRAPER_INTERVAL_HOURS", "6")
	t.Setenv("INITIAL_DAYS_BACK", "7")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "3")
	t.Setenv("REQUEST_DELAY", "5")
	t.Setenv("LISTING_URL", "https://www.ft.com/markets")
	t.Setenv("MAX_PAGES_INITIAL", "10")
	t.Setenv("CRAWL_TIMEOUT", "15m")
	t.Setenv("RUN_ON_START", "false")

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	config, _ := LoadConfigFromEnv(logger, globalTestMetrics)

	if config.IntervalHours != 6 {
		t.Errorf("IntervalHours = %d, want 6", config.IntervalHours)
	}
	if config.InitialDaysBack != 7 {
		t.Errorf("InitialDaysBack = %d, want 7", config.InitialDaysBack)
	}
	if config.MaxConcurrentRequests != 3 {
		t.Errorf("MaxConcurrentRequests = %d, want 3", config.MaxConcurrentRequests)
	}
	if config.RequestDelaySeconds != 5 {
		t.Errorf("RequestDelaySeconds = %d, want 5", config.RequestDelaySeconds)
	}
	if config.ListingURL != "https://www.ft.com/markets" {
		t.Errorf("ListingURL = %q, want override", config.ListingURL)
	}
	if config.MaxPagesInitial != 10 {
		t.Errorf("MaxPagesInitial = %d, want 10", config.MaxPagesInitial)
	}
	if config.CrawlTimeout != 15*time.Minute {
		t.Errorf("CrawlTimeout = %v, want 15m", config.CrawlTimeout)
	}
	if config.RunOnStart {
		t.Error("RunOnStart = true, want override false")
	}
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCRAPER_INTERVAL_HOURS", "0")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "not a number")
	t.Setenv("REQUEST_DELAY", "-3")
	t.Setenv("DISCOVERY", "carrier-pigeon")

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)
	if err != nil {
		t.Fatalf("fail-open load returned error: %v", err)
	}

	want := DefaultConfig()
	if config.IntervalHours != want.IntervalHours {
		t.Errorf("IntervalHours = %d, want fallback %d", config.IntervalHours, want.IntervalHours)
	}
	if config.MaxConcurrentRequests != want.MaxConcurrentRequests {
		t.Errorf("MaxConcurrentRequests = %d, want fallback %d", config.MaxConcurrentRequests, want.MaxConcurrentRequests)
	}
	if config.RequestDelaySeconds != want.RequestDelaySeconds {
		t.Errorf("RequestDelaySeconds = %d, want fallback %d", config.RequestDelaySeconds, want.RequestDelaySeconds)
	}
	if config.Discovery != want.Discovery {
		t.Errorf("Discovery = %q, want fallback %q", config.Discovery, want.Discovery)
	}

	if logBuf.Len() == 0 {
		t.Error("Expected fallback warnings to be logged")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Config after fallback should be valid, got: %v", err)
	}
}
