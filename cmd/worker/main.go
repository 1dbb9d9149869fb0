package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	pgRepo "ft-crawler/internal/infra/adapter/persistence/postgres"
	"ft-crawler/internal/infra/browser"
	"ft-crawler/internal/infra/db"
	"ft-crawler/internal/infra/scraper"
	workerPkg "ft-crawler/internal/infra/worker"
	"ft-crawler/internal/observability/logging"
	"ft-crawler/internal/usecase/ingest"
)

const crawlerUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_spec", workerConfig.CronSpec()),
		slog.String("timezone", workerConfig.Timezone),
		slog.String("discovery", workerConfig.Discovery),
		slog.Int("max_concurrent", workerConfig.MaxConcurrentRequests),
		slog.Duration("crawl_timeout", workerConfig.CrawlTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	orch, err := buildOrchestrator(logger, database, workerConfig)
	if err != nil {
		logger.Error("failed to build crawl orchestrator", slog.Any("error", err))
		os.Exit(1)
	}

	artRepo := pgRepo.NewArticleRepo(database)
	runRepo := pgRepo.NewScrapeRunRepo(database)
	startMetricsServer(ctx, logger, database, artRepo, runRepo)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, orch.InProgress)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronWorker(ctx, logger, orch, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the connection pool and applies the schema.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// buildOrchestrator wires the browser launcher, parsers, store, and run
// repository into the crawl orchestrator.
func buildOrchestrator(logger *slog.Logger, database *sql.DB, cfg *workerPkg.ScraperConfig) (*ingest.Orchestrator, error) {
	selectors := scraper.DefaultSelectors()
	if cfg.SelectorsFile != "" {
		loaded, err := scraper.LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			return nil, fmt.Errorf("load selectors from %s: %w", cfg.SelectorsFile, err)
		}
		selectors = loaded
		logger.Info("selector overrides loaded", slog.String("file", cfg.SelectorsFile))
	}

	artRepo := pgRepo.NewArticleRepo(database)
	runRepo := pgRepo.NewScrapeRunRepo(database)
	store := ingest.NewStore(artRepo)
	discoverer := scraper.NewRSSDiscoverer(newCrawlHTTPClient())
	launcher := browser.NewHTTPLauncher()

	return ingest.NewOrchestrator(launcher, store, runRepo, selectors, discoverer, ingest.Config{
		ListingURL:          cfg.ListingURL,
		BaseURL:             cfg.BaseURL,
		FeedURL:             cfg.FeedURL,
		Discovery:           cfg.Discovery,
		InitialDaysBack:     cfg.InitialDaysBack,
		RecentWindow:        cfg.RecentWindow,
		MaxPagesInitial:     cfg.MaxPagesInitial,
		MaxPagesIncremental: cfg.MaxPagesIncremental,
		Concurrency:         cfg.MaxConcurrentRequests,
		PerRequestDelay:     cfg.RequestDelay(),
		InterPageDelay:      scraper.DefaultInterPageDelay,
		NavigationTimeout:   browser.DefaultNavigationTimeout,
		LaunchMaxAttempts:   3,
		LaunchBackoffCap:    10 * time.Second,
		BrowserOptions: browser.Options{
			UserAgent:         crawlerUserAgent,
			NavigationTimeout: browser.DefaultNavigationTimeout,
		},
	})
}

// newCrawlHTTPClient creates the HTTP client used for feed discovery.
// TLS 1.2+ is enforced.
func newCrawlHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// startCronWorker schedules periodic crawl runs and blocks until shutdown.
// The first run fires immediately when RunOnStart is set; subsequent runs
// follow the cron spec. A trigger that arrives while the previous run is
// still executing is skipped and counted.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	orch *ingest.Orchestrator,
	cfg *workerPkg.ScraperConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		os.Exit(1)
	}

	runJob := func() {
		jobCtx, cancel := context.WithTimeout(ctx, cfg.CrawlTimeout)
		defer cancel()

		start := time.Now()
		run, err := orch.RunJob(jobCtx)
		switch {
		case errors.Is(err, ingest.ErrJobInProgress):
			metrics.RecordJobSkipped()
			return
		case err != nil:
			metrics.RecordJobRun("failure")
			metrics.RecordJobDuration(time.Since(start).Seconds())
			logger.Error("scrape run failed", slog.Any("error", err))
			return
		}

		metrics.RecordJobRun("success")
		metrics.RecordJobDuration(time.Since(start).Seconds())
		metrics.RecordArticlesSaved(run.Saved)
		metrics.RecordLastSuccess()
	}

	c := cron.New(cron.WithLocation(location))
	if _, err := c.AddFunc(cfg.CronSpec(), runJob); err != nil {
		logger.Error("failed to schedule crawl job",
			slog.String("cron_spec", cfg.CronSpec()),
			slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()
	healthServer.SetReady(true)
	logger.Info("crawl worker started",
		slog.String("cron_spec", cfg.CronSpec()),
		slog.String("timezone", cfg.Timezone))

	if cfg.RunOnStart {
		go runJob()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping scheduler")
	healthServer.SetReady(false)

	// Wait for an in-flight run to finish before exiting.
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.CrawlTimeout):
		logger.Warn("in-flight run did not finish before shutdown timeout")
	}
	logger.Info("crawl worker stopped")
}
