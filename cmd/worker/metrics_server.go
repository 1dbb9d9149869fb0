package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ft-crawler/internal/observability/metrics"
	"ft-crawler/internal/observability/slo"
	"ft-crawler/internal/repository"
	"ft-crawler/pkg/config"
)

// sloEvalInterval controls how often the SLO and state gauges are
// recomputed from the run history and the database.
const sloEvalInterval = time.Minute

// sloRunSample is how many recent runs feed the SLO computation.
const sloRunSample = 20

// startMetricsServer starts the Prometheus metrics HTTP server and the
// periodic SLO evaluation loop. Both stop when ctx is cancelled.
//
// Endpoints:
//   - GET /metrics - Prometheus scrape endpoint
//   - GET /health  - liveness probe, always 200
//
// The port is read from METRICS_PORT (default 9090).
func startMetricsServer(ctx context.Context, logger *slog.Logger, database *sql.DB, articles repository.ArticleRepository, runs repository.ScrapeRunRepository) *http.Server {
	port := config.GetEnvInt("METRICS_PORT", 9090)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	go observeState(ctx, logger, database, articles, runs)

	return server
}

// observeState periodically recomputes the crawl SLO gauges from the
// most recent runs and refreshes the database state gauges. Failures
// are logged and retried on the next tick.
func observeState(ctx context.Context, logger *slog.Logger, database *sql.DB, articles repository.ArticleRepository, runs repository.ScrapeRunRepository) {
	ticker := time.NewTicker(sloEvalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			recent, err := runs.ListRecent(ctx, sloRunSample)
			if err != nil {
				logger.Warn("failed to load runs for SLO evaluation", slog.Any("error", err))
			} else {
				slo.Evaluate(recent, time.Now())
			}

			if total, err := articles.Count(ctx); err != nil {
				logger.Warn("failed to count articles for metrics", slog.Any("error", err))
			} else {
				metrics.UpdateArticlesTotal(int(total))
			}

			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}
