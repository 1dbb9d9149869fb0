package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ft-crawler/internal/common/pagination"
	pgRepo "ft-crawler/internal/infra/adapter/persistence/postgres"
	"ft-crawler/internal/infra/db"
	"ft-crawler/internal/observability/logging"
	"ft-crawler/internal/observability/tracing"
	"ft-crawler/pkg/config"

	artUC "ft-crawler/internal/usecase/article"

	hhttp "ft-crawler/internal/handler/http"
	harticle "ft-crawler/internal/handler/http/article"
	"ft-crawler/internal/handler/http/requestid"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(database, version)

	runServer(logger, handler, version)
}

// initLogger initializes the process-wide structured logger.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// setupServer registers all routes and wraps them in the middleware chain.
func setupServer(database *sql.DB, version string) http.Handler {
	artSvc := &artUC.Service{
		Articles: pgRepo.NewArticleRepo(database),
		Runs:     pgRepo.NewScrapeRunRepo(database),
	}

	mux := http.NewServeMux()

	articleHandler := harticle.NewHandler(artSvc, pagination.LoadFromEnv())
	articleHandler.Register(mux)

	health := hhttp.NewHealthHandler(database, version)
	mux.HandleFunc("/health", health.Liveness)
	mux.HandleFunc("/health/ready", health.Readiness)
	mux.Handle("/metrics", hhttp.MetricsHandler())

	return applyMiddleware(slog.Default(), mux)
}

// applyMiddleware wraps the handler with the middleware chain, applied in
// reverse so the first listed runs outermost:
// tracing, request ID, recovery, logging, input validation, body limit,
// timeout, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.Timeout(requestTimeout)(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.InputValidation(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	chain = tracing.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and blocks until a shutdown signal.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + config.GetEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		// Slowloris protection.
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
