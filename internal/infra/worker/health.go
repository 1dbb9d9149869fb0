package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const healthShutdownTimeout = 5 * time.Second

// HealthServer exposes the worker's probe endpoints:
//
//	/health        liveness, always 200 while the process can answer
//	/health/ready  readiness, 503 until startup completes and again
//	               during shutdown
//
// Both responses carry a "scraping" flag reporting whether a scrape run
// is in flight, which is how operators see live run state (runs are
// only persisted once they finish).
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	ready    atomic.Bool
	scraping func() bool
	server   *http.Server
}

type healthResponse struct {
	Status   string `json:"status"`
	Scraping bool   `json:"scraping"`
}

// NewHealthServer builds the probe server. scraping may be nil when run
// status reporting is not needed (tests, tooling).
func NewHealthServer(addr string, logger *slog.Logger, scraping func() bool) *HealthServer {
	return &HealthServer{addr: addr, logger: logger, scraping: scraping}
}

// Start serves until ctx is canceled or the listener fails, then shuts
// down gracefully. It always returns a non-nil error; a clean shutdown
// returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- h.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), healthShutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errCh:
		if err != http.ErrServerClosed {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

// SetReady flips what /health/ready reports. The worker sets it true
// once the scheduler is running and false when shutdown begins, so
// load balancers stop routing before the process exits.
func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) inProgress() bool {
	return h.scraping != nil && h.scraping()
}

func (h *HealthServer) writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := healthResponse{Status: status, Scraping: h.inProgress()}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, http.StatusOK, "ok")
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.ready.Load() {
		h.writeStatus(w, http.StatusOK, "ok")
		return
	}
	h.writeStatus(w, http.StatusServiceUnavailable, "not ready")
}
