package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"ft-crawler/internal/handler/http/respond"
)

// HealthHandler reports API server health, including database reachability.
type HealthHandler struct {
	DB      *sql.DB
	Version string
}

// HealthResponse is the JSON body returned by the health endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database,omitempty"`
}

// NewHealthHandler creates a health handler backed by the given database.
func NewHealthHandler(db *sql.DB, version string) *HealthHandler {
	return &HealthHandler{DB: db, Version: version}
}

// Liveness responds 200 as long as the process is serving requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.Version})
}

// Readiness responds 200 when the database answers a ping within 2 seconds,
// 503 otherwise.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:   "unavailable",
				Version:  h.Version,
				Database: "down",
			})
			return
		}
	}

	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  h.Version,
		Database: "up",
	})
}
