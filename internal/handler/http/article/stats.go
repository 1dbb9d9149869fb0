package article

import (
	"net/http"
	"strconv"

	"ft-crawler/internal/handler/http/respond"
)

const maxRecentRuns = 50

// Stats handles GET /stats. The optional runs query parameter bounds how
// many recent scrape runs are included (default 10, max 50).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	runLimit := 0
	if raw := r.URL.Query().Get("runs"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecentRuns {
			respond.Error(w, http.StatusBadRequest, "runs must be an integer between 1 and 50")
			return
		}
		runLimit = n
	}

	stats, err := h.Service.GetStats(r.Context(), runLimit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	runs := make([]RunResponse, 0, len(stats.RecentRuns))
	for _, run := range stats.RecentRuns {
		runs = append(runs, toRunResponse(run))
	}

	respond.JSON(w, http.StatusOK, StatsResponse{
		TotalArticles: stats.TotalArticles,
		RecentRuns:    runs,
	})
}
