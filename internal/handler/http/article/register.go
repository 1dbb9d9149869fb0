package article

import (
	"net/http"

	"ft-crawler/internal/handler/http/respond"
)

// Register wires the article routes onto mux. All endpoints are read-only;
// non-GET methods receive 405.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/articles", onlyGet(h.List))
	mux.HandleFunc("/articles/", onlyGet(h.Get))
	mux.HandleFunc("/stats", onlyGet(h.Stats))
}

func onlyGet(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}
