package http

import (
	"net/http"

	"ft-crawler/internal/handler/http/respond"
)

const (
	// maxPathLength bounds the URL path to reject abusive requests early.
	maxPathLength = 2048
	// maxQueryLength bounds the raw query string.
	maxQueryLength = 4096
)

// InputValidation returns middleware that rejects structurally abusive
// requests before they reach any handler: oversized paths or query
// strings get a 414, and requests with a null byte anywhere in the URL
// get a 400.
func InputValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > maxPathLength {
			respond.Error(w, http.StatusRequestURITooLong, "request path exceeds maximum length")
			return
		}
		if len(r.URL.RawQuery) > maxQueryLength {
			respond.Error(w, http.StatusRequestURITooLong, "query string exceeds maximum length")
			return
		}
		for i := 0; i < len(r.URL.Path); i++ {
			if r.URL.Path[i] == 0 {
				respond.Error(w, http.StatusBadRequest, "invalid characters in request path")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
