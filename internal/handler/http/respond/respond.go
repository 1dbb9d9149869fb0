// Package respond provides helpers for writing JSON HTTP responses.
// It centralizes content-type handling, error payload shape, and
// sanitization of error messages before they reach clients.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// ErrorResponse is the JSON body returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status code.
// Encoding failures are logged but cannot be reported to the client
// because the header has already been written.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// Error writes a JSON error response with the given status code and message.
// The message is sent to the client verbatim, so callers must not pass
// internal error strings directly; use SafeError for that.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// safeSubstrings lists fragments of error messages that are safe to expose
// to clients. Anything else is replaced by a generic message.
var safeSubstrings = []string{
	"not found",
	"invalid",
	"required",
	"must be",
	"exceeds",
	"timeout",
}

// SafeError writes a JSON error response derived from err. Messages that
// match a known-safe pattern pass through after sanitization; all others
// are replaced with a generic message while the original is logged with
// the request context.
func SafeError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		Error(w, status, http.StatusText(status))
		return
	}

	msg := SanitizeError(err)
	lower := strings.ToLower(msg)
	for _, s := range safeSubstrings {
		if strings.Contains(lower, s) {
			Error(w, status, msg)
			return
		}
	}

	slog.Error("request failed",
		slog.Int("status", status),
		slog.String("error", msg),
	)
	Error(w, status, http.StatusText(status))
}
