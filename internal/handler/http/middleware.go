// Package http provides HTTP handlers and middleware for the API server.
package http

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"ft-crawler/internal/handler/http/requestid"
	"ft-crawler/internal/handler/http/respond"
	"ft-crawler/internal/handler/http/responsewriter"
)

// Logging returns middleware that logs each request with its method, path,
// status, duration, and size. The request ID and, when a span is active,
// the OpenTelemetry trace ID are included so log lines can be correlated
// with traces.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.StatusCode()),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if id := requestid.FromContext(r.Context()); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}
			if span := trace.SpanFromContext(r.Context()); span.SpanContext().HasTraceID() {
				attrs = append(attrs, slog.String("trace_id", span.SpanContext().TraceID().String()))
			}

			logger.Info("http request", attrs...)
		})
	}
}

// Recover returns middleware that converts panics in downstream handlers
// into 500 responses. The panic value and stack trace are logged.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					respond.Error(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody returns middleware that caps the request body at
// maxBytes. Reads past the limit fail with http.MaxBytesError, which
// handlers surface as 413.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
