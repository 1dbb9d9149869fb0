// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware extracts W3C Trace Context headers from incoming
// requests, creates a server span per request, and echoes the trace ID
// back to the client in the X-Trace-Id header. Span export is configured
// by the process entry point; without an exporter the spans are no-ops.
//
// Example usage:
//
//	mux := http.NewServeMux()
//	handler := tracing.Middleware(mux)
//	http.ListenAndServe(":8080", handler)
//
//	func fetchArticle(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "fetch-article")
//	    defer span.End()
//	}
package tracing
