package http

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Timeout caps how long a handler may run. When the deadline passes the
// client gets a 504 and the handler's context is canceled so it can
// stop work; any writes the abandoned handler still attempts are
// swallowed instead of corrupting the timeout response.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			guarded := &guardedWriter{inner: w}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(guarded, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				guarded.abandon(func() {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusGatewayTimeout)
					_, _ = w.Write([]byte(`{"error":"request timeout"}`))
				})
			}
		})
	}
}

// guardedWriter serializes the race between the handler goroutine and
// the timeout path. Whichever writes first wins; the loser's writes are
// dropped.
type guardedWriter struct {
	inner http.ResponseWriter

	mu        sync.Mutex
	started   bool
	abandoned bool
}

// abandon marks the writer dead and, when the handler has not produced
// output yet, runs sendTimeout to emit the 504.
func (g *guardedWriter) abandon(sendTimeout func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.abandoned = true
	if !g.started {
		sendTimeout()
	}
}

func (g *guardedWriter) Header() http.Header {
	return g.inner.Header()
}

func (g *guardedWriter) WriteHeader(status int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.abandoned || g.started {
		return
	}
	g.started = true
	g.inner.WriteHeader(status)
}

func (g *guardedWriter) Write(b []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.abandoned {
		return 0, http.ErrHandlerTimeout
	}
	if !g.started {
		g.started = true
		g.inner.WriteHeader(http.StatusOK)
	}
	return g.inner.Write(b)
}
