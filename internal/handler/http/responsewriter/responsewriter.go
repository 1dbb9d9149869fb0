// Package responsewriter observes the status code and body size of a
// response as it is written, for the logging and metrics middleware.
package responsewriter

import "net/http"

// ResponseWriter records what flows through the wrapped writer. The
// status code reads as 200 until WriteHeader or the first Write, which
// matches what the client would see.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written int
	sent    bool
}

// Wrap returns a recording wrapper around w.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the status code. Repeated calls are ignored so
// the recorded code is the one actually sent.
func (w *ResponseWriter) WriteHeader(status int) {
	if w.sent {
		return
	}
	w.status = status
	w.sent = true
	w.ResponseWriter.WriteHeader(status)
}

// Write sends an implicit 200 when no header was written yet, then
// counts the bytes written.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.sent {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// StatusCode returns the status code sent to the client.
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten returns the number of body bytes sent so far.
func (w *ResponseWriter) BytesWritten() int { return w.written }

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
