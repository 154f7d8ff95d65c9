package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/mcp-cloudflare-one/internal/instrumentation"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// newResponseWriter creates a new responseWriter wrapper.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // Default status code
	}
}

// WriteHeader captures the status code before writing the header.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write captures that a response was written.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter to support http.Flusher etc.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Flush implements http.Flusher for streaming responses.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// HTTPRecorder records one served HTTP request.
type HTTPRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// OtherRoute and OtherMethod label requests outside the known route and
// method sets.
const (
	OtherRoute  = "other"
	OtherMethod = "OTHER"
)

// HTTPMetrics records request count and duration per method, route and
// status. Only the given routes are labelled by path; a request below a
// route ("/mcp/abc") counts as that route and anything else as OtherRoute,
// so scanners cannot grow the label set. A nil recorder makes the
// middleware a pass-through.
func HTTPMetrics(recorder HTTPRecorder, routes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil || isNilRecorder(recorder) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			recorder.RecordHTTPRequest(r.Context(), methodLabel(r.Method), routeLabel(r.URL.Path, routes), wrapped.statusCode, time.Since(start))
		})
	}
}

// isNilRecorder catches a typed nil *instrumentation.Metrics passed as the
// interface.
func isNilRecorder(recorder HTTPRecorder) bool {
	m, ok := recorder.(*instrumentation.Metrics)
	return ok && m == nil
}

// routeLabel returns the longest route that path equals or sits below.
func routeLabel(path string, routes []string) string {
	best := ""
	for _, route := range routes {
		if route == "" || len(route) <= len(best) {
			continue
		}
		if path == route || strings.HasPrefix(path, strings.TrimSuffix(route, "/")+"/") {
			best = route
		}
	}
	if best == "" {
		return OtherRoute
	}
	return best
}

func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	default:
		return OtherMethod
	}
}
