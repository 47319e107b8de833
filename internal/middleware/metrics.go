package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"video-grid/internal/metrics"
)

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
	// StreamingPrefixes are counted but left out of the duration histogram,
	// since a video request lasts as long as playback.
	StreamingPrefixes []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths:         []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
		StreamingPrefixes: []string{"/videos/"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newMetricsResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			status := strconv.Itoa(wrapped.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			if !isStreamingPath(r.URL.Path, config.StreamingPrefixes) {
				metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
			}
		})
	}
}

func isStreamingPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// normalizePath maps a request path onto a low-cardinality label. File
// routes collapse to their prefix, API paths keep at most three segments,
// and everything else is a static asset.
func normalizePath(path string) string {
	switch {
	case path == "/":
		return "/"
	case strings.HasPrefix(path, "/thumbs/"):
		return "/thumbs/{path}"
	case strings.HasPrefix(path, "/videos/"):
		return "/videos/{path}"
	case strings.HasPrefix(path, "/api/"):
		parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
		if len(parts) > 4 {
			return strings.Join(parts[:4], "/") + "/{path}"
		}
		return strings.Join(parts, "/")
	default:
		return "/{static}"
	}
}
