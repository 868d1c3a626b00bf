package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ShoshinNikita/rthumb/pkg/metrics"
	"github.com/ShoshinNikita/rthumb/pkg/rlog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const requestIDHeader = "X-Request-Id"

func loggingMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, ok := metricsPath(r.URL.Path)
		if !ok {
			h.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		now := time.Now()
		rw := newResponseWriter(w)

		h.ServeHTTP(rw, r)

		dur := time.Since(now)

		if rw.statusCode >= http.StatusInternalServerError {
			rlog.Errorf("request %s: %s %q, status: %d, duration: %s", requestID, r.Method, r.URL.Path, rw.statusCode, dur)
		} else {
			rlog.Debugf("request %s: %s %q, status: %d, duration: %s", requestID, r.Method, r.URL.Path, rw.statusCode, dur)
		}

		metrics.HTTPResponseStatuses.
			With(prometheus.Labels{
				"status": strconv.Itoa(rw.statusCode),
			}).
			Inc()

		metrics.HTTPResponseTime.
			With(prometheus.Labels{
				"path": path,
			},
			).Observe(dur.Seconds())
	})
}

// metricsPath reduces the request path to one of a fixed set of metric labels.
// It returns false for requests that shouldn't be logged.
func metricsPath(path string) (string, bool) {
	switch {
	case path == "/favicon.ico" || strings.HasPrefix(path, "/debug"):
		return "", false
	case path == "/api/thumbnails":
		return path, true
	case strings.HasPrefix(path, "/api/thumbnail/"):
		return "/api/thumbnail/", true
	case strings.HasPrefix(path, "/api/"):
		return "/api/unknown", true
	default:
		return "/static/", true
	}
}

type responseWriter struct {
	http.ResponseWriter

	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// cacheMiddleware sets "Cache-Control" header. Thumbnails are never regenerated,
// so they can be cached for a long time.
func cacheMiddleware(maxAge time.Duration, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCacheHeaders(w, maxAge)

		h.ServeHTTP(w, r)
	})
}

func setCacheHeaders(w http.ResponseWriter, maxAge time.Duration) {
	cacheControl := fmt.Sprintf("public, max-age=%d", int64(maxAge.Seconds()))
	expTime := time.Now().Add(maxAge)

	w.Header().Set("Expires", expTime.Format(http.TimeFormat))
	w.Header().Set("Cache-Control", cacheControl)
}
