package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedRoute = "unmatched"

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics observes request latency labelled by method, route pattern and
// status. A nil histogram disables it.
func Metrics(requestDuration *prometheus.HistogramVec) Middleware {
	if requestDuration == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			requestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
