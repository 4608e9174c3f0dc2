// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidfetch_http_request_duration_seconds",
		Help:    "Control API request latency by route and status",
		Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 30, 120},
	}, []string{"method", "path", "status"})

	apiRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidfetch_http_requests_in_flight",
		Help: "Control API requests currently being served",
	})

	apiResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidfetch_http_response_size_bytes",
		Help:    "Control API response body size",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"path"})
)

// Metrics observes every control API request. The path label is the chi route
// pattern, so /session/quality/{kind} is one series however it is called.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiRequestsInFlight.Inc()
			defer apiRequestsInFlight.Dec()

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := routePattern(r)
			apiRequestDuration.
				WithLabelValues(r.Method, path, strconv.Itoa(statusOf(ww))).
				Observe(time.Since(start).Seconds())
			if n := ww.BytesWritten(); n > 0 {
				apiResponseSize.WithLabelValues(path).Observe(float64(n))
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// statusOf treats a handler that never wrote a header as 200.
func statusOf(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
