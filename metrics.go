package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts requests by route pattern, method and status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolprofile",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	// httpDuration tracks handler latency
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schoolprofile",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"route"})

	// profileBuilds counts profile builds by grade level and result
	profileBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolprofile",
		Name:      "profile_builds_total",
		Help:      "Profile builds by grade level and result",
	}, []string{"grade_level", "result"})

	// summaryRequests counts AI overview lookups by source
	summaryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolprofile",
		Name:      "ai_summary_requests_total",
		Help:      "AI overview requests by source (cache, model, error)",
	}, []string{"source"})
)

// metricsMiddleware records request counts and latency per chi route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
