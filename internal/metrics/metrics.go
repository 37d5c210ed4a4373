// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviereview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviereview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviereview_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Response cache
	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviereview_response_cache_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Rate limiting
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviereview_rate_limited_total",
			Help: "Requests rejected by the token bucket",
		},
		[]string{"route"},
	)

	// Domain
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviereview_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	ReviewsModerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviereview_reviews_moderated_total",
			Help: "Reviews moved out of pending, by new status",
		},
		[]string{"status"},
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordCache records a response cache hit or miss.
func RecordCache(hit bool) {
	if hit {
		CacheResults.WithLabelValues("hit").Inc()
	} else {
		CacheResults.WithLabelValues("miss").Inc()
	}
}

// RecordLogin records a login outcome.
func RecordLogin(ok bool) {
	if ok {
		LoginAttempts.WithLabelValues("success").Inc()
	} else {
		LoginAttempts.WithLabelValues("failure").Inc()
	}
}
