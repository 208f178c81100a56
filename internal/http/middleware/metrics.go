package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that hit no registered route so probes for
// random URLs cannot blow up series cardinality.
const unmatchedRoute = "unmatched"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// Buckets cover a cached list read up to a contended reaction toggle
	// waiting on the row lock.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "video",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of short-lived HTTP requests by method and route template.",
			Buckets:   []float64{.002, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "video",
			Subsystem: "http",
			Name:      "requests_inflight",
			Help:      "Requests currently being served, including open WebSocket sessions.",
		},
	)

	// wsSessionSeconds records how long upgraded connections stayed open.
	wsSessionSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "video",
			Subsystem: "ws",
			Name:      "session_duration_seconds",
			Help:      "Lifetime of long-lived connections such as WebSocket sessions.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1s .. ~4.5h
		},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "video",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by route template.",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, wsSessionSeconds, rateLimited)
}

// routeLabel returns the registered route template for c.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedRoute
}

// Metrics instruments every request with Prometheus collectors. Requests to
// the paths in longLived (the WebSocket endpoint) are counted but their
// duration goes to the session histogram, not the request latency one.
func Metrics(longLived ...string) gin.HandlerFunc {
	sessions := make(map[string]struct{}, len(longLived))
	for _, p := range longLived {
		sessions[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		elapsed := time.Since(start).Seconds()
		route := routeLabel(c)
		method := c.Request.Method

		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if _, ok := sessions[c.Request.URL.Path]; ok {
			wsSessionSeconds.Observe(elapsed)
			return
		}
		httpLat.WithLabelValues(method, route).Observe(elapsed)
	}
}
