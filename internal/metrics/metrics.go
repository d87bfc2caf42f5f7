// Package metrics exposes the Prometheus collectors registered by the
// HTTP middleware and the click pipeline (spec §4.10). All names follow
// the *_total / *_seconds naming convention used across the rest of the
// collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// RedirectHits counts successful redirects by domain.
	RedirectHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redirect_hits_total",
			Help: "Total number of successfully served redirects.",
		},
		[]string{"domain"},
	)

	// ClickEventsReceived counts click events enqueued by the redirect
	// handler, before any retry or drop decision.
	ClickEventsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_worker_received_total",
			Help: "Total number of click events enqueued for async processing.",
		},
	)

	// ClickEventsProcessed counts click events successfully persisted.
	ClickEventsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_worker_processed_total",
			Help: "Total number of click events successfully recorded.",
		},
	)

	// ClickEventsRetried counts retry attempts across all workers.
	ClickEventsRetried = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_worker_retried_total",
			Help: "Total number of click event retry attempts.",
		},
	)

	// ClickEventsFailed counts click events that exhausted their retry
	// budget and were permanently dropped.
	ClickEventsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_worker_failed_total",
			Help: "Total number of click events dropped after exhausting retries.",
		},
	)

	// ClickEventsDropped counts click events rejected at enqueue time
	// because the queue was full.
	ClickEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "click_worker_dropped_total",
			Help: "Total number of click events dropped because the queue was full.",
		},
	)

	// ClickQueueDepth gauges the current number of queued-but-unprocessed
	// click events.
	ClickQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "click_worker_queue_depth",
			Help: "Current number of click events waiting in the queue.",
		},
	)

	// DatabaseErrors counts unexpected store-layer errors by a coarse
	// type (e.g. pgx driver error code, or "connection" for errors with
	// no SQLSTATE), surfaced so operators can alert on sustained
	// Postgres trouble. Sentinel outcomes like not-found or a unique
	// violation are expected control flow, not errors, and are not
	// counted here.
	DatabaseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Total number of unexpected database errors by type.",
		},
		[]string{"type"},
	)

	// CacheErrors counts cache operations that failed for a reason other
	// than a miss (spec §4.6): the cache is an optimization, so these
	// never fail a request, but sustained non-zero rates mean Redis is
	// in trouble.
	CacheErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache operations that failed (excluding misses).",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequests, httpDuration, httpInflight,
		RedirectHits,
		ClickEventsReceived, ClickEventsProcessed, ClickEventsRetried,
		ClickEventsFailed, ClickEventsDropped, ClickQueueDepth,
		DatabaseErrors, CacheErrors,
	)
}

// HTTPMiddleware instruments every request with the http_* collectors.
// The path label uses the matched route template, not the raw URL, to
// keep cardinality bounded under code/domain fan-out.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequests.WithLabelValues(method, path, status).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
