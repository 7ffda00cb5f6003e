// Package metrics holds the Prometheus instruments of the API. All collectors
// are registered with the global registry and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"})

	ViewIncrementErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_view_increment_errors_total",
			Help: "Failed view counter increments by entity.",
		}, []string{"entity"})

	LiveEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_events_dropped_total",
			Help: "Admin live events dropped because a client buffer was full.",
		})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ViewIncrementErrors,
		LiveEventsDropped,
	)
}
