package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roombook_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roombook_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	BookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roombook_booking_transitions_total",
			Help: "Booking writes by action and result.",
		},
		[]string{"action", "result"},
	)

	SnapshotReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roombook_snapshot_reloads_total",
			Help: "Live snapshot reloads by collection and result.",
		},
		[]string{"collection", "result"},
	)
)

var registerOnce sync.Once

// InitMetrics registers the collectors in the default registry.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequests, HTTPDuration, BookingTransitions, SnapshotReloads)
	})
}

// MetricsHandler serves the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
