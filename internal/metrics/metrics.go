// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nivasa_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	MilestoneTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nivasa_milestone_transitions_total",
			Help: "Milestone status transitions applied",
		},
		[]string{"from", "to"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nivasa_exports_total",
			Help: "Expense exports produced",
		},
		[]string{"sink"}, // csv, sheets
	)

	DashboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nivasa_dashboard_cache_total",
			Help: "Dashboard stats cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nivasa_events_consumed_total",
			Help: "Entity change events handled by the stats worker",
		},
		[]string{"status"}, // ok, failed, dropped
	)

	SecurityEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nivasa_security_events_total",
			Help: "Requests rejected or flagged by the HTTP middleware",
		},
		[]string{"kind"}, // rate_limited, suspicious, unauthorized
	)
)

func RecordHTTPRequestDuration(method, route, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func IncMilestoneTransition(from, to string) {
	MilestoneTransitions.WithLabelValues(from, to).Inc()
}

func IncExport(sink string) {
	Exports.WithLabelValues(sink).Inc()
}

func IncDashboardCache(hit bool) {
	if hit {
		DashboardCache.WithLabelValues("hit").Inc()
		return
	}
	DashboardCache.WithLabelValues("miss").Inc()
}

func IncEventConsumed(status string) {
	EventsConsumed.WithLabelValues(status).Inc()
}

func IncSecurityEvent(kind string) {
	SecurityEvents.WithLabelValues(kind).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
