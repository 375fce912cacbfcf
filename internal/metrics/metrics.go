// Package metrics provides Prometheus instrumentation for the fraud engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upishield",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upishield",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TransactionsIngestedTotal counts processed transaction events by outcome.
	TransactionsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upishield",
			Name:      "transactions_ingested_total",
			Help:      "Total transaction events ingested, by outcome (ok, alert, rejected).",
		},
		[]string{"outcome"},
	)

	// VelocityAlertsTotal counts raised velocity alerts by risk level.
	VelocityAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upishield",
			Name:      "velocity_alerts_total",
			Help:      "Total velocity alerts raised, by risk level.",
		},
		[]string{"level"},
	)

	// IdentifierScansTotal counts identifier scans by result.
	IdentifierScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upishield",
			Name:      "identifier_scans_total",
			Help:      "Total identifier scans, by result (hit, default).",
		},
		[]string{"result"},
	)

	// AlertResolutionsTotal counts alert resolutions by reviewer decision.
	AlertResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upishield",
			Name:      "alert_resolutions_total",
			Help:      "Total alert resolutions, by decision.",
		},
		[]string{"decision"},
	)

	// PendingAlerts tracks the current size of the triage queue.
	PendingAlerts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "upishield",
		Name:      "pending_alerts",
		Help:      "Number of velocity alerts currently awaiting review.",
	})

	// WebhookDeliveriesTotal counts webhook delivery attempts by result.
	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upishield",
			Name:      "webhook_deliveries_total",
			Help:      "Total webhook deliveries by result.",
		},
		[]string{"result"},
	)
)

// Register registers all collectors with the default registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		TransactionsIngestedTotal,
		VelocityAlertsTotal,
		IdentifierScansTotal,
		AlertResolutionsTotal,
		PendingAlerts,
		WebhookDeliveriesTotal,
	)
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
