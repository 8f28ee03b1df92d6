package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBTransientErrors counts database errors classified as transient
	DBTransientErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_db_transient_errors_total",
			Help: "Total number of transient database errors observed",
		},
	)

	// DBRetryAttempts counts retries scheduled after a transient error
	DBRetryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_db_retry_attempts_total",
			Help: "Total number of database retry attempts",
		},
	)

	// DBRetriesExhausted counts operations that failed after spending
	// their whole retry budget
	DBRetriesExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_db_retries_exhausted_total",
			Help: "Total number of database operations that exhausted retries",
		},
	)

	// DBConnectionPoolUsage tracks connection pool utilization percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_db_connection_pool_usage",
			Help: "Percentage of database connection pool in use",
		},
	)

	// DBProbeLatency tracks the latency of health probes against the database
	DBProbeLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insights_db_probe_latency_seconds",
			Help:    "Database connectivity probe latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// WebhooksReceived counts inbound Twilio webhook deliveries
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_webhooks_received_total",
			Help: "Total number of webhook deliveries received",
		},
		[]string{"result"},
	)

	// MessagesSent counts outbound WhatsApp messages
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_messages_sent_total",
			Help: "Total number of outbound WhatsApp messages",
		},
		[]string{"status"},
	)

	// HTTPRequests counts API requests by route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "code"},
	)
)
