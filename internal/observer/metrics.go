package observer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// Labels for health probe metrics
	healthCheckLabels = []string{"provider_family", "provider_type", "outcome"}
	// Labels for webhook callback metrics
	webhookLabels = []string{"vendor", "outcome"}
	// Labels for usage metrics
	usageLabels = []string{"provider_family", "provider_type"}

	// HealthChecksTotal counts health probes by family, type and outcome
	// (connected/unhealthy/resolution_failed).
	HealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_provider_service_health_checks_total",
			Help: "Total number of provider health probes, labeled by outcome.",
		},
		healthCheckLabels,
	)

	// HealthCheckDurationSeconds observes wall-clock probe durations.
	HealthCheckDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "call_provider_service_health_check_duration_seconds",
			Help:    "Histogram of provider health probe durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"provider_family", "provider_type"},
	)

	// WebhookCallbacksTotal counts vendor status callbacks, labeled by
	// outcome (logged/ignored/error).
	WebhookCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_provider_service_webhook_callbacks_total",
			Help: "Total number of vendor status callbacks received, labeled by outcome.",
		},
		webhookLabels,
	)

	// UsageIncrementsTotal counts quota counter increments.
	UsageIncrementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_provider_service_usage_increments_total",
			Help: "Total number of provider usage counter increments.",
		},
		usageLabels,
	)

	// CallsDispatchedTotal counts outbound call attempts, labeled by outcome.
	CallsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "call_provider_service_calls_dispatched_total",
			Help: "Total number of outbound call attempts, labeled by outcome.",
		},
		[]string{"provider_family", "provider_type", "outcome"},
	)
)

// Labels for database operations
var (
	dbOperationLabels = []string{"operation", "entity", "status"}

	// DatabaseOperationDurationSeconds observes repository operation durations.
	DatabaseOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "call_provider_service_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		dbOperationLabels,
	)
)

// InitMetrics initializes the Prometheus metrics if enabled.
// Call this function during application startup.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

// IncHealthCheck increments the health probe counter.
func IncHealthCheck(family, providerType, outcome string) {
	if !metricsEnabled {
		return
	}
	HealthChecksTotal.WithLabelValues(family, sanitizeLabel(providerType), outcome).Inc()
}

// ObserveHealthCheckDuration records a probe's wall-clock duration.
func ObserveHealthCheckDuration(family, providerType string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	HealthCheckDurationSeconds.WithLabelValues(family, sanitizeLabel(providerType)).Observe(duration.Seconds())
}

// IncWebhookCallback increments the webhook callback counter.
func IncWebhookCallback(vendor, outcome string) {
	if !metricsEnabled {
		return
	}
	WebhookCallbacksTotal.WithLabelValues(vendor, outcome).Inc()
}

// IncUsageIncrement increments the usage counter metric.
func IncUsageIncrement(family, providerType string) {
	if !metricsEnabled {
		return
	}
	UsageIncrementsTotal.WithLabelValues(family, sanitizeLabel(providerType)).Inc()
}

// IncCallDispatched increments the outbound call counter.
func IncCallDispatched(family, providerType, outcome string) {
	if !metricsEnabled {
		return
	}
	CallsDispatchedTotal.WithLabelValues(family, sanitizeLabel(providerType), outcome).Inc()
}

// ObserveDbOperationDuration records the duration for a database operation.
func ObserveDbOperationDuration(operation, entity string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseOperationDurationSeconds.WithLabelValues(operation, entity, status).Observe(duration.Seconds())
}

// sanitizeLabel ensures a label value is valid or returns a default value.
func sanitizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
