package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
	WebhookEvents   *prometheus.CounterVec
	BulkItems       *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics on the default
// registerer.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(nil))
}

// NewTestMetrics creates metrics on a private registry, so parallel tests do
// not collide on the default registerer.
func NewTestMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.NewRegistry()))
}

func newMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_requests_total",
				Help: "Total number of carrier requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fulfillment_request_duration_seconds",
				Help:    "Carrier request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error type",
			},
			[]string{"carrier", "error_type"},
		),
		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_webhook_events_total",
				Help: "Total carrier webhook events by carrier and mapped status",
			},
			[]string{"carrier", "status"},
		),
		BulkItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fulfillment_bulk_items_total",
				Help: "Total bulk operation items by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// RecordRequest records a carrier request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordWebhook records a webhook event metric.
func (m *Metrics) RecordWebhook(carrier, status string) {
	m.WebhookEvents.WithLabelValues(carrier, status).Inc()
}

// RecordBulkItem records one bulk item outcome.
func (m *Metrics) RecordBulkItem(operation, outcome string) {
	m.BulkItems.WithLabelValues(operation, outcome).Inc()
}
