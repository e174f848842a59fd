package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook delivery outcomes used as the "outcome" label.
const (
	OutcomeReconciled   = "reconciled"
	OutcomeIgnored      = "ignored"
	OutcomeInsufficient = "insufficient"
	OutcomeDuplicate    = "duplicate"
	OutcomeUnauthorized = "unauthorized"
	OutcomeBadPayload   = "bad_payload"
)

// WebhookMetrics counts gateway deliveries by outcome and observes handling latency.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	warnings   *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Inbound gateway webhook deliveries by outcome.",
	}, []string{"gateway", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_processing_seconds",
		Help:    "Time spent handling a gateway webhook.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"gateway"})
	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_reconcile_warnings_total",
		Help: "Reconciliation steps that failed without failing the delivery.",
	}, []string{"gateway"})
	reg.MustRegister(deliveries, latency, warnings)
	return &WebhookMetrics{
		deliveries: deliveries,
		latency:    latency,
		warnings:   warnings,
	}
}

// Observe records one delivery.
func (w *WebhookMetrics) Observe(gateway, outcome string, duration time.Duration) {
	if w == nil || w.deliveries == nil {
		return
	}
	gateway = normalizeLabel(gateway)
	w.deliveries.WithLabelValues(gateway, normalizeLabel(outcome)).Inc()
	w.latency.WithLabelValues(gateway).Observe(duration.Seconds())
}

// AddWarnings counts partial persistence failures for a delivery.
func (w *WebhookMetrics) AddWarnings(gateway string, n int) {
	if w == nil || w.warnings == nil || n <= 0 {
		return
	}
	w.warnings.WithLabelValues(normalizeLabel(gateway)).Add(float64(n))
}
