package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records webhook and transfer outcomes.
type SettlementMetrics struct {
	webhookEvents  *prometheus.CounterVec
	transfers      *prometheus.CounterVec
	settleDuration *prometheus.HistogramVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Processor webhook events by outcome (processed, duplicate, failed, ignored).",
	}, []string{"type", "outcome"})
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transfers_total",
		Help: "Payout transfers by recipient type and outcome (issued, skipped, failed, adopted).",
	}, []string{"recipient", "outcome"})
	settleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of order settlement in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	reg.MustRegister(webhookEvents, transfers, settleDuration)
	return &SettlementMetrics{
		webhookEvents:  webhookEvents,
		transfers:      transfers,
		settleDuration: settleDuration,
	}
}

// ObserveWebhook counts a webhook event outcome.
func (m *SettlementMetrics) ObserveWebhook(eventType, outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// ObserveTransfer counts a payout transfer outcome for a recipient type.
func (m *SettlementMetrics) ObserveTransfer(recipient, outcome string) {
	if m == nil || m.transfers == nil {
		return
	}
	m.transfers.WithLabelValues(normalizeLabel(recipient), normalizeLabel(outcome)).Inc()
}

// ObserveSettlementDuration records how long an event's settlement took.
func (m *SettlementMetrics) ObserveSettlementDuration(eventType string, duration time.Duration) {
	if m == nil || m.settleDuration == nil {
		return
	}
	m.settleDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
