package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SagaMetrics records outbox relay and consumer activity.
type SagaMetrics struct {
	published      *prometheus.CounterVec
	publishErrors  *prometheus.CounterVec
	consumed       *prometheus.CounterVec
	duplicates     *prometheus.CounterVec
	publishLatency *prometheus.HistogramVec
}

// NewSagaMetrics registers the saga metrics on the provided registerer.
func NewSagaMetrics(reg prometheus.Registerer) *SagaMetrics {
	if reg == nil {
		return &SagaMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published to the broker.",
	}, []string{"event_type"})
	publishErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_errors_total",
		Help: "Failed outbox publish attempts.",
	}, []string{"event_type"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_events_consumed_total",
		Help: "Events consumed and applied by a saga participant.",
	}, []string{"consumer", "event_type"})
	duplicates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "saga_duplicate_deliveries_total",
		Help: "Redeliveries dropped by the inbox dedup check.",
	}, []string{"consumer", "event_type"})
	publishLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_publish_duration_seconds",
		Help:    "Duration of a single outbox publish attempt.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	reg.MustRegister(published, publishErrors, consumed, duplicates, publishLatency)
	return &SagaMetrics{
		published:      published,
		publishErrors:  publishErrors,
		consumed:       consumed,
		duplicates:     duplicates,
		publishLatency: publishLatency,
	}
}

// IncPublished increments the published counter for the event type.
func (m *SagaMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncPublishError increments the publish error counter for the event type.
func (m *SagaMetrics) IncPublishError(eventType string) {
	if m == nil || m.publishErrors == nil {
		return
	}
	m.publishErrors.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncConsumed increments the consumed counter for a consumer/event pair.
func (m *SagaMetrics) IncConsumed(consumer, eventType string) {
	if m == nil || m.consumed == nil {
		return
	}
	m.consumed.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// IncDuplicate increments the duplicate delivery counter for a consumer/event pair.
func (m *SagaMetrics) IncDuplicate(consumer, eventType string) {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.WithLabelValues(normalizeLabel(consumer), normalizeLabel(eventType)).Inc()
}

// ObservePublishDuration records how long one publish attempt took.
func (m *SagaMetrics) ObservePublishDuration(eventType string, duration time.Duration) {
	if m == nil || m.publishLatency == nil {
		return
	}
	m.publishLatency.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
