package aggregates

import (
	"time"

	"github.com/yungbote/curriculum-backend/internal/observability"
)

// Hooks receives the signals every aggregate write emits.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
	// IncEvent counts publication events by kind and delivery status ("sent", "failed").
	IncEvent(kind, status string)
}

// MetricsHooks records hook signals on the process metrics registry. The zero value, with a
// nil registry, records nothing.
type MetricsHooks struct {
	Metrics *observability.Metrics
}

func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	return MetricsHooks{Metrics: metrics}
}

func (h MetricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.Metrics.ObserveAggregateOperation(name, status, dur)
}

func (h MetricsHooks) IncConflict(name string)      { h.Metrics.IncAggregateConflict(name) }
func (h MetricsHooks) IncRetry(name string)         { h.Metrics.IncAggregateRetry(name) }
func (h MetricsHooks) IncEvent(kind, status string) { h.Metrics.IncPublicationEvent(kind, status) }
