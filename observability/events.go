package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/EgeCaner/OptionWizard/core/events"
)

type eventMetrics struct {
	transitions *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking structured engine events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "opwiz",
				Subsystem: "events",
				Name:      "transitions_total",
				Help:      "Count of engine lifecycle and market events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.transitions)
	})
	return eventRegistry
}

// RecordTransition increments the counter for the supplied event type.
func (m *eventMetrics) RecordTransition(eventType string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(eventType)
	if normalized == "" {
		normalized = "unknown"
	}
	m.transitions.WithLabelValues(normalized).Inc()
}

// MetricsEmitter decorates an events.Emitter with per-type Prometheus
// counters. A nil next emitter discards events after counting.
type MetricsEmitter struct {
	next events.Emitter
}

// NewMetricsEmitter wraps the supplied emitter.
func NewMetricsEmitter(next events.Emitter) *MetricsEmitter {
	return &MetricsEmitter{next: next}
}

// Emit implements the events.Emitter interface.
func (m *MetricsEmitter) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	Events().RecordTransition(evt.EventType())
	if m.next != nil {
		m.next.Emit(evt)
	}
}
