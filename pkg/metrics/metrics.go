// Package metrics exports Prometheus collectors for CRUD actions, bulk
// operations and record validation passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/scaffold/pkg/crud"
	"github.com/dmitrymomot/scaffold/pkg/record"
)

// Namespace prefixes every metric name.
const Namespace = "scaffold"

var (
	ActionLabels = []string{"resource", "action", "state"}
	BulkLabels   = []string{"resource", "operation", "outcome"}

	// ActionLatencyBuckets span 1ms to 30s.
	ActionLatencyBuckets = []float64{
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
	}
)

// Metrics implements crud.Observer.
type Metrics struct {
	registry        *prometheus.Registry
	actions         *prometheus.CounterVec
	actionDuration  *prometheus.HistogramVec
	bulkItems       *prometheus.CounterVec
	recordsChecked  *prometheus.CounterVec
	recordsNotified *prometheus.CounterVec
}

var _ crud.Observer = (*Metrics)(nil)

// New creates the collectors and registers them on a fresh registry
// together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "crud",
				Name:      "actions_total",
				Help:      "Counter of dispatched CRUD actions by final controller state.",
			},
			ActionLabels,
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "crud",
				Name:      "action_duration_seconds",
				Help:      "CRUD action dispatch latency in seconds.",
				Buckets:   ActionLatencyBuckets,
			},
			ActionLabels,
		),
		bulkItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "crud",
				Name:      "bulk_items_total",
				Help:      "Counter of records touched by bulk operations by outcome.",
			},
			BulkLabels,
		),
		recordsChecked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "records",
				Name:      "validated_total",
				Help:      "Counter of records checked by validation passes.",
			},
			[]string{"collection"},
		),
		recordsNotified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "records",
				Name:      "notifications_total",
				Help:      "Counter of validation notifications raised.",
			},
			[]string{"collection"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.actions,
		m.actionDuration,
		m.bulkItems,
		m.recordsChecked,
		m.recordsNotified,
	)
	return m
}

func (m *Metrics) ObserveAction(resource, action string, state crud.State, d time.Duration) {
	labels := prometheus.Labels{"resource": resource, "action": action, "state": state.String()}
	m.actions.With(labels).Inc()
	m.actionDuration.With(labels).Observe(d.Seconds())
}

func (m *Metrics) ObserveBulk(resource, operation string, succeeded, failed int) {
	m.bulkItems.WithLabelValues(resource, operation, "succeeded").Add(float64(succeeded))
	m.bulkItems.WithLabelValues(resource, operation, "failed").Add(float64(failed))
}

// ObserveValidation records the outcome of a record.ValidateAll pass.
func (m *Metrics) ObserveValidation(collection string, r record.ValidationReport) {
	m.recordsChecked.WithLabelValues(collection).Add(float64(r.Checked))
	m.recordsNotified.WithLabelValues(collection).Add(float64(r.Notified))
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
