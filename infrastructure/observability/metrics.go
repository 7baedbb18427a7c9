package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/events"
)

// Collector holds all Prometheus metrics for the agent. Counters update from
// domain events through the Listener; limiter and canvas gauges read live
// state at scrape time.
type Collector struct {
	registry *prometheus.Registry

	// Batch metrics
	BatchesStarted   prometheus.Counter
	BatchesCompleted prometheus.Counter
	ActionsSucceeded prometheus.Counter
	ActionsFailed    prometheus.Counter

	// Canvas metrics
	ElementsCreated prometheus.Counter
	CanvasOrganized prometheus.Counter
	ZonesCreated    prometheus.Counter

	// Limiter metrics
	QuotaExhaustions prometheus.Counter
}

// NewCollector creates a metrics collector with the given namespace.
// The admission controller and repository are read at scrape time for the
// gauge values; either may be nil, dropping those gauges.
func NewCollector(namespace string, admission ports.AdmissionController, repo ports.CanvasRepository) *Collector {
	registry := prometheus.NewRegistry()

	batchesStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_started_total",
		Help:      "Total number of action batches started",
	})

	batchesCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_completed_total",
		Help:      "Total number of action batches completed",
	})

	actionsSucceeded := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_succeeded_total",
		Help:      "Total number of actions that completed successfully",
	})

	actionsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_failed_total",
		Help:      "Total number of actions that failed",
	})

	elementsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "elements_created_total",
		Help:      "Total number of elements created on the canvas",
	})

	canvasOrganized := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "canvas_organized_total",
		Help:      "Total number of organize passes applied",
	})

	zonesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "zones_created_total",
		Help:      "Total number of semantic grouping passes that created zones",
	})

	quotaExhaustions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_exhaustions_total",
		Help:      "Total number of times the daily quota short-circuited a batch",
	})

	registry.MustRegister(
		batchesStarted,
		batchesCompleted,
		actionsSucceeded,
		actionsFailed,
		elementsCreated,
		canvasOrganized,
		zonesCreated,
		quotaExhaustions,
	)

	if admission != nil {
		registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "limiter_requests_today",
				Help:      "API requests counted against the daily quota",
			}, func() float64 {
				return float64(admission.Metrics().RequestsToday)
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "limiter_requests_this_minute",
				Help:      "API requests inside the sliding minute window",
			}, func() float64 {
				return float64(admission.Metrics().RequestsThisMinute)
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "limiter_backoff_seconds",
				Help:      "Current adaptive backoff applied before API calls",
			}, func() float64 {
				return admission.Metrics().CurrentBackoff.Seconds()
			}),
		)
	}

	if repo != nil {
		registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "canvas_elements",
				Help:      "Number of elements currently on the canvas",
			}, func() float64 {
				count, err := repo.Count(context.Background())
				if err != nil {
					return 0
				}
				return float64(count)
			}),
		)
	}

	return &Collector{
		registry:         registry,
		BatchesStarted:   batchesStarted,
		BatchesCompleted: batchesCompleted,
		ActionsSucceeded: actionsSucceeded,
		ActionsFailed:    actionsFailed,
		ElementsCreated:  elementsCreated,
		CanvasOrganized:  canvasOrganized,
		ZonesCreated:     zonesCreated,
		QuotaExhaustions: quotaExhaustions,
	}
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Listener updates the collector from domain events. Subscribe it to the
// event bus with the wildcard type.
type Listener struct {
	collector *Collector
}

var _ ports.EventHandler = (*Listener)(nil)

// NewListener creates a metrics listener for the collector
func NewListener(collector *Collector) *Listener {
	return &Listener{collector: collector}
}

// Handle updates counters from one domain event
func (l *Listener) Handle(_ context.Context, event events.DomainEvent) error {
	switch e := event.(type) {
	case *events.BatchStarted:
		l.collector.BatchesStarted.Inc()
	case *events.BatchCompleted:
		l.collector.BatchesCompleted.Inc()
		l.collector.ActionsSucceeded.Add(float64(e.Succeeded))
		l.collector.ActionsFailed.Add(float64(e.Failed))
	case *events.ElementCreated:
		l.collector.ElementsCreated.Inc()
	case *events.CanvasOrganized:
		l.collector.CanvasOrganized.Inc()
	case *events.ZonesCreated:
		l.collector.ZonesCreated.Inc()
	case *events.QuotaExhausted:
		l.collector.QuotaExhaustions.Inc()
	}
	return nil
}

// CanHandle accepts every event type
func (l *Listener) CanHandle(string) bool {
	return true
}
