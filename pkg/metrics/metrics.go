package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Backend calls
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	BreakerState    *prometheus.GaugeVec

	// Listing views
	ActiveViews      prometheus.Gauge
	FetchesDiscarded prometheus.Counter
	RowActions       *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec

	// Event consumer
	EventsConsumed *prometheus.CounterVec
	EventLatency   *prometheus.HistogramVec
}

// New creates all application metrics and registers them on reg.
// A nil reg leaves them unregistered.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of appointment backend requests",
		}, []string{"operation", "status"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of appointment backend requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),
		ActiveViews: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "active_views",
			Help:      "Current number of live appointment listing views",
		}),
		FetchesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "fetches_discarded_total",
			Help:      "Responses dropped because a newer fetch was issued",
		}),
		RowActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "listing",
			Name:      "row_actions_total",
			Help:      "Row intents dispatched by outcome",
		}, []string{"action", "outcome"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Dashboard events published to the broker",
		}, []string{"event_type", "status"}),
		EventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "consumed_total",
			Help:      "Dashboard events handled by the consumer",
		}, []string{"event_type", "status"}),
		EventLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "latency_seconds",
			Help:      "Time between an event occurring and being handled",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"event_type"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.BackendRequests,
			m.BackendLatency,
			m.BreakerState,
			m.ActiveViews,
			m.FetchesDiscarded,
			m.RowActions,
			m.EventsPublished,
			m.EventsConsumed,
			m.EventLatency,
		)
	}
	return m
}

// Nop returns unregistered metrics.
func Nop() *Metrics {
	return New("test", nil)
}
