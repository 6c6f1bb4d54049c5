package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/studybuddy/tutormesh/core"
)

// PrometheusOptions configures NewPrometheusRecorder.
type PrometheusOptions struct {
	// Registerer receives the collectors. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Namespace prefixes every metric name. Defaults to "tutormesh".
	Namespace string
}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	routingTotal    *prometheus.CounterVec
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	turnsTotal      *prometheus.CounterVec
	turnDuration    *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them.
// Registering twice on the same registerer panics, as with promauto.
func NewPrometheusRecorder(optFns ...func(o *PrometheusOptions)) *PrometheusRecorder {
	opts := PrometheusOptions{
		Registerer: prometheus.DefaultRegisterer,
		Namespace:  "tutormesh",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	factory := promauto.With(opts.Registerer)

	return &PrometheusRecorder{
		routingTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "routing_decisions_total",
				Help:      "Total number of routing decisions by agent and source",
			},
			[]string{"agent", "source"},
		),
		backendCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "backend_calls_total",
				Help:      "Total number of generative backend calls by operation and status",
			},
			[]string{"op", "status"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "backend_call_duration_seconds",
				Help:      "Duration of generative backend calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Name:      "turns_total",
				Help:      "Total number of completed conversation turns by agent",
			},
			[]string{"agent"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      "turn_duration_seconds",
				Help:      "End-to-end duration of conversation turns in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
	}
}

// ObserveRouting records one routing decision.
func (p *PrometheusRecorder) ObserveRouting(agent core.AgentID, source core.DecisionSource) {
	p.routingTotal.WithLabelValues(string(agent), string(source)).Inc()
}

// ObserveBackendCall records one backend call.
func (p *PrometheusRecorder) ObserveBackendCall(op string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.backendCalls.WithLabelValues(op, status).Inc()
	p.backendDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveTurn records one completed turn.
func (p *PrometheusRecorder) ObserveTurn(agent core.AgentID, duration time.Duration) {
	p.turnsTotal.WithLabelValues(string(agent)).Inc()
	p.turnDuration.WithLabelValues(string(agent)).Observe(duration.Seconds())
}
