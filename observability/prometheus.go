package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// stepCompleteEvent matches workflow.EventStepComplete; importing the engine
// package here would cycle.
const stepCompleteEvent EventType = "step.complete"

// PrometheusObserver exports events as Prometheus metrics.
//
// Every event increments flowkit_events_total labeled by source and type.
// Step completion events additionally increment flowkit_steps_total and, when
// they carry a "duration_ms" data field, record a sample in
// flowkit_step_duration_seconds, both labeled by graph (the event source) and
// step, so step timings from workflow runs become latency histograms without
// extra wiring.
//
// The observer is safe for concurrent use; the underlying collectors handle
// synchronization.
type PrometheusObserver struct {
	events    *prometheus.CounterVec
	steps     *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collectors with the given registerer. A nil registerer uses the process
// default registry.
func NewPrometheusObserver(registerer prometheus.Registerer) (*PrometheusObserver, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	observer := &PrometheusObserver{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowkit_events_total",
			Help: "Total observability events by source and type.",
		}, []string{"source", "type"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowkit_steps_total",
			Help: "Total completed workflow steps by graph and step.",
		}, []string{"graph", "step"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowkit_step_duration_seconds",
			Help:    "Duration of completed workflow steps by graph and step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"graph", "step"}),
	}

	if err := registerer.Register(observer.events); err != nil {
		return nil, fmt.Errorf("failed to register event counter: %w", err)
	}

	if err := registerer.Register(observer.steps); err != nil {
		return nil, fmt.Errorf("failed to register step counter: %w", err)
	}

	if err := registerer.Register(observer.durations); err != nil {
		return nil, fmt.Errorf("failed to register duration histogram: %w", err)
	}

	return observer, nil
}

// OnEvent implements the Observer interface.
func (p *PrometheusObserver) OnEvent(ctx context.Context, event Event) {
	p.events.WithLabelValues(event.Source, string(event.Type)).Inc()

	if event.Type != stepCompleteEvent {
		return
	}

	step, _ := event.Data["step"].(string)
	p.steps.WithLabelValues(event.Source, step).Inc()

	if millis, ok := durationMillis(event.Data); ok {
		p.durations.WithLabelValues(event.Source, step).Observe(millis / 1000)
	}
}

// durationMillis extracts the duration_ms data field. Emitters use int64 via
// time.Duration.Milliseconds, but JSON round-trips produce float64.
func durationMillis(data map[string]any) (float64, bool) {
	raw, exists := data["duration_ms"]
	if !exists {
		return 0, false
	}

	switch v := raw.(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
