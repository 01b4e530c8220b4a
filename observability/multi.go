package observability

import "context"

// MultiObserver fans each event out to several sinks in order, the usual
// shape for pairing a slog sink with a Prometheus one.
type MultiObserver struct {
	sinks []Observer
}

// NewMultiObserver creates a MultiObserver over the given sinks. Nil entries
// are dropped so optional sinks can be passed unconditionally.
func NewMultiObserver(sinks ...Observer) *MultiObserver {
	kept := make([]Observer, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &MultiObserver{sinks: kept}
}

// OnEvent implements the Observer interface.
func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, sink := range m.sinks {
		sink.OnEvent(ctx, event)
	}
}
