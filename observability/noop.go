package observability

import "context"

// NoOpObserver discards every event. It is the fallback wherever an observer
// is optional, so emitting code never checks for nil.
type NoOpObserver struct{}

// OnEvent implements the Observer interface.
func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
