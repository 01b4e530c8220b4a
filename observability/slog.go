package observability

import (
	"context"
	"log/slog"
)

// SlogObserver renders events through a slog.Logger. The event type becomes
// the log message, the source becomes a "source" attribute, and Data keys
// flatten into top-level attributes. Levels translate through SlogLevel.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver emitting to the given logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

// OnEvent implements the Observer interface.
func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for key, value := range event.Data {
		attrs = append(attrs, slog.Any(key, value))
	}

	o.logger.LogAttrs(ctx, event.Level.SlogLevel(), string(event.Type), attrs...)
}
