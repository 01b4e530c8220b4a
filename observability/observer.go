// Package observability carries structured events from the workflow engine,
// the agent loop, and the serving surface to pluggable sinks. Library code
// never logs directly; it emits Events through an Observer, and the process
// decides where they go (slog, Prometheus, both, or nowhere).
//
// Level values align with OpenTelemetry SeverityNumbers so events forward to
// OTel collectors without translation.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is event severity on the OTel SeverityNumber scale.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), maps to slog.LevelError
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps the level onto the slog scale for log emission.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event. Each package defines its own
// constants using this type (e.g., "run.start", "agent.tool.call").
type EventType string

// Event is one observability record. Fields map onto OTel LogRecord fields:
// Type is the event name, Level the severity, Source the instrumentation
// scope (graph name or subsystem), and Data the attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer is a sink for events. Implementations must tolerate concurrent
// OnEvent calls; runs of a shared compiled graph emit in parallel.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
