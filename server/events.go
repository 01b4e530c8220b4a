package server

import "github.com/tailored-agentic-units/flowkit/observability"

// Request lifecycle event types emitted by the serving surface.
const (
	EventRequestStart    observability.EventType = "server.request.start"
	EventRequestComplete observability.EventType = "server.request.complete"
	EventRequestFail     observability.EventType = "server.request.fail"
)
