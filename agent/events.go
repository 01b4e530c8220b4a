package agent

import "github.com/tailored-agentic-units/flowkit/observability"

// Loop event types emitted during the agentic tool loop.
const (
	EventLoopStart      observability.EventType = "agent.loop.start"
	EventIterationStart observability.EventType = "agent.loop.iteration"
	EventToolCall       observability.EventType = "agent.tool.call"
	EventToolComplete   observability.EventType = "agent.tool.complete"
	EventLoopResponse   observability.EventType = "agent.loop.response"
	EventLoopError      observability.EventType = "agent.loop.error"
)
