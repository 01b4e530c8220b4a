// Package session keeps the per-run conversation transcript the agent tool
// loop builds up: prompt, tool requests, tool results, and the final reply.
package session

import (
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// Session holds an ordered sequence of conversation messages. Implementations
// must be safe for concurrent use; a pipeline may share one across the
// observers inspecting a run.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the transcript.
	AddMessage(msg protocol.Message)
	// Messages returns a defensive copy of the transcript.
	Messages() []protocol.Message
	// Clear resets the transcript.
	Clear()
}
