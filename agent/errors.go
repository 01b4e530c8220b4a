package agent

import "errors"

// Registry sentinel errors.
var (
	ErrAgentNotFound  = errors.New("agent not found")
	ErrAgentExists    = errors.New("agent already registered")
	ErrEmptyAgentName = errors.New("agent name cannot be empty")
)

// ErrMaxIterations is returned by Loop.Run when the loop exhausts its
// iteration budget without the agent producing a final response.
var ErrMaxIterations = errors.New("max iterations reached")
