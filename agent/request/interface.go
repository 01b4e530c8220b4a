// Package request builds provider requests, one constructor per protocol.
package request

import (
	"github.com/tailored-agentic-units/flowkit/agent/providers"
	"github.com/tailored-agentic-units/flowkit/core/model"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// Request is a fully assembled provider request ready for transport. The
// agent's HTTP layer asks it for the endpoint inputs (protocol, headers) and
// the wire payload; it never inspects the request's contents itself.
type Request interface {
	// Protocol returns the protocol this request targets.
	Protocol() protocol.Protocol

	// Headers returns the HTTP headers for this request.
	Headers() map[string]string

	// Marshal converts the request into the provider's wire payload.
	Marshal() ([]byte, error)

	// Provider returns the provider this request is bound to.
	Provider() providers.Provider

	// Model returns the model the request runs against.
	Model() *model.Model
}
