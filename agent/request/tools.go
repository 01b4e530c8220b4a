package request

import (
	"github.com/tailored-agentic-units/flowkit/agent/providers"
	"github.com/tailored-agentic-units/flowkit/core/model"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// ToolsRequest represents a tools (function calling) protocol request.
// Carries the conversation alongside the tool definitions the model may call.
type ToolsRequest struct {
	messages []protocol.Message
	tools    []protocol.Tool
	options  map[string]any
	provider providers.Provider
	model    *model.Model
}

// NewTools creates a new ToolsRequest with the given components.
func NewTools(p providers.Provider, m *model.Model, messages []protocol.Message, tools []protocol.Tool, opts map[string]any) *ToolsRequest {
	return &ToolsRequest{
		messages: messages,
		tools:    tools,
		options:  opts,
		provider: p,
		model:    m,
	}
}

func (r *ToolsRequest) Protocol() protocol.Protocol {
	return protocol.Tools
}

func (r *ToolsRequest) Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

func (r *ToolsRequest) Marshal() ([]byte, error) {
	return r.provider.Marshal(protocol.Tools, &providers.ToolsData{
		Model:    r.model.Name,
		Messages: r.messages,
		Tools:    r.tools,
		Options:  r.options,
	})
}

func (r *ToolsRequest) Provider() providers.Provider {
	return r.provider
}

func (r *ToolsRequest) Model() *model.Model {
	return r.model
}
