package request

import (
	"github.com/tailored-agentic-units/flowkit/agent/providers"
	"github.com/tailored-agentic-units/flowkit/core/model"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// ChatRequest represents a chat protocol request.
type ChatRequest struct {
	messages []protocol.Message
	options  map[string]any
	provider providers.Provider
	model    *model.Model
}

// NewChat creates a new ChatRequest with the given components.
// Messages carry the full conversation; opts specify model configuration
// (temperature, max_tokens, etc.).
func NewChat(p providers.Provider, m *model.Model, messages []protocol.Message, opts map[string]any) *ChatRequest {
	return &ChatRequest{
		messages: messages,
		options:  opts,
		provider: p,
		model:    m,
	}
}

func (r *ChatRequest) Protocol() protocol.Protocol {
	return protocol.Chat
}

func (r *ChatRequest) Headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
	}
}

func (r *ChatRequest) Marshal() ([]byte, error) {
	return r.provider.Marshal(protocol.Chat, &providers.ChatData{
		Model:    r.model.Name,
		Messages: r.messages,
		Options:  r.options,
	})
}

func (r *ChatRequest) Provider() providers.Provider {
	return r.provider
}

func (r *ChatRequest) Model() *model.Model {
	return r.model
}
