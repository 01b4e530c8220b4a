// Package providers abstracts LLM provider endpoints behind a common
// interface. BaseProvider covers any OpenAI-compatible API (Ollama, OpenAI,
// vLLM); provider-specific behavior lives behind the Provider interface.
package providers

import (
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/flowkit/core/config"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// Provider defines the interface for LLM provider endpoints.
// Implementations resolve protocol endpoints and marshal request payloads
// into the provider's wire format.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// BaseURL returns the provider's API base URL.
	BaseURL() string

	// Endpoint returns the full request URL for a protocol.
	Endpoint(p protocol.Protocol) (string, error)

	// Headers returns provider-level HTTP headers (authorization).
	Headers() map[string]string

	// Marshal converts protocol data into the provider's request payload.
	Marshal(p protocol.Protocol, data any) ([]byte, error)
}

// BaseProvider implements Provider for OpenAI-compatible APIs.
type BaseProvider struct {
	name    string
	baseURL string
	apiKey  string
}

// NewBaseProvider creates a BaseProvider with the given name and base URL.
func NewBaseProvider(name, baseURL string) *BaseProvider {
	return &BaseProvider{
		name:    name,
		baseURL: baseURL,
	}
}

// New creates a Provider from configuration, dispatching on provider name.
// Unrecognized names get a BaseProvider pointed at the configured base URL,
// which covers any OpenAI-compatible endpoint.
func New(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider configuration is required")
	}

	switch cfg.Name {
	case "ollama", "":
		return NewOllama(cfg)
	default:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider %s: base URL is required", cfg.Name)
		}
		p := NewBaseProvider(cfg.Name, cfg.BaseURL)
		p.apiKey = cfg.APIKey
		return p, nil
	}
}

// Name returns the provider identifier.
func (p *BaseProvider) Name() string {
	return p.name
}

// BaseURL returns the provider's API base URL.
func (p *BaseProvider) BaseURL() string {
	return p.baseURL
}

// Endpoint returns the full request URL for a protocol. Chat and tools both
// target the chat completions endpoint.
func (p *BaseProvider) Endpoint(proto protocol.Protocol) (string, error) {
	switch proto {
	case protocol.Chat, protocol.Tools:
		return p.baseURL + "/chat/completions", nil
	default:
		return "", fmt.Errorf("unsupported protocol: %s", proto)
	}
}

// Headers returns provider-level HTTP headers. A bearer authorization header
// is included when an API key is configured.
func (p *BaseProvider) Headers() map[string]string {
	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}
	return headers
}

// Marshal converts protocol data into a JSON request payload. Options are
// flattened into the top level of the payload alongside model and messages.
func (p *BaseProvider) Marshal(proto protocol.Protocol, data any) ([]byte, error) {
	switch proto {
	case protocol.Chat:
		chatData, ok := data.(*ChatData)
		if !ok {
			return nil, fmt.Errorf("chat marshal: expected *ChatData, got %T", data)
		}
		return marshalChat(chatData)
	case protocol.Tools:
		toolsData, ok := data.(*ToolsData)
		if !ok {
			return nil, fmt.Errorf("tools marshal: expected *ToolsData, got %T", data)
		}
		return marshalTools(toolsData)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", proto)
	}
}

func marshalChat(data *ChatData) ([]byte, error) {
	payload := map[string]any{
		"model":    data.Model,
		"messages": data.Messages,
	}
	for key, value := range data.Options {
		payload[key] = value
	}
	return json.Marshal(payload)
}

func marshalTools(data *ToolsData) ([]byte, error) {
	// OpenAI-compatible APIs expect each tool wrapped in a function envelope.
	tools := make([]map[string]any, len(data.Tools))
	for i, tool := range data.Tools {
		tools[i] = map[string]any{
			"type":     "function",
			"function": tool,
		}
	}

	payload := map[string]any{
		"model":    data.Model,
		"messages": data.Messages,
		"tools":    tools,
	}
	for key, value := range data.Options {
		payload[key] = value
	}
	return json.Marshal(payload)
}
