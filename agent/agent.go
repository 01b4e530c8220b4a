// Package agent provides LLM-backed agents and the runtime loop that drives
// them. An Agent wraps a provider endpoint, a model, and an HTTP client
// behind protocol-level methods (Chat, Tools). Loop composes an agent with a
// tool executor and a session into the observe/think/act/repeat cycle.
//
//	a, err := agent.New(&cfg)
//	resp, err := a.Chat(ctx, "What is the current time?")
package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/flowkit/agent/providers"
	"github.com/tailored-agentic-units/flowkit/agent/request"
	"github.com/tailored-agentic-units/flowkit/core/config"
	"github.com/tailored-agentic-units/flowkit/core/model"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
	"github.com/tailored-agentic-units/flowkit/core/response"
)

// Agent defines the protocol-level operations of an LLM-backed agent.
type Agent interface {
	// ID returns the unique instance identifier.
	ID() string

	// Name returns the configured agent name.
	Name() string

	// Model returns the agent's model for option inspection and mutation.
	Model() *model.Model

	// Chat sends a single-prompt chat request. The agent's system prompt,
	// when configured, is prepended. Per-call options overlay model options.
	Chat(ctx context.Context, prompt string, options ...map[string]any) (*response.ChatResponse, error)

	// Tools sends a function-calling request over a full conversation.
	// Callers own the message history, including any system message.
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, options ...map[string]any) (*response.ToolsResponse, error)
}

// httpAgent implements Agent over an HTTP provider endpoint.
type httpAgent struct {
	id           string
	name         string
	systemPrompt string
	provider     providers.Provider
	model        *model.Model
	client       *http.Client
}

// New creates an Agent from configuration. The config is merged over
// defaults, so partial configs are valid; a nil config yields the default
// local Ollama agent.
func New(cfg *config.AgentConfig) (Agent, error) {
	merged := config.DefaultAgentConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}

	provider, err := providers.New(merged.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	return &httpAgent{
		id:           uuid.New().String(),
		name:         merged.Name,
		systemPrompt: merged.SystemPrompt,
		provider:     provider,
		model:        model.New(merged.Model),
		client: &http.Client{
			Timeout: time.Duration(merged.Client.TimeoutSeconds) * time.Second,
		},
	}, nil
}

func (a *httpAgent) ID() string {
	return a.id
}

func (a *httpAgent) Name() string {
	return a.name
}

func (a *httpAgent) Model() *model.Model {
	return a.model
}

func (a *httpAgent) Chat(ctx context.Context, prompt string, options ...map[string]any) (*response.ChatResponse, error) {
	req := request.NewChat(
		a.provider,
		a.model,
		a.chatMessages(prompt),
		a.requestOptions(protocol.Chat, options...),
	)

	body, err := a.do(ctx, req)
	if err != nil {
		return nil, err
	}

	return response.ParseChat(body)
}

func (a *httpAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, options ...map[string]any) (*response.ToolsResponse, error) {
	req := request.NewTools(
		a.provider,
		a.model,
		messages,
		tools,
		a.requestOptions(protocol.Tools, options...),
	)

	body, err := a.do(ctx, req)
	if err != nil {
		return nil, err
	}

	return response.ParseTools(body)
}

func (a *httpAgent) chatMessages(prompt string) []protocol.Message {
	if a.systemPrompt == "" {
		return protocol.InitMessages(protocol.RoleUser, prompt)
	}
	return []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, a.systemPrompt),
		protocol.NewMessage(protocol.RoleUser, prompt),
	}
}

// requestOptions clones the model's options for a protocol and overlays any
// per-call options on top. The model's maps are never mutated.
func (a *httpAgent) requestOptions(proto protocol.Protocol, options ...map[string]any) map[string]any {
	merged := make(map[string]any, len(a.model.Options[proto]))
	for key, value := range a.model.Options[proto] {
		merged[key] = value
	}
	for _, opts := range options {
		for key, value := range opts {
			merged[key] = value
		}
	}
	return merged
}

// do executes a protocol request against the provider endpoint and returns
// the raw response body. Non-2xx responses become errors carrying a body
// snippet for diagnosis.
func (a *httpAgent) do(ctx context.Context, req request.Request) ([]byte, error) {
	endpoint, err := req.Provider().Endpoint(req.Protocol())
	if err != nil {
		return nil, err
	}

	payload, err := req.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", req.Protocol(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, value := range req.Headers() {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Provider().Headers() {
		httpReq.Header.Set(key, value)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.Provider().Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s returned status %d: %s", req.Provider().Name(), resp.StatusCode, snippet(body))
	}

	return body, nil
}

const maxSnippetLen = 512

func snippet(body []byte) string {
	if len(body) <= maxSnippetLen {
		return string(body)
	}
	return string(body[:maxSnippetLen]) + "..."
}
