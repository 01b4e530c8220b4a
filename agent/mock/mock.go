// Package mock provides a configurable Agent implementation for tests.
// MockAgent satisfies the agent.Agent interface with canned responses;
// functional options override identity, model, and scripted outcomes.
package mock

import (
	"context"

	"github.com/tailored-agentic-units/flowkit/core/config"
	"github.com/tailored-agentic-units/flowkit/core/model"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
	"github.com/tailored-agentic-units/flowkit/core/response"
)

// MockAgent is a test double for agent.Agent. Zero-configuration instances
// return empty responses; options script specific outcomes.
type MockAgent struct {
	id            string
	name          string
	model         *model.Model
	chatResponse  *response.ChatResponse
	chatErr       error
	toolsResponse *response.ToolsResponse
	toolsErr      error
}

// Option configures a MockAgent.
type Option func(*MockAgent)

// WithID overrides the default instance ID.
func WithID(id string) Option {
	return func(a *MockAgent) { a.id = id }
}

// WithName overrides the default agent name.
func WithName(name string) Option {
	return func(a *MockAgent) { a.name = name }
}

// WithModel overrides the default model.
func WithModel(m *model.Model) Option {
	return func(a *MockAgent) { a.model = m }
}

// WithChatResponse scripts the response returned by Chat.
func WithChatResponse(resp *response.ChatResponse) Option {
	return func(a *MockAgent) { a.chatResponse = resp }
}

// WithChatError scripts the error returned by Chat.
func WithChatError(err error) Option {
	return func(a *MockAgent) { a.chatErr = err }
}

// WithToolsResponse scripts the response returned by Tools.
func WithToolsResponse(resp *response.ToolsResponse) Option {
	return func(a *MockAgent) { a.toolsResponse = resp }
}

// WithToolsError scripts the error returned by Tools.
func WithToolsError(err error) Option {
	return func(a *MockAgent) { a.toolsErr = err }
}

// NewMockAgent creates a MockAgent with the given options applied.
func NewMockAgent(opts ...Option) *MockAgent {
	a := &MockAgent{
		id:    "mock-agent",
		name:  "mock",
		model: model.New(&config.ModelConfig{Name: "mock-model"}),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *MockAgent) ID() string {
	return a.id
}

func (a *MockAgent) Name() string {
	return a.name
}

func (a *MockAgent) Model() *model.Model {
	return a.model
}

func (a *MockAgent) Chat(ctx context.Context, prompt string, options ...map[string]any) (*response.ChatResponse, error) {
	if a.chatErr != nil {
		return nil, a.chatErr
	}
	if a.chatResponse != nil {
		return a.chatResponse, nil
	}
	return ChatResponse(""), nil
}

func (a *MockAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool, options ...map[string]any) (*response.ToolsResponse, error) {
	if a.toolsErr != nil {
		return nil, a.toolsErr
	}
	if a.toolsResponse != nil {
		return a.toolsResponse, nil
	}
	return ToolsResponse(""), nil
}

// ChatResponse builds a single-choice chat response with the given content.
func ChatResponse(content string) *response.ChatResponse {
	resp := &response.ChatResponse{Model: "mock"}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	}{
		Index: 0,
		Message: struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}{
			Role:    "assistant",
			Content: content,
		},
		FinishReason: "stop",
	})
	return resp
}

// ToolsResponse builds a single-choice tools response. With no calls the
// response is final text; with calls it requests tool execution.
func ToolsResponse(content string, calls ...protocol.ToolCall) *response.ToolsResponse {
	resp := &response.ToolsResponse{Model: "mock"}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	}{
		Index: 0,
		Message: struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		}{
			Role:      "assistant",
			Content:   content,
			ToolCalls: calls,
		},
	})
	return resp
}
