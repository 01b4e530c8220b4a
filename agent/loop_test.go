package agent_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/tailored-agentic-units/flowkit/agent"
	"github.com/tailored-agentic-units/flowkit/agent/mock"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
	"github.com/tailored-agentic-units/flowkit/core/response"
	"github.com/tailored-agentic-units/flowkit/observability"
	"github.com/tailored-agentic-units/flowkit/tools"
)

// sequentialAgent returns different responses on successive Tools calls.
type sequentialAgent struct {
	*mock.MockAgent
	responses []*response.ToolsResponse
	errors    []error
	callCount atomic.Int32
}

func newSequentialAgent(responses []*response.ToolsResponse, errs []error) *sequentialAgent {
	return &sequentialAgent{
		MockAgent: mock.NewMockAgent(mock.WithID("sequential-agent")),
		responses: responses,
		errors:    errs,
	}
}

func (a *sequentialAgent) Tools(ctx context.Context, messages []protocol.Message, t []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	i := int(a.callCount.Add(1)) - 1
	if i < len(a.responses) {
		var err error
		if i < len(a.errors) {
			err = a.errors[i]
		}
		return a.responses[i], err
	}
	return nil, errors.New("no more responses configured")
}

// mockToolExecutor implements agent.ToolExecutor for testing.
type mockToolExecutor struct {
	tools   []protocol.Tool
	handler func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

func (e *mockToolExecutor) List() []protocol.Tool {
	return e.tools
}

func (e *mockToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return e.handler(ctx, name, args)
}

func TestLoop_DirectResponse(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{mock.ToolsResponse("Hello!")},
		nil,
	)

	l := agent.NewLoop(a, &mockToolExecutor{})

	result, err := l.Run(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Response != "Hello!" {
		t.Errorf("got response %q, want %q", result.Response, "Hello!")
	}

	if result.Iterations != 1 {
		t.Errorf("got %d iterations, want 1", result.Iterations)
	}

	if len(result.ToolCalls) != 0 {
		t.Errorf("got %d tool calls, want 0", len(result.ToolCalls))
	}
}

func TestLoop_SingleToolCall(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("", protocol.NewToolCall("call_1", "greet", `{"name":"world"}`)),
			mock.ToolsResponse("Done: hello world"),
		},
		nil,
	)

	executor := &mockToolExecutor{
		tools: []protocol.Tool{{Name: "greet", Description: "Greet someone"}},
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			return tools.Result{Content: "hello world"}, nil
		},
	}

	l := agent.NewLoop(a, executor)

	result, err := l.Run(context.Background(), "Greet the world")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Response != "Done: hello world" {
		t.Errorf("got response %q, want %q", result.Response, "Done: hello world")
	}

	if result.Iterations != 2 {
		t.Errorf("got %d iterations, want 2", result.Iterations)
	}

	if len(result.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(result.ToolCalls))
	}

	tc := result.ToolCalls[0]
	if tc.Name != "greet" {
		t.Errorf("got tool name %q, want %q", tc.Name, "greet")
	}
	if tc.Result != "hello world" {
		t.Errorf("got tool result %q, want %q", tc.Result, "hello world")
	}
	if tc.IsError {
		t.Error("tool call marked as error, want success")
	}
}

func TestLoop_MultipleToolCalls(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("",
				protocol.NewToolCall("call_1", "add", `{"a":1,"b":2}`),
				protocol.NewToolCall("call_2", "add", `{"a":3,"b":4}`),
			),
			mock.ToolsResponse("3 and 7"),
		},
		nil,
	)

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			var params struct{ A, B int }
			if err := json.Unmarshal(args, &params); err != nil {
				return tools.Result{}, err
			}
			return tools.Result{Content: fmt.Sprintf("%d", params.A+params.B)}, nil
		},
	}

	l := agent.NewLoop(a, executor)

	result, err := l.Run(context.Background(), "Add these")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.ToolCalls) != 2 {
		t.Fatalf("got %d tool calls, want 2", len(result.ToolCalls))
	}

	if result.ToolCalls[0].Result != "3" {
		t.Errorf("got first result %q, want %q", result.ToolCalls[0].Result, "3")
	}
	if result.ToolCalls[1].Result != "7" {
		t.Errorf("got second result %q, want %q", result.ToolCalls[1].Result, "7")
	}
}

func TestLoop_ToolExecutionError(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("", protocol.NewToolCall("call_1", "fail", `{}`)),
			mock.ToolsResponse("I handled the error"),
		},
		nil,
	)

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			return tools.Result{}, errors.New("tool broke")
		},
	}

	l := agent.NewLoop(a, executor)

	result, err := l.Run(context.Background(), "Try the failing tool")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Response != "I handled the error" {
		t.Errorf("got response %q, want %q", result.Response, "I handled the error")
	}

	if len(result.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(result.ToolCalls))
	}

	tc := result.ToolCalls[0]
	if !tc.IsError {
		t.Error("tool call not marked as error")
	}
	if tc.Result != "error: tool broke" {
		t.Errorf("got error result %q, want %q", tc.Result, "error: tool broke")
	}
}

func TestLoop_MaxIterations(t *testing.T) {
	// Agent always returns tool calls, never a final response.
	responses := make([]*response.ToolsResponse, 5)
	for i := range responses {
		responses[i] = mock.ToolsResponse("", protocol.NewToolCall("call_loop", "loop", `{}`))
	}

	a := newSequentialAgent(responses, nil)

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			return tools.Result{Content: "looping"}, nil
		},
	}

	l := agent.NewLoop(a, executor, agent.WithMaxIterations(3))

	result, err := l.Run(context.Background(), "Loop forever")
	if !errors.Is(err, agent.ErrMaxIterations) {
		t.Fatalf("got error %v, want ErrMaxIterations", err)
	}

	if result.Iterations != 3 {
		t.Errorf("got %d iterations, want 3", result.Iterations)
	}

	if len(result.ToolCalls) != 3 {
		t.Errorf("got %d tool calls, want 3", len(result.ToolCalls))
	}
}

func TestLoop_ContextCancellation(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("", protocol.NewToolCall("call_1", "slow", `{}`)),
		},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			cancel() // Cancel after first tool execution
			return tools.Result{Content: "done"}, nil
		},
	}

	l := agent.NewLoop(a, executor)

	_, err := l.Run(ctx, "Do something")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want context.Canceled", err)
	}
}

func TestLoop_AgentError(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{nil},
		[]error{errors.New("agent exploded")},
	)

	l := agent.NewLoop(a, &mockToolExecutor{})

	_, err := l.Run(context.Background(), "Boom")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "agent call failed: agent exploded" {
		t.Errorf("got error %q, want wrapped agent error", err)
	}
}

func TestLoop_EmptyResponse(t *testing.T) {
	// Response with no choices.
	emptyResp := &response.ToolsResponse{Model: "mock"}

	a := newSequentialAgent([]*response.ToolsResponse{emptyResp}, nil)

	l := agent.NewLoop(a, &mockToolExecutor{})

	_, err := l.Run(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error for empty response, got nil")
	}
}

func TestLoop_SystemPrompt(t *testing.T) {
	var capturedMessages []protocol.Message

	a := newSequentialAgent(
		[]*response.ToolsResponse{mock.ToolsResponse("ok")},
		nil,
	)
	wrapper := &messageCapturingAgent{
		sequentialAgent: a,
		captured:        &capturedMessages,
	}

	l := agent.NewLoop(wrapper, &mockToolExecutor{},
		agent.WithSystemPrompt("You are a test assistant."),
	)

	if _, err := l.Run(context.Background(), "Hello"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(capturedMessages) != 2 {
		t.Fatalf("expected 2 messages (system + user), got %d", len(capturedMessages))
	}

	if capturedMessages[0].Role != protocol.RoleSystem {
		t.Errorf("first message role = %q, want %q", capturedMessages[0].Role, protocol.RoleSystem)
	}
	if capturedMessages[0].Content != "You are a test assistant." {
		t.Errorf("system content = %q, want %q", capturedMessages[0].Content, "You are a test assistant.")
	}
	if capturedMessages[1].Role != protocol.RoleUser {
		t.Errorf("second message role = %q, want %q", capturedMessages[1].Role, protocol.RoleUser)
	}
}

func TestLoop_SessionTranscript(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("", protocol.NewToolCall("call_1", "greet", `{}`)),
			mock.ToolsResponse("done"),
		},
		nil,
	)

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			return tools.Result{Content: "hi"}, nil
		},
	}

	l := agent.NewLoop(a, executor)

	if _, err := l.Run(context.Background(), "Greet"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Transcript: user, assistant(tool_calls), tool, assistant(final).
	msgs := l.Session().Messages()
	if len(msgs) != 4 {
		t.Fatalf("got %d session messages, want 4", len(msgs))
	}

	wantRoles := []protocol.Role{
		protocol.RoleUser,
		protocol.RoleAssistant,
		protocol.RoleTool,
		protocol.RoleAssistant,
	}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("message[%d] role = %q, want %q", i, msgs[i].Role, want)
		}
	}

	if len(msgs[1].ToolCalls) != 1 {
		t.Errorf("assistant message should carry 1 tool call, got %d", len(msgs[1].ToolCalls))
	}
	if msgs[2].ToolCallID != "call_1" {
		t.Errorf("tool message ToolCallID = %q, want %q", msgs[2].ToolCallID, "call_1")
	}
}

func TestLoop_ToolCallRecordFields(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("", protocol.NewToolCall("call_abc", "mytool", `{"x":1}`)),
			mock.ToolsResponse("done"),
		},
		nil,
	)

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			return tools.Result{Content: "result_value"}, nil
		},
	}

	l := agent.NewLoop(a, executor)

	result, err := l.Run(context.Background(), "test")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(result.ToolCalls))
	}

	tc := result.ToolCalls[0]
	if tc.Iteration != 1 {
		t.Errorf("got iteration %d, want 1", tc.Iteration)
	}
	if tc.ID != "call_abc" {
		t.Errorf("got ID %q, want %q", tc.ID, "call_abc")
	}
	if tc.Name != "mytool" {
		t.Errorf("got name %q, want %q", tc.Name, "mytool")
	}
	if tc.Arguments != `{"x":1}` {
		t.Errorf("got arguments %q, want %q", tc.Arguments, `{"x":1}`)
	}
	if tc.Result != "result_value" {
		t.Errorf("got result %q, want %q", tc.Result, "result_value")
	}
	if tc.IsError {
		t.Error("expected IsError false")
	}
}

func TestLoop_UnlimitedIterations(t *testing.T) {
	// With maxIterations=0, the loop runs until the agent produces a final
	// response rather than stopping after zero iterations.
	a := newSequentialAgent(
		[]*response.ToolsResponse{
			mock.ToolsResponse("", protocol.NewToolCall("call_1", "step", `{}`)),
			mock.ToolsResponse("", protocol.NewToolCall("call_2", "step", `{}`)),
			mock.ToolsResponse("", protocol.NewToolCall("call_3", "step", `{}`)),
			mock.ToolsResponse("finished after 4 iterations"),
		},
		nil,
	)

	executor := &mockToolExecutor{
		handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
			return tools.Result{Content: "ok"}, nil
		},
	}

	l := agent.NewLoop(a, executor, agent.WithMaxIterations(0))

	result, err := l.Run(context.Background(), "Run until done")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Response != "finished after 4 iterations" {
		t.Errorf("got response %q, want %q", result.Response, "finished after 4 iterations")
	}

	if result.Iterations != 4 {
		t.Errorf("got %d iterations, want 4", result.Iterations)
	}

	if len(result.ToolCalls) != 3 {
		t.Errorf("got %d tool calls, want 3", len(result.ToolCalls))
	}
}

func TestLoop_WithObserver(t *testing.T) {
	a := newSequentialAgent(
		[]*response.ToolsResponse{mock.ToolsResponse("ok")},
		nil,
	)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	l := agent.NewLoop(a, &mockToolExecutor{},
		agent.WithObserver(observability.NewSlogObserver(logger)),
	)

	if _, err := l.Run(context.Background(), "Hello"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "agent.loop.start") {
		t.Error("expected 'agent.loop.start' log entry")
	}
	if !strings.Contains(output, "agent.loop.response") {
		t.Error("expected 'agent.loop.response' log entry")
	}
}

// messageCapturingAgent wraps sequentialAgent to capture the messages passed
// to Tools.
type messageCapturingAgent struct {
	*sequentialAgent
	captured *[]protocol.Message
}

func (a *messageCapturingAgent) Tools(ctx context.Context, messages []protocol.Message, t []protocol.Tool, opts ...map[string]any) (*response.ToolsResponse, error) {
	*a.captured = make([]protocol.Message, len(messages))
	copy(*a.captured, messages)
	return a.sequentialAgent.Tools(ctx, messages, t, opts...)
}
