package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
	"github.com/tailored-agentic-units/flowkit/observability"
	"github.com/tailored-agentic-units/flowkit/session"
	"github.com/tailored-agentic-units/flowkit/tools"
)

const defaultMaxIterations = 10

// Result holds the outcome of a Loop Run invocation.
type Result struct {
	Response   string           // Final text response from the agent.
	Iterations int              // Number of loop cycles completed.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
}

// ToolCallRecord captures one tool invocation and its outcome.
type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int    // Loop cycle in which the call occurred.
	Result    string // Tool execution output.
	IsError   bool   // Whether execution returned an error.
}

// ToolExecutor abstracts tool listing and execution for testability.
// The default implementation delegates to the global tools registry.
type ToolExecutor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

type globalToolExecutor struct{}

func (globalToolExecutor) List() []protocol.Tool {
	return tools.List()
}

func (globalToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return tools.Execute(ctx, name, args)
}

// LoopOption configures a Loop beyond its defaults.
type LoopOption func(*Loop)

// WithSession overrides the default in-memory session.
func WithSession(s session.Session) LoopOption {
	return func(l *Loop) { l.session = s }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) LoopOption {
	return func(l *Loop) { l.observer = o }
}

// WithMaxIterations sets the iteration budget. Zero means unlimited.
func WithMaxIterations(n int) LoopOption {
	return func(l *Loop) { l.maxIterations = n }
}

// WithSystemPrompt sets the system message prepended to every agent call.
func WithSystemPrompt(prompt string) LoopOption {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// Loop drives the observe/think/act/repeat cycle for a single agent: send
// the conversation, execute any requested tool calls, append results, and
// repeat until the agent produces a final text response.
type Loop struct {
	agent         Agent
	session       session.Session
	tools         ToolExecutor
	observer      observability.Observer
	maxIterations int
	systemPrompt  string
}

// NewLoop creates a Loop for the given agent. A nil executor delegates to
// the global tools registry. Options override the in-memory session, slog
// observer, and default iteration budget.
func NewLoop(a Agent, executor ToolExecutor, opts ...LoopOption) *Loop {
	if executor == nil {
		executor = globalToolExecutor{}
	}

	l := &Loop{
		agent:         a,
		session:       session.NewMemorySession(),
		tools:         executor,
		observer:      observability.NewSlogObserver(slog.Default()),
		maxIterations: defaultMaxIterations,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Session returns the loop's conversation session.
func (l *Loop) Session() session.Session {
	return l.session
}

// Run executes the agentic loop for the given prompt. Returns a Result with
// the final response, iteration count, and tool call log. When maxIterations
// is 0, the loop runs until the agent produces a final response or the
// context is cancelled. Returns ErrMaxIterations if a non-zero iteration
// budget is exhausted.
func (l *Loop) Run(ctx context.Context, prompt string) (*Result, error) {
	l.session.AddMessage(
		protocol.NewMessage(protocol.RoleUser, prompt),
	)

	result := &Result{}

	l.observer.OnEvent(ctx, observability.Event{
		Type:      EventLoopStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "agent.Loop",
		Data: map[string]any{
			"agent":          l.agent.Name(),
			"prompt_length":  len(prompt),
			"max_iterations": l.maxIterations,
			"tools":          len(l.tools.List()),
		},
	})

	for iteration := 0; l.maxIterations == 0 || iteration < l.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		l.observer.OnEvent(ctx, observability.Event{
			Type:      EventIterationStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "agent.Loop",
			Data:      map[string]any{"iteration": iteration + 1},
		})

		resp, err := l.agent.Tools(ctx, l.buildMessages(), l.tools.List())
		if err != nil {
			return result, fmt.Errorf("agent call failed: %w", err)
		}

		if len(resp.Choices) == 0 {
			return result, fmt.Errorf("agent returned empty response")
		}

		choice := resp.Choices[0]

		if len(choice.Message.ToolCalls) == 0 {
			l.session.AddMessage(protocol.Message{
				Role:    protocol.RoleAssistant,
				Content: choice.Message.Content,
			})
			result.Response = choice.Message.Content
			result.Iterations = iteration + 1

			l.observer.OnEvent(ctx, observability.Event{
				Type:      EventLoopResponse,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    "agent.Loop",
				Data: map[string]any{
					"iteration":       iteration + 1,
					"response_length": len(result.Response),
				},
			})

			return result, nil
		}

		l.session.AddMessage(protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   choice.Message.Content,
			ToolCalls: choice.Message.ToolCalls,
		})

		for _, tc := range choice.Message.ToolCalls {
			l.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolCall,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "agent.Loop",
				Data: map[string]any{
					"iteration": iteration + 1,
					"name":      tc.Name,
				},
			})

			record := ToolCallRecord{
				ToolCall:  tc,
				Iteration: iteration + 1,
			}

			toolResult, toolErr := l.tools.Execute(ctx, tc.Name, json.RawMessage(tc.Arguments))

			if toolErr != nil {
				errContent := fmt.Sprintf("error: %s", toolErr)
				l.session.AddMessage(protocol.Message{
					Role:       protocol.RoleTool,
					Content:    errContent,
					ToolCallID: tc.ID,
				})
				record.Result = errContent
				record.IsError = true
			} else {
				l.session.AddMessage(protocol.Message{
					Role:       protocol.RoleTool,
					Content:    toolResult.Content,
					ToolCallID: tc.ID,
				})
				record.Result = toolResult.Content
				record.IsError = toolResult.IsError
			}

			l.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "agent.Loop",
				Data: map[string]any{
					"iteration": iteration + 1,
					"name":      tc.Name,
					"error":     record.IsError,
				},
			})

			result.ToolCalls = append(result.ToolCalls, record)
		}

		result.Iterations = iteration + 1
	}

	l.observer.OnEvent(ctx, observability.Event{
		Type:      EventLoopError,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "agent.Loop",
		Data: map[string]any{
			"error":      "max iterations reached",
			"iterations": l.maxIterations,
		},
	})

	return result, ErrMaxIterations
}

func (l *Loop) buildMessages() []protocol.Message {
	sessionMsgs := l.session.Messages()

	if l.systemPrompt == "" {
		return sessionMsgs
	}

	messages := make([]protocol.Message, 0, len(sessionMsgs)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, l.systemPrompt))
	messages = append(messages, sessionMsgs...)
	return messages
}
