package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// Handler is the function signature for tool implementations.
// Handlers receive the request context and JSON-encoded arguments from the LLM.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is the tool execution output that feeds back into the next LLM turn.
// IsError signals to the LLM that the tool invocation failed.
type Result struct {
	Content string
	IsError bool
}

type entry struct {
	tool    protocol.Tool
	handler Handler
}

// Registry holds named tools and dispatches calls to their handlers.
// A Registry is safe for concurrent use. The zero value is not usable;
// create instances with NewRegistry.
type Registry struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty tool registry. Use an instance registry when
// tools carry per-deployment state (endpoints, credentials) that should not
// leak into the process-wide default registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a new tool to the registry.
// Returns ErrAlreadyExists if a tool with the same name is already registered.
// Use Replace to update an existing tool's handler.
func (r *Registry) Register(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	if handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Replace updates an existing tool's definition and handler.
// Returns ErrNotFound if no tool with the given name is registered.
func (r *Registry) Replace(tool protocol.Tool, handler Handler) error {
	if tool.Name == "" {
		return ErrEmptyName
	}

	if handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}

	r.entries[tool.Name] = entry{tool: tool, handler: handler}
	return nil
}

// Get retrieves a handler by tool name.
// Returns the handler and true if found, nil and false otherwise.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return e.handler, true
}

// List returns the definitions of all registered tools.
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]protocol.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		tools = append(tools, e.tool)
	}
	return tools
}

// Execute dispatches a tool call to the registered handler by name.
// Returns ErrNotFound if the tool is not registered.
// Handler errors are wrapped with the tool name for context.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}

	return result, nil
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide tool registry used by the package-level
// functions.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a new tool to the default registry.
// Thread-safe for concurrent registration.
func Register(tool protocol.Tool, handler Handler) error {
	return defaultRegistry.Register(tool, handler)
}

// Replace updates an existing tool in the default registry.
// Thread-safe for concurrent access.
func Replace(tool protocol.Tool, handler Handler) error {
	return defaultRegistry.Replace(tool, handler)
}

// Get retrieves a handler from the default registry by tool name.
// Thread-safe for concurrent access.
func Get(name string) (Handler, bool) {
	return defaultRegistry.Get(name)
}

// List returns the definitions of all tools in the default registry.
// Thread-safe for concurrent access.
func List() []protocol.Tool {
	return defaultRegistry.List()
}

// Execute dispatches a tool call through the default registry.
// Thread-safe for concurrent execution.
func Execute(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	return defaultRegistry.Execute(ctx, name, args)
}
