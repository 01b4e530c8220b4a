package agent

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/flowkit/core/config"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// AgentInfo describes a registered agent's name and supported protocols.
type AgentInfo struct {
	Name         string
	Capabilities []protocol.Protocol
}

// Registry manages named agent configurations with lazy instantiation.
// Registration stores only the configuration; the agent itself is built on
// first Get, so a pipeline can declare its agents before any provider is
// reachable. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]config.AgentConfig
	agents  map[string]Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]config.AgentConfig),
		agents:  make(map[string]Agent),
	}
}

// Register adds a named agent configuration. The agent is not instantiated
// until Get is called.
func (r *Registry) Register(name string, cfg config.AgentConfig) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrAgentExists, name)
	}

	r.configs[name] = cfg
	return nil
}

// Get returns the named agent, building it from its configuration on first
// access and caching the instance for later calls.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.RLock()
	if a, exists := r.agents[name]; exists {
		r.mu.RUnlock()
		return a, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; a concurrent Get may have built it.
	if a, exists := r.agents[name]; exists {
		return a, nil
	}

	cfg, registered := r.configs[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	a, err := New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", name, err)
	}

	r.agents[name] = a
	return a, nil
}

// Replace updates the configuration of an existing named agent. Any cached
// instance is invalidated; the next Get rebuilds from the new configuration.
func (r *Registry) Replace(name string, cfg config.AgentConfig) error {
	if name == "" {
		return ErrEmptyAgentName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	r.configs[name] = cfg
	delete(r.agents, name)
	return nil
}

// Unregister removes a named agent and its cached instance.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	delete(r.configs, name)
	delete(r.agents, name)
	return nil
}

// Capabilities returns the protocols a named agent's model supports, derived
// from its configuration without instantiating the agent.
func (r *Registry) Capabilities(name string) ([]protocol.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}

	return capabilitiesFromConfig(&cfg), nil
}

// List returns information about all registered agents, sorted by name.
func (r *Registry) List() []AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]AgentInfo, 0, len(r.configs))
	for name, cfg := range r.configs {
		infos = append(infos, AgentInfo{
			Name:         name,
			Capabilities: capabilitiesFromConfig(&cfg),
		})
	}

	slices.SortFunc(infos, func(a, b AgentInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return infos
}

func capabilitiesFromConfig(cfg *config.AgentConfig) []protocol.Protocol {
	if cfg.Model == nil || len(cfg.Model.Capabilities) == 0 {
		return nil
	}

	capes := make([]protocol.Protocol, 0, len(cfg.Model.Capabilities))
	for key := range cfg.Model.Capabilities {
		if protocol.IsValid(key) {
			capes = append(capes, protocol.Protocol(key))
		}
	}

	slices.Sort(capes)
	return capes
}
