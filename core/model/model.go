// Package model represents a provider model and its per-protocol request
// options.
package model

import (
	"github.com/tailored-agentic-units/flowkit/core/config"
	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// Model pairs a model name with per-protocol request options. Options maps
// each protocol to the provider parameters (temperature, max_tokens, ...)
// merged into outgoing requests for that protocol.
type Model struct {
	Name    string
	Options map[protocol.Protocol]map[string]any
}

// New builds a Model from configuration. Options maps are initialized for
// every supported protocol so callers can set parameters without nil checks.
// Configured capabilities overlay the initialized maps; unknown capability
// keys are ignored.
func New(cfg *config.ModelConfig) *Model {
	m := &Model{
		Options: make(map[protocol.Protocol]map[string]any),
	}

	for _, p := range protocol.ValidProtocols() {
		m.Options[p] = make(map[string]any)
	}

	if cfg == nil {
		return m
	}

	m.Name = cfg.Name
	for key, opts := range cfg.Capabilities {
		if !protocol.IsValid(key) {
			continue
		}
		p := protocol.Protocol(key)
		for name, value := range opts {
			m.Options[p][name] = value
		}
	}

	return m
}
