// Package config defines the serializable configuration types shared by the
// agent subsystem. Each type follows the same contract: a Default constructor
// returning a fully populated value, a Merge method applying non-zero values
// from a source, and JSON tags for file-based configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

const defaultTimeoutSeconds = 120

// ClientConfig holds HTTP client settings for provider communication.
type ClientConfig struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *ClientConfig) Merge(source *ClientConfig) {
	if source == nil {
		return
	}

	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// ProviderConfig identifies the LLM provider endpoint an agent talks to.
// APIKey is optional; local providers such as Ollama do not require one.
type ProviderConfig struct {
	Name    string `json:"name,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *ProviderConfig) Merge(source *ProviderConfig) {
	if source == nil {
		return
	}

	if source.Name != "" {
		c.Name = source.Name
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
}

// ModelConfig names the model an agent uses and the per-protocol options it
// supports. Capabilities is keyed by protocol name ("chat", "tools"); each
// value holds provider options merged into requests for that protocol.
type ModelConfig struct {
	Name         string                    `json:"name,omitempty"`
	Capabilities map[string]map[string]any `json:"capabilities,omitempty"`
}

// Merge applies non-zero values from source into c. Capabilities are replaced
// wholesale rather than merged per-protocol.
func (c *ModelConfig) Merge(source *ModelConfig) {
	if source == nil {
		return
	}

	if source.Name != "" {
		c.Name = source.Name
	}
	if len(source.Capabilities) > 0 {
		c.Capabilities = source.Capabilities
	}
}

// AgentConfig holds everything needed to construct an agent: identity,
// system prompt, HTTP client settings, provider endpoint, and model.
type AgentConfig struct {
	Name         string          `json:"name,omitempty"`
	SystemPrompt string          `json:"system_prompt,omitempty"`
	Client       *ClientConfig   `json:"client,omitempty"`
	Provider     *ProviderConfig `json:"provider,omitempty"`
	Model        *ModelConfig    `json:"model,omitempty"`
}

// DefaultAgentConfig returns an AgentConfig targeting a local Ollama
// endpoint with deterministic sampling for both chat and tools.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name: "agent",
		Client: &ClientConfig{
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Provider: &ProviderConfig{
			Name:    "ollama",
			BaseURL: "http://localhost:11434/v1",
		},
		Model: &ModelConfig{
			Name: "gpt-oss:20b",
			Capabilities: map[string]map[string]any{
				string(protocol.Chat):  {"temperature": 0.0},
				string(protocol.Tools): {"temperature": 0.0},
			},
		},
	}
}

// Merge applies non-zero values from source into c, delegating to each
// section's Merge method. Nil sections in source leave c's sections intact.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}

	if source.Client != nil {
		if c.Client == nil {
			c.Client = &ClientConfig{}
		}
		c.Client.Merge(source.Client)
	}

	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		c.Provider.Merge(source.Provider)
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{}
		}
		c.Model.Merge(source.Model)
	}
}

// Validate checks that the configuration names a reachable provider and
// model, and that every capability key is a supported protocol.
func (c *AgentConfig) Validate() error {
	if c.Provider == nil {
		return fmt.Errorf("provider configuration is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base URL is required")
	}
	if c.Model == nil {
		return fmt.Errorf("model configuration is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}

	for key := range c.Model.Capabilities {
		if !protocol.IsValid(key) {
			return fmt.Errorf("invalid capability %q: valid protocols are %s", key, protocol.ProtocolStrings())
		}
	}

	return nil
}

// LoadAgentConfig reads a JSON config file, merges it with defaults, and
// returns the resulting AgentConfig.
func LoadAgentConfig(filename string) (*AgentConfig, error) {
	cfg := DefaultAgentConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded AgentConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
