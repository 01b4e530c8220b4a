package providers

import "github.com/tailored-agentic-units/flowkit/core/config"

// defaultOllamaBaseURL is the local Ollama OpenAI-compatible endpoint.
const defaultOllamaBaseURL = "http://localhost:11434/v1"

// NewOllama creates a Provider for an Ollama endpoint. An empty base URL
// falls back to the local default. Ollama does not require an API key, but
// one is honored when configured (for authenticating proxies).
func NewOllama(cfg *config.ProviderConfig) (Provider, error) {
	baseURL := defaultOllamaBaseURL
	apiKey := ""

	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		apiKey = cfg.APIKey
	}

	p := NewBaseProvider("ollama", baseURL)
	p.apiKey = apiKey
	return p, nil
}
