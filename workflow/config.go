package workflow

// Config defines configuration for graph construction.
//
// The Observer field is a string to enable JSON configuration with runtime
// resolution via the observability registry.
//
// Example JSON:
//
//	{
//	  "name": "report-pipeline",
//	  "observer": "slog"
//	}
type Config struct {
	// Name identifies the graph for observability
	Name string `json:"name"`

	// Observer specifies which observer implementation to use ("noop", "slog",
	// etc.). Empty selects the no-op observer.
	Observer string `json:"observer"`
}

// DefaultConfig returns sensible defaults for graph construction.
//
// Default values:
//   - Observer: "slog" for structured logging
func DefaultConfig(name string) Config {
	return Config{
		Name:     name,
		Observer: "slog",
	}
}

// Merge overlays non-zero fields from source onto the config.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}

	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}
