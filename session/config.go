package session

// Config holds session initialization parameters.
//
// Example JSON:
//
//	{
//	  "max_messages": 200
//	}
type Config struct {
	// MaxMessages bounds the transcript length. When the cap is reached the
	// oldest message is dropped on append. Zero means unbounded.
	MaxMessages int `json:"max_messages,omitempty"`
}

// DefaultConfig returns the default session configuration: an unbounded
// transcript.
func DefaultConfig() Config {
	return Config{}
}

// Merge overlays non-zero fields from source onto the config.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}

	if source.MaxMessages != 0 {
		c.MaxMessages = source.MaxMessages
	}
}

// New creates a Session from configuration, backed by memory.
func New(cfg *Config) (Session, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)
	return newMemorySession(merged.MaxMessages), nil
}
