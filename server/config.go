package server

// Config defines the serving surface: the listen address and the observer
// request events flow through.
//
// Example JSON:
//
//	{
//	  "addr": ":8080",
//	  "observer": "slog"
//	}
type Config struct {
	// Addr is the listen address, host optional.
	Addr string `json:"addr"`

	// Observer names the observability sink for request events.
	Observer string `json:"observer"`
}

// DefaultConfig returns sensible defaults for serving.
func DefaultConfig() Config {
	return Config{
		Addr:     ":8080",
		Observer: "slog",
	}
}

// Merge overlays non-zero fields from source onto the config.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}

	if source.Addr != "" {
		c.Addr = source.Addr
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}
