package timeagent

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/flowkit/core/config"
)

// Default inputs mirroring the pipeline's stock question.
const (
	DefaultPrompt   = "What is the current time?"
	DefaultTimezone = "America/New_York"
)

const defaultMaxIterations = 5

const (
	timeSystemPrompt = "Use the get_time tool to get the time. " +
		"Return the current time and the UTC offset."
	monthSystemPrompt = "Return the name of the month and also return " +
		"an emoji that most represents that month."
)

// Config defines the time-report pipeline: the two agents it drives, the
// worldtime endpoint, and the observer runs report through.
//
// Example JSON:
//
//	{
//	  "name": "time-report",
//	  "observer": "slog",
//	  "worldtime_url": "http://worldtimeapi.org",
//	  "time_agent": {
//	    "provider": {"name": "ollama", "base_url": "http://localhost:11434/v1"}
//	  }
//	}
type Config struct {
	// Name identifies the pipeline graph for observability.
	Name string `json:"name"`

	// Observer names the observability sink ("noop", "slog", ...).
	Observer string `json:"observer"`

	// MaxIterations caps the get_time tool loop. Zero keeps the default.
	MaxIterations int `json:"max_iterations,omitempty"`

	// WorldTimeURL is the worldtime API base URL.
	WorldTimeURL string `json:"worldtime_url,omitempty"`

	// TimeAgent configures the tool-calling agent that resolves the time.
	TimeAgent *config.AgentConfig `json:"time_agent,omitempty"`

	// MonthAgent configures the agent that names the month.
	MonthAgent *config.AgentConfig `json:"month_agent,omitempty"`
}

// DefaultConfig returns the stock pipeline configuration: both agents on
// the default local provider with temperature 0, and the public worldtime
// API as the time source.
func DefaultConfig() Config {
	timeAgent := config.DefaultAgentConfig()
	timeAgent.Name = "time-agent"
	timeAgent.SystemPrompt = timeSystemPrompt

	monthAgent := config.DefaultAgentConfig()
	monthAgent.Name = "month-agent"
	monthAgent.SystemPrompt = monthSystemPrompt

	return Config{
		Name:          "time-report",
		Observer:      "slog",
		MaxIterations: defaultMaxIterations,
		WorldTimeURL:  DefaultWorldTimeURL,
		TimeAgent:     &timeAgent,
		MonthAgent:    &monthAgent,
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

	if source.MaxIterations != 0 {
		c.MaxIterations = source.MaxIterations
	}

	if source.WorldTimeURL != "" {
		c.WorldTimeURL = source.WorldTimeURL
	}

	if source.TimeAgent != nil {
		if c.TimeAgent == nil {
			c.TimeAgent = &config.AgentConfig{}
		}
		c.TimeAgent.Merge(source.TimeAgent)
	}

	if source.MonthAgent != nil {
		if c.MonthAgent == nil {
			c.MonthAgent = &config.AgentConfig{}
		}
		c.MonthAgent.Merge(source.MonthAgent)
	}
}

// LoadConfig reads pipeline configuration from a JSON file, overlaying the
// file's values on the defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Merge(&fileConfig)
	return &cfg, nil
}
