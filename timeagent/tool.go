package timeagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
	"github.com/tailored-agentic-units/flowkit/tools"
)

// DefaultWorldTimeURL is the public worldtime API this pipeline queries.
const DefaultWorldTimeURL = "http://worldtimeapi.org"

// ToolGetTime is the name the model calls the time tool by.
const ToolGetTime = "get_time"

// TimeSource fetches the current time for a timezone from a worldtime API.
type TimeSource struct {
	baseURL string
	client  *http.Client
}

// NewTimeSource creates a TimeSource against the given API base URL.
// An empty URL selects DefaultWorldTimeURL; a nil client gets a 10 second
// timeout.
func NewTimeSource(baseURL string, client *http.Client) *TimeSource {
	if baseURL == "" {
		baseURL = DefaultWorldTimeURL
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &TimeSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// Current returns the datetime string the API reports for the timezone,
// for example "2025-08-24T09:30:00.123456-04:00". Transport failures,
// non-2xx statuses, and payloads without a datetime field are errors; the
// source never substitutes a default time.
func (s *TimeSource) Current(ctx context.Context, timezone string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/timezone/%s", s.baseURL, timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create worldtime request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("worldtime request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read worldtime response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("worldtime API returned status %d for timezone %s", resp.StatusCode, timezone)
	}

	var payload struct {
		Datetime string `json:"datetime"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode worldtime response: %w", err)
	}

	if payload.Datetime == "" {
		return "", errors.New("worldtime response is missing the datetime field")
	}

	return payload.Datetime, nil
}

// Tool returns the get_time tool definition offered to the model.
func (s *TimeSource) Tool() protocol.Tool {
	return protocol.Tool{
		Name:        ToolGetTime,
		Description: "Get the current time for an IANA timezone.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{
					"type":        "string",
					"description": "IANA timezone name, for example America/New_York",
				},
			},
		},
	}
}

// Handler returns a tool handler bound to a fallback timezone. The model
// may name a timezone in the call arguments; when it does not, the bound
// one applies, keeping the call scoped to the run that registered it.
func (s *TimeSource) Handler(fallback string) tools.Handler {
	return func(ctx context.Context, args json.RawMessage) (tools.Result, error) {
		var params struct {
			Timezone string `json:"timezone"`
		}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &params); err != nil {
				return tools.Result{}, fmt.Errorf("invalid %s arguments: %w", ToolGetTime, err)
			}
		}

		timezone := params.Timezone
		if timezone == "" {
			timezone = fallback
		}
		if timezone == "" {
			return tools.Result{}, fmt.Errorf("%s requires a timezone", ToolGetTime)
		}

		datetime, err := s.Current(ctx, timezone)
		if err != nil {
			return tools.Result{}, err
		}

		return tools.Result{Content: datetime}, nil
	}
}
