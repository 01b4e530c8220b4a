package response

import (
	"encoding/json"
	"fmt"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// ToolsResponse is the parsed response of a tools protocol request. A turn
// either requests tool invocations (Message.ToolCalls set) or carries the
// final assistant text; the tool loop inspects which to decide whether to
// keep iterating.
type ToolsResponse struct {
	ID      string `json:"id,omitempty"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Content returns the assistant message text from the first choice, or the
// empty string when the response carries no choices.
func (r *ToolsResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ParseTools parses a tools response body into a ToolsResponse.
func ParseTools(body []byte) (*ToolsResponse, error) {
	var response ToolsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse tools response: %w", err)
	}
	return &response, nil
}
