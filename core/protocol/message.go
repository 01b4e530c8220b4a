package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation recorded in conversation history.
//
// The runtime works with the flat shape (ID, Name, Arguments); the
// OpenAI-compatible wire shape nests name and arguments under a function
// envelope. The JSON methods translate between the two, and UnmarshalJSON
// accepts either, so provider responses and locally built transcripts both
// decode into the same canonical type.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// wireFunction is the function envelope of the wire shape.
type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// wireToolCall is the nested OpenAI-compatible wire shape.
type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Function wireFunction `json:"function"`
}

// MarshalJSON serializes to the nested wire shape, so transcripts replayed to
// a provider round-trip through UnmarshalJSON without loss.
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireToolCall{
		ID:   tc.ID,
		Type: "function",
		Function: wireFunction{
			Name:      tc.Name,
			Arguments: tc.Arguments,
		},
	})
}

// UnmarshalJSON accepts the nested wire shape and falls back to the flat
// runtime shape when no function envelope is present.
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var wire wireToolCall
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if wire.Function.Name != "" {
		tc.ID = wire.ID
		tc.Name = wire.Function.Name
		tc.Arguments = wire.Function.Arguments
		return nil
	}

	type plain ToolCall
	return json.Unmarshal(data, (*plain)(tc))
}

// NewToolCall creates a ToolCall with the given id, function name, and raw
// JSON arguments string.
func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{ID: id, Name: name, Arguments: arguments}
}

// Message is a single turn in a conversation. Content is any to cover both
// plain text and structured provider content.
//
// In tool-calling conversations, assistant messages carry ToolCalls and tool
// result messages carry the ToolCallID that correlates back to the request.
type Message struct {
	Role       Role       `json:"role"`
	Content    any        `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a Message with the given role and content. Set tool call
// fields through a struct literal.
func NewMessage(role Role, content any) Message {
	return Message{Role: role, Content: content}
}

// InitMessages starts a conversation with a single message, the common shape
// for a fresh prompt.
func InitMessages(role Role, content string) []Message {
	return []Message{NewMessage(role, content)}
}
