package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

func TestProtocolValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"chat", "chat", true},
		{"tools", "tools", true},
		{"unknown protocol", "embeddings", false},
		{"empty string", "", false},
		{"uppercase rejected", "CHAT", false},
		{"mixed case rejected", "Tools", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := protocol.IsValid(tt.input); got != tt.valid {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}

func TestValidProtocols(t *testing.T) {
	got := protocol.ValidProtocols()
	want := []protocol.Protocol{protocol.Chat, protocol.Tools}

	if len(got) != len(want) {
		t.Fatalf("got %d protocols, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if protocol.ProtocolStrings() != "chat, tools" {
		t.Errorf("ProtocolStrings() = %q, want %q", protocol.ProtocolStrings(), "chat, tools")
	}
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name string
		role protocol.Role
	}{
		{"system", protocol.RoleSystem},
		{"user", protocol.RoleUser},
		{"assistant", protocol.RoleAssistant},
		{"tool", protocol.RoleTool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := protocol.NewMessage(tt.role, "what time is it?")
			if msg.Role != tt.role {
				t.Errorf("role = %q, want %q", msg.Role, tt.role)
			}
			if string(msg.Role) != tt.name {
				t.Errorf("role string = %q, want %q", msg.Role, tt.name)
			}

			content, ok := msg.Content.(string)
			if !ok {
				t.Fatalf("content is not a string: %T", msg.Content)
			}
			if content != "what time is it?" {
				t.Errorf("content = %q", content)
			}
		})
	}
}

func TestNewMessage_StructuredContent(t *testing.T) {
	msg := protocol.NewMessage(protocol.RoleAssistant, map[string]any{
		"type": "text",
		"text": "it is 09:30",
	})

	if _, ok := msg.Content.(map[string]any); !ok {
		t.Errorf("structured content not preserved: %T", msg.Content)
	}
}

func TestInitMessages(t *testing.T) {
	messages := protocol.InitMessages(protocol.RoleUser, "what time is it in Tokyo?")

	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Role != protocol.RoleUser {
		t.Errorf("role = %q, want user", messages[0].Role)
	}
	if messages[0].Content != "what time is it in Tokyo?" {
		t.Errorf("content = %v", messages[0].Content)
	}
}

func TestMessage_JSONToolFields(t *testing.T) {
	tests := []struct {
		name          string
		msg           protocol.Message
		wantToolCalls bool
		wantToolID    bool
	}{
		{
			name:          "plain message omits tool fields",
			msg:           protocol.NewMessage(protocol.RoleUser, "hello"),
			wantToolCalls: false,
			wantToolID:    false,
		},
		{
			name: "assistant message keeps tool calls",
			msg: protocol.Message{
				Role: protocol.RoleAssistant,
				ToolCalls: []protocol.ToolCall{
					protocol.NewToolCall("call_1", "get_time", `{}`),
				},
			},
			wantToolCalls: true,
			wantToolID:    false,
		},
		{
			name: "tool result keeps correlation id",
			msg: protocol.Message{
				Role:       protocol.RoleTool,
				Content:    "2025-08-24T09:30:00-04:00",
				ToolCallID: "call_1",
			},
			wantToolCalls: false,
			wantToolID:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}

			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			if _, exists := raw["tool_calls"]; exists != tt.wantToolCalls {
				t.Errorf("tool_calls present = %v, want %v", exists, tt.wantToolCalls)
			}
			if _, exists := raw["tool_call_id"]; exists != tt.wantToolID {
				t.Errorf("tool_call_id present = %v, want %v", exists, tt.wantToolID)
			}
		})
	}
}

func TestToolCall_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want protocol.ToolCall
	}{
		{
			name: "nested wire shape",
			data: `{
				"id": "call_time",
				"type": "function",
				"function": {
					"name": "get_time",
					"arguments": "{\"timezone\":\"America/New_York\"}"
				}
			}`,
			want: protocol.ToolCall{
				ID:        "call_time",
				Name:      "get_time",
				Arguments: `{"timezone":"America/New_York"}`,
			},
		},
		{
			name: "flat runtime shape",
			data: `{"id": "call_month", "name": "get_month", "arguments": "{}"}`,
			want: protocol.ToolCall{
				ID:        "call_month",
				Name:      "get_month",
				Arguments: `{}`,
			},
		},
		{
			name: "empty object",
			data: `{}`,
			want: protocol.ToolCall{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tc protocol.ToolCall
			if err := json.Unmarshal([]byte(tt.data), &tc); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if tc != tt.want {
				t.Errorf("got %+v, want %+v", tc, tt.want)
			}
		})
	}
}

func TestToolCall_Unmarshal_InvalidJSON(t *testing.T) {
	var tc protocol.ToolCall
	if err := json.Unmarshal([]byte(`{invalid}`), &tc); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestToolCall_Unmarshal_MixedArray(t *testing.T) {
	// Provider responses and replayed transcripts can mix both shapes.
	data := `[
		{"id": "call_1", "type": "function", "function": {"name": "get_time", "arguments": "{}"}},
		{"id": "call_2", "name": "get_month", "arguments": "{\"year\":2025}"}
	]`

	var calls []protocol.ToolCall
	if err := json.Unmarshal([]byte(data), &calls); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].Name != "get_time" || calls[1].Name != "get_month" {
		t.Errorf("names = %q, %q", calls[0].Name, calls[1].Name)
	}
	if calls[1].Arguments != `{"year":2025}` {
		t.Errorf("arguments = %q", calls[1].Arguments)
	}
}

func TestToolCall_Marshal(t *testing.T) {
	tc := protocol.NewToolCall("call_time", "get_time", `{"timezone":"Asia/Tokyo"}`)

	data, err := json.Marshal(tc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if raw["id"] != "call_time" {
		t.Errorf("id = %v", raw["id"])
	}
	if raw["type"] != "function" {
		t.Errorf("type = %v, want function", raw["type"])
	}

	fn, ok := raw["function"].(map[string]any)
	if !ok {
		t.Fatalf("function field is not an object: %T", raw["function"])
	}
	if fn["name"] != "get_time" {
		t.Errorf("function.name = %v", fn["name"])
	}
	if fn["arguments"] != `{"timezone":"Asia/Tokyo"}` {
		t.Errorf("function.arguments = %v", fn["arguments"])
	}

	// The flat fields must not leak to the top level of the wire shape.
	if _, exists := raw["name"]; exists {
		t.Error("flat name present in wire shape")
	}
	if _, exists := raw["arguments"]; exists {
		t.Error("flat arguments present in wire shape")
	}
}

func TestToolCall_RoundTrip(t *testing.T) {
	original := protocol.NewToolCall("call_rt", "get_time", `{"timezone":"UTC","format":"iso"}`)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored protocol.ToolCall
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if restored != original {
		t.Errorf("round trip changed value: got %+v, want %+v", restored, original)
	}
}
