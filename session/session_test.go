package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
	"github.com/tailored-agentic-units/flowkit/session"
)

func TestNewMemorySession(t *testing.T) {
	s := session.NewMemorySession()

	if s.ID() == "" {
		t.Error("session ID should not be empty")
	}
	if got := s.ID(); got != s.ID() {
		t.Errorf("ID is not stable: %q then %q", got, s.ID())
	}
	if len(s.Messages()) != 0 {
		t.Errorf("new session has %d messages, want 0", len(s.Messages()))
	}

	if other := session.NewMemorySession(); other.ID() == s.ID() {
		t.Errorf("two sessions share ID %q", s.ID())
	}
}

// transcript appends a minimal tool-loop exchange: user prompt, assistant
// tool request, tool result, final assistant reply.
func transcript(s session.Session) {
	s.AddMessage(protocol.NewMessage(protocol.RoleUser, "what time is it?"))
	s.AddMessage(protocol.Message{
		Role: protocol.RoleAssistant,
		ToolCalls: []protocol.ToolCall{
			protocol.NewToolCall("call_1", "get_time", `{}`),
		},
	})
	s.AddMessage(protocol.Message{
		Role:       protocol.RoleTool,
		Content:    "2025-08-24T09:30:00-04:00",
		ToolCallID: "call_1",
	})
	s.AddMessage(protocol.NewMessage(protocol.RoleAssistant, "It is 9:30 AM."))
}

func TestSession_TranscriptOrder(t *testing.T) {
	s := session.NewMemorySession()
	transcript(s)

	msgs := s.Messages()
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}

	wantRoles := []protocol.Role{
		protocol.RoleUser,
		protocol.RoleAssistant,
		protocol.RoleTool,
		protocol.RoleAssistant,
	}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, msgs[i].Role, want)
		}
	}

	if len(msgs[1].ToolCalls) != 1 || msgs[1].ToolCalls[0].Name != "get_time" {
		t.Errorf("assistant tool request not preserved: %+v", msgs[1].ToolCalls)
	}
	if msgs[2].ToolCallID != "call_1" {
		t.Errorf("tool result correlation = %q, want call_1", msgs[2].ToolCallID)
	}
}

func TestSession_Messages_DefensiveCopy(t *testing.T) {
	s := session.NewMemorySession()
	transcript(s)

	msgs := s.Messages()
	msgs[0] = protocol.NewMessage(protocol.RoleSystem, "tampered")
	msgs[1].ToolCalls[0].Name = "tampered"
	msgs[1].ToolCalls = append(msgs[1].ToolCalls, protocol.NewToolCall("call_2", "extra", "{}"))

	original := s.Messages()
	if original[0].Role != protocol.RoleUser {
		t.Errorf("message slice was not copied: role = %q", original[0].Role)
	}
	if original[1].ToolCalls[0].Name != "get_time" {
		t.Errorf("tool calls were not copied: name = %q", original[1].ToolCalls[0].Name)
	}
	if len(original[1].ToolCalls) != 1 {
		t.Errorf("tool call append leaked: %d calls", len(original[1].ToolCalls))
	}
}

func TestSession_Clear(t *testing.T) {
	s := session.NewMemorySession()
	transcript(s)

	s.Clear()
	if len(s.Messages()) != 0 {
		t.Errorf("got %d messages after Clear, want 0", len(s.Messages()))
	}

	s.AddMessage(protocol.NewMessage(protocol.RoleUser, "second run"))
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Content != "second run" {
		t.Errorf("session unusable after Clear: %+v", msgs)
	}
}

func TestSession_MaxMessages(t *testing.T) {
	s, err := session.New(&session.Config{MaxMessages: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := range 5 {
		s.AddMessage(protocol.NewMessage(protocol.RoleUser, fmt.Sprintf("msg %d", i)))
	}

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, msg := range msgs {
		want := fmt.Sprintf("msg %d", i+2)
		if msg.Content != want {
			t.Errorf("message %d = %v, want %q (oldest dropped first)", i, msg.Content, want)
		}
	}
}

func TestSession_Concurrency(t *testing.T) {
	s := session.NewMemorySession()
	const n = 100

	var wg sync.WaitGroup
	wg.Add(3 * n)
	for range n {
		go func() {
			defer wg.Done()
			s.AddMessage(protocol.NewMessage(protocol.RoleUser, "msg"))
		}()
		go func() {
			defer wg.Done()
			_ = s.Messages()
		}()
		go func() {
			defer wg.Done()
			_ = s.ID()
		}()
	}
	wg.Wait()

	if len(s.Messages()) != n {
		t.Errorf("got %d messages, want %d", len(s.Messages()), n)
	}
}
