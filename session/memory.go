package session

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/flowkit/core/protocol"
)

// memorySession is the in-memory Session. IDs are UUIDv7 so transcripts sort
// by creation time when collected.
type memorySession struct {
	id  string
	cap int

	mu       sync.RWMutex
	messages []protocol.Message
}

// NewMemorySession creates an unbounded Session backed by an in-memory slice.
func NewMemorySession() Session {
	return newMemorySession(0)
}

func newMemorySession(cap int) *memorySession {
	return &memorySession{
		id:  uuid.Must(uuid.NewV7()).String(),
		cap: cap,
	}
}

func (s *memorySession) ID() string {
	return s.id
}

// AddMessage appends to the transcript, dropping the oldest message first
// when a cap is configured and reached.
func (s *memorySession) AddMessage(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap > 0 && len(s.messages) >= s.cap {
		s.messages = slices.Delete(s.messages, 0, len(s.messages)-s.cap+1)
	}
	s.messages = append(s.messages, msg)
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]protocol.Message, len(s.messages))
	for i, msg := range s.messages {
		copied[i] = msg
		copied[i].ToolCalls = slices.Clone(msg.ToolCalls)
	}
	return copied
}

func (s *memorySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
