// Package conversation keeps the bounded in-memory exchange history for a
// chat session.
package conversation

import (
	"sync"
	"time"
)

// DefaultMaxHistory bounds a session's retained messages.
const DefaultMaxHistory = 50

// Role identifies a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
}

// History is a fixed-capacity message log. When full, appending evicts the
// oldest message.
type History struct {
	mu       sync.Mutex
	max      int
	messages []Message
}

// NewHistory creates a history bounded to max messages. Non-positive max
// falls back to DefaultMaxHistory.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{max: max}
}

// Add appends a message, evicting from the front when at capacity.
func (h *History) Add(role Role, content string, sources []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Sources:   sources,
	})
	if len(h.messages) > h.max {
		h.messages = h.messages[len(h.messages)-h.max:]
	}
}

// Messages returns a copy of the retained messages, oldest first.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear discards all retained messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}
