package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haruteam/dermai"
)

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in the append-only chat log. Immutable once
// created; messages are only removed by a full reset.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrChatBusy is returned while a reply is still outstanding
var ErrChatBusy = errors.New("workflow: a chat reply is still pending")

// ChatSession is the append-only message log for a case. Its pending flag
// is independent of the workflow's processing flag.
type ChatSession struct {
	advisor Advisor

	mu       sync.Mutex
	messages []ChatMessage
	pending  bool
	epoch    uint64
}

func newChatSession(advisor Advisor) *ChatSession {
	return &ChatSession{advisor: advisor}
}

// Messages returns a copy of the log
func (s *ChatSession) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Pending reports whether a reply is outstanding
func (s *ChatSession) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Send appends the user message, requests a reply with the full prior
// history plus the fixed case context, and appends the reply on success.
// On failure the user message stays in the log with no reply and the
// pending flag clears.
func (s *ChatSession) Send(ctx context.Context, text string, image *dermai.ImageData, label string) (ChatMessage, error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ChatMessage{}, ErrChatBusy
	}

	// History as it stood before this message; the advisor appends the
	// new message itself.
	history := make([]dermai.Message, len(s.messages))
	for i, m := range s.messages {
		role := dermai.RoleUser
		if m.Role == ChatRoleAssistant {
			role = dermai.RoleAssistant
		}
		history[i] = dermai.Message{Role: role, Content: m.Content}
	}

	s.messages = append(s.messages, ChatMessage{
		ID:        uuid.NewString(),
		Role:      ChatRoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	s.pending = true
	ep := s.epoch
	s.mu.Unlock()

	content, err := s.advisor.Chat(ctx, history, text, image, label)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != ep {
		// Session was cleared while the reply was in flight
		return ChatMessage{}, err
	}
	s.pending = false
	if err != nil {
		return ChatMessage{}, err
	}

	reply := ChatMessage{
		ID:        uuid.NewString(),
		Role:      ChatRoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, reply)
	return reply, nil
}

// clear wipes the log; the epoch bump discards in-flight replies
func (s *ChatSession) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.pending = false
	s.messages = nil
}
