package message

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Role represents the role of the message sender
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single entry in a session's conversation log.
// The log is append-only; the engine has no other memory of prior turns.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a new message with the given role and content
func New(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Clone creates a copy of the message.
func Clone(msg *Message) *Message {
	if msg == nil {
		return nil
	}
	cloned := *msg
	return &cloned
}

// CloneMessages copies a slice of messages.
func CloneMessages(msgs []*Message) []*Message {
	if len(msgs) == 0 {
		return nil
	}
	clones := make([]*Message, 0, len(msgs))
	for _, msg := range msgs {
		clones = append(clones, Clone(msg))
	}
	return clones
}

// SortChronological orders messages by creation time, oldest first.
// Equal timestamps keep their insertion order.
func SortChronological(msgs []*Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// LastByRole returns the most recent message with the given role, or nil.
func LastByRole(msgs []*Message, role Role) *Message {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == role {
			return msgs[i]
		}
	}
	return nil
}

// UserContents returns the content of every user-authored message in order.
func UserContents(msgs []*Message) []string {
	var out []string
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			out = append(out, msg.Content)
		}
	}
	return out
}

// idGenerator produces collision-free IDs even when several messages are
// created within the same nanosecond.
type idGenerator struct {
	mu      sync.Mutex
	lastTs  int64
	counter int64
}

var defaultIDGenerator = &idGenerator{}

func generateID() string {
	return defaultIDGenerator.generate()
}

func (g *idGenerator) generate() string {
	now := time.Now().UnixNano()

	g.mu.Lock()
	if now > g.lastTs {
		g.lastTs = now
		g.counter = 0
		g.mu.Unlock()
		return fmt.Sprintf("msg_%d", now)
	}
	g.counter++
	counter := g.counter
	g.mu.Unlock()

	return fmt.Sprintf("msg_%d_%d", g.lastTs, counter)
}
