package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

func (r Role) valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// ToolCall is one tool invocation requested by the model.
// Arguments holds the raw JSON text as returned by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Message is a single entry of the conversation log.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, c := range m.ToolCalls {
			out.ToolCalls[i] = c
			if c.Arguments != nil {
				out.ToolCalls[i].Arguments = append(json.RawMessage(nil), c.Arguments...)
			}
		}
	}
	return out
}

var (
	// ErrInvalidMessage is returned for messages with an unknown role or
	// malformed tool call fields.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrOrphanToolResult is returned when a tool-role message does not answer
	// an open call of the preceding assistant message.
	ErrOrphanToolResult = errors.New("tool result does not match a pending tool call")
)

// Conversation is an append-only message log. It is safe for concurrent use.
type Conversation struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewConversation returns a log seeded with the given messages.
func NewConversation(seed ...Message) (*Conversation, error) {
	c := &Conversation{}
	for _, m := range seed {
		if err := c.Append(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append validates m and adds a copy of it to the end of the log.
// On error the log is left unchanged.
func (c *Conversation) Append(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(m); err != nil {
		return err
	}
	c.msgs = append(c.msgs, m.Clone())
	return nil
}

func (c *Conversation) check(m Message) error {
	if !m.Role.valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}
	switch m.Role {
	case RoleAssistant:
		seen := make(map[string]struct{}, len(m.ToolCalls))
		for _, tc := range m.ToolCalls {
			if tc.ID == "" || tc.Name == "" {
				return fmt.Errorf("%w: tool call needs an id and a name", ErrInvalidMessage)
			}
			if _, dup := seen[tc.ID]; dup {
				return fmt.Errorf("%w: duplicate tool call id %q", ErrInvalidMessage, tc.ID)
			}
			seen[tc.ID] = struct{}{}
		}
	case RoleTool:
		if m.ToolCallID == "" || len(m.ToolCalls) > 0 {
			return fmt.Errorf("%w: tool message needs a tool_call_id and no tool calls", ErrInvalidMessage)
		}
		return c.checkToolResult(m.ToolCallID)
	default:
		if len(m.ToolCalls) > 0 || m.ToolCallID != "" {
			return fmt.Errorf("%w: %s message cannot carry tool call fields", ErrInvalidMessage, m.Role)
		}
	}
	return nil
}

// checkToolResult walks back over the trailing tool messages to the assistant
// message that opened the batch.
func (c *Conversation) checkToolResult(id string) error {
	for i := len(c.msgs) - 1; i >= 0; i-- {
		prev := c.msgs[i]
		if prev.Role == RoleTool {
			if prev.ToolCallID == id {
				return fmt.Errorf("%w: %q already answered", ErrOrphanToolResult, id)
			}
			continue
		}
		if prev.Role != RoleAssistant {
			break
		}
		for _, tc := range prev.ToolCalls {
			if tc.ID == id {
				return nil
			}
		}
		break
	}
	return fmt.Errorf("%w: %q", ErrOrphanToolResult, id)
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.msgs)
}

// At returns a copy of the i-th message.
func (c *Conversation) At(i int) (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.msgs) {
		return Message{}, false
	}
	return c.msgs[i].Clone(), true
}

// Messages returns a copy of the whole log, oldest first.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Clone()
	}
	return out
}

// Last returns a copy of the newest message.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1].Clone(), true
}
