package runner

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/petasbytes/toolagent/internal/metrics"
	"github.com/petasbytes/toolagent/memory"
)

// State is where a session's current turn stands.
type State int

const (
	AwaitingModel State = iota
	DispatchingTools
	Terminated
	PlainAnswer
	Exhausted
)

func (s State) String() string {
	switch s {
	case AwaitingModel:
		return "awaiting_model"
	case DispatchingTools:
		return "dispatching_tools"
	case Terminated:
		return "terminated"
	case PlainAnswer:
		return "plain_answer"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is one conversation plus its loop bookkeeping. Sessions share no
// state; a session runs at most one turn at a time.
type Session struct {
	ID           string
	Conversation *memory.Conversation
	// Iterations counts completed tool batches in the current turn.
	Iterations int
	State      State

	systemPrompt string
	busy         sync.Mutex
	pending      *turn // set while a turn has not reached a final state
}

// turn is the per-turn bookkeeping kept across Resume.
type turn struct {
	id      string
	metrics *metrics.Turn
}

// NewSession starts a conversation seeded with systemPrompt (omitted when empty).
func NewSession(systemPrompt string) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Conversation: newConversation(systemPrompt),
		systemPrompt: systemPrompt,
	}
}

func newConversation(systemPrompt string) *memory.Conversation {
	var seed []memory.Message
	if systemPrompt != "" {
		seed = append(seed, memory.Message{Role: memory.RoleSystem, Content: systemPrompt})
	}
	// A lone system message always validates.
	conv, _ := memory.NewConversation(seed...)
	return conv
}

// Reset replaces the conversation with a fresh one. It fails while a turn runs.
func (s *Session) Reset() error {
	if !s.busy.TryLock() {
		return ErrTurnInProgress
	}
	defer s.busy.Unlock()
	s.Conversation = newConversation(s.systemPrompt)
	s.Iterations = 0
	s.State = AwaitingModel
	s.pending = nil
	return nil
}

// Resumable reports whether the last turn stopped on a model failure.
func (s *Session) Resumable() bool {
	if !s.busy.TryLock() {
		return false
	}
	defer s.busy.Unlock()
	return s.pending != nil
}
