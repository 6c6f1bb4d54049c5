package core

import (
	"fmt"
	"time"
)

// DefaultMaxHistory keeps the ten most recent turns (user + assistant each).
const DefaultMaxHistory = 20

// StudentLevel describes the learner the specialists address.
type StudentLevel string

const (
	LevelElementary   StudentLevel = "elementary"
	LevelIntermediate StudentLevel = "intermediate"
	LevelAdvanced     StudentLevel = "advanced"
)

// Valid reports whether l is a known level.
func (l StudentLevel) Valid() bool {
	switch l {
	case LevelElementary, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// ParseStudentLevel converts s into a StudentLevel.
func ParseStudentLevel(s string) (StudentLevel, error) {
	l := StudentLevel(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown student level %q", s)
	}
	return l, nil
}

// ConversationContext is the shared per-session state: a bounded message
// history, the learner's level and the agent that answered last.
//
// Contract:
//   - mutated only by the orchestrator after a turn has produced a response
//   - len(History) <= MaxHistory after every AppendTurn
//   - eviction removes whole (user, assistant) pairs, oldest first
//   - not safe for concurrent use; callers serialize access per session
type ConversationContext struct {
	History      []Message    `json:"history" yaml:"history"`
	StudentLevel StudentLevel `json:"student_level" yaml:"student_level"`
	LastAgent    AgentID      `json:"last_agent,omitempty" yaml:"last_agent,omitempty"`
	MaxHistory   int          `json:"max_history" yaml:"max_history"`
	Updated      time.Time    `json:"updated" yaml:"updated"`
}

// NewConversationContext creates an idle context for an elementary student.
// A maxHistory below two (or odd) is normalized so whole pairs always fit.
func NewConversationContext(maxHistory int) *ConversationContext {
	return &ConversationContext{
		History:      []Message{},
		StudentLevel: LevelElementary,
		LastAgent:    NoAgent,
		MaxHistory:   normalizeCap(maxHistory),
		Updated:      time.Now(),
	}
}

func normalizeCap(n int) int {
	if n <= 0 {
		return DefaultMaxHistory
	}
	if n < 2 {
		return 2
	}
	return n - n%2
}

// AppendTurn records one completed exchange and enforces the history cap by
// evicting the oldest pairs first.
func (c *ConversationContext) AppendTurn(question, response string) {
	c.History = append(c.History, UserMessage(question), AssistantMessage(response))
	limit := normalizeCap(c.MaxHistory)
	for len(c.History) > limit {
		c.History = c.History[2:]
	}
	// Re-slice into a fresh backing array so evicted messages can be collected.
	c.History = append([]Message(nil), c.History...)
	c.Updated = time.Now()
}

// Reset clears history and the last agent while preserving the student level.
func (c *ConversationContext) Reset() {
	c.History = []Message{}
	c.LastAgent = NoAgent
	c.Updated = time.Now()
}

// Turns returns the number of complete exchanges held in history.
func (c *ConversationContext) Turns() int { return len(c.History) / 2 }

// Idle reports whether the context holds no exchanges yet.
func (c *ConversationContext) Idle() bool { return len(c.History) == 0 }

// Tail returns a copy of the trailing n messages (all when n <= 0 or n
// exceeds the history length).
func (c *ConversationContext) Tail(n int) []Message {
	if c == nil {
		return nil
	}
	start := 0
	if n > 0 && n < len(c.History) {
		start = len(c.History) - n
	}
	out := make([]Message, len(c.History)-start)
	copy(out, c.History[start:])
	return out
}

// Clone returns a deep copy safe for independent mutation.
func (c *ConversationContext) Clone() *ConversationContext {
	clone := *c
	clone.History = make([]Message, len(c.History))
	copy(clone.History, c.History)
	return &clone
}

// ContextStore persists conversation contexts keyed by session id.
// Implementations hand out copies so sessions never share mutable state.
type ContextStore interface {
	Get(sessionID string) (*ConversationContext, error)
	Save(sessionID string, conv *ConversationContext) error
	Delete(sessionID string) error
}

// ContextPeeker is implemented by stores that can read a session without
// creating it. Peek of an unknown session returns an idle context that is
// not stored.
type ContextPeeker interface {
	Peek(sessionID string) (*ConversationContext, error)
}
