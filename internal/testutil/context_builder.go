package testutil

import (
	"github.com/studybuddy/tutormesh/core"
)

// ContextBuilder helps construct conversation contexts with fluent chaining.
// Example:
//
//	conv := NewContextBuilder().Level(core.LevelAdvanced).Turn("q1", "a1").Build()
type ContextBuilder struct {
	maxHistory int
	level      core.StudentLevel
	lastAgent  core.AgentID
	turns      [][2]string
}

// NewContextBuilder creates a builder with the default history cap.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{maxHistory: core.DefaultMaxHistory, level: core.LevelElementary}
}

// MaxHistory sets the history cap (chainable).
func (b *ContextBuilder) MaxHistory(n int) *ContextBuilder { b.maxHistory = n; return b }

// Level sets the student level (chainable).
func (b *ContextBuilder) Level(l core.StudentLevel) *ContextBuilder { b.level = l; return b }

// LastAgent sets the agent that answered last (chainable).
func (b *ContextBuilder) LastAgent(id core.AgentID) *ContextBuilder { b.lastAgent = id; return b }

// Turn appends one question/answer exchange (chainable).
func (b *ContextBuilder) Turn(question, answer string) *ContextBuilder {
	b.turns = append(b.turns, [2]string{question, answer})
	return b
}

// Build returns the context. Turns are applied through AppendTurn so the
// history cap holds.
func (b *ContextBuilder) Build() *core.ConversationContext {
	conv := core.NewConversationContext(b.maxHistory)
	conv.StudentLevel = b.level
	for _, t := range b.turns {
		conv.AppendTurn(t[0], t[1])
	}
	conv.LastAgent = b.lastAgent
	return conv
}
