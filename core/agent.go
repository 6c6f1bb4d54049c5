package core

import (
	"context"
	"strings"
)

// AgentID identifies one of the six specialist variants.
type AgentID string

const (
	// AgentMath answers arithmetic and math concept questions.
	AgentMath AgentID = "math_tutor"
	// AgentScience explains natural phenomena and science principles.
	AgentScience AgentID = "science_tutor"
	// AgentLanguage helps with reading, writing and vocabulary.
	AgentLanguage AgentID = "language_tutor"
	// AgentPedagogy teaches study methods and learning strategies.
	AgentPedagogy AgentID = "pedagogy"
	// AgentAssessment checks answers and evaluates understanding.
	AgentAssessment AgentID = "assessment"
	// AgentCompanion offers emotional support and small talk. It is the
	// catch-all variant every unresolved classification falls back to.
	AgentCompanion AgentID = "companion"

	// NoAgent is the undefined sentinel used before the first turn.
	NoAgent AgentID = ""
)

// AllAgents lists every variant in the fixed priority order. The order is
// also the tie-break order for keyword scoring.
var AllAgents = []AgentID{
	AgentMath,
	AgentScience,
	AgentLanguage,
	AgentPedagogy,
	AgentAssessment,
	AgentCompanion,
}

// String implements fmt.Stringer.
func (id AgentID) String() string { return string(id) }

// Valid reports whether id names one of the six known variants.
func (id AgentID) Valid() bool {
	for _, known := range AllAgents {
		if id == known {
			return true
		}
	}
	return false
}

// Priority returns the index of id in AllAgents, or len(AllAgents) when id
// is unknown so unknown ids always lose ties.
func (id AgentID) Priority() int {
	for i, known := range AllAgents {
		if id == known {
			return i
		}
	}
	return len(AllAgents)
}

// ParseAgentID normalizes s (trimmed, lower-cased) and reports whether it
// names a known variant.
func ParseAgentID(s string) (AgentID, bool) {
	id := AgentID(strings.ToLower(strings.TrimSpace(s)))
	return id, id.Valid()
}

// Agent is the capability shared by every specialist. Implementations hold no
// mutable per-call state and must never return a backend failure to the
// caller; Process degrades to a fixed reply instead.
type Agent interface {
	ID() AgentID
	SystemPrompt() string
	Process(ctx context.Context, question string, conv *ConversationContext) string
}
