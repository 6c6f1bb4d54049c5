package router

import (
	"strconv"
	"strings"

	"github.com/studybuddy/tutormesh/core"
)

// ParseKind tags the outcome of parsing a classifier reply.
type ParseKind int

const (
	// ParseOK means the reply named a known agent with a usable confidence.
	ParseOK ParseKind = iota
	// ParseMissingDelimiter means the reply had no "|" separator.
	ParseMissingDelimiter
	// ParseBadConfidence means the text after "|" was not a number in [0,1].
	ParseBadConfidence
	// ParseUnknownAgent means the reply was well formed but named no known agent.
	ParseUnknownAgent
)

func (k ParseKind) String() string {
	switch k {
	case ParseOK:
		return "ok"
	case ParseMissingDelimiter:
		return "missing_delimiter"
	case ParseBadConfidence:
		return "bad_confidence"
	case ParseUnknownAgent:
		return "unknown_agent"
	default:
		return "unknown"
	}
}

// FormatError reports whether k is one of the malformed-reply kinds.
func (k ParseKind) FormatError() bool {
	return k == ParseMissingDelimiter || k == ParseBadConfidence
}

// Classification is a parsed classifier reply of the form "agent|confidence".
type Classification struct {
	Kind ParseKind
	// Agent is set only when Kind is ParseOK.
	Agent core.AgentID
	// RawAgent is the trimmed, lower-cased text before the delimiter.
	RawAgent string
	// Confidence is clamped to [0,1]; zero unless Kind is ParseOK or ParseUnknownAgent.
	Confidence float64
}

// ParseClassification parses reply. It never fails; problems are reported
// through Kind.
func ParseClassification(reply string) Classification {
	reply = strings.TrimSpace(reply)

	rawAgent, rawConfidence, found := strings.Cut(reply, "|")
	if !found {
		return Classification{Kind: ParseMissingDelimiter}
	}

	c := Classification{RawAgent: strings.ToLower(strings.TrimSpace(rawAgent))}

	v, err := strconv.ParseFloat(strings.TrimSpace(rawConfidence), 64)
	if err != nil {
		c.Kind = ParseBadConfidence
		return c
	}
	if !core.ValidConfidence(v) {
		c.Kind = ParseBadConfidence
		return c
	}
	c.Confidence = v

	id, ok := core.ParseAgentID(c.RawAgent)
	if !ok {
		c.Kind = ParseUnknownAgent
		return c
	}

	c.Kind = ParseOK
	c.Agent = id
	return c
}
