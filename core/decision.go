package core

// DecisionSource records which path of the router produced a decision.
type DecisionSource string

const (
	// SourceClassifier means the backend classifier's answer was accepted.
	SourceClassifier DecisionSource = "classifier"
	// SourceKeywordFormat means the classifier reply was malformed.
	SourceKeywordFormat DecisionSource = "keyword_format"
	// SourceKeywordUnknownAgent means the classifier named an unknown agent.
	SourceKeywordUnknownAgent DecisionSource = "keyword_unknown_agent"
	// SourceKeywordBackendError means the classifier call failed.
	SourceKeywordBackendError DecisionSource = "keyword_backend_error"
)

// Fallback reports whether the decision came from keyword scoring.
func (s DecisionSource) Fallback() bool { return s != SourceClassifier }

// RoutingDecision is the immutable outcome of classifying one question.
type RoutingDecision struct {
	Agent              AgentID        `json:"agent"`
	Confidence         float64        `json:"confidence"`
	MatchedKeywords    []string       `json:"matched_keywords"`
	Reasoning          string         `json:"reasoning"`
	FallbackSuggestion AgentID        `json:"fallback_suggestion"`
	PrimarySuggestion  string         `json:"primary_suggestion,omitempty"`
	Source             DecisionSource `json:"source"`
	// Err explains why a fallback was taken. Diagnostic only.
	Err error `json:"-"`
}

// ValidConfidence reports whether v lies in [0,1]. NaN never does.
func ValidConfidence(v float64) bool {
	return v >= 0 && v <= 1
}

// LabeledResponse is one specialist's answer, used as synthesis input.
type LabeledResponse struct {
	Agent    AgentID `json:"agent"`
	Response string  `json:"response"`
}
