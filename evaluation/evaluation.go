// Package evaluation measures routing accuracy against labeled questions.
package evaluation

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/studybuddy/tutormesh/core"
)

//go:embed cases.yaml
var defaultCasesYAML []byte

// Case is one labeled question.
type Case struct {
	Question string       `yaml:"question" json:"question"`
	Expected core.AgentID `yaml:"expected" json:"expected"`
	Tags     []string     `yaml:"tags,omitempty" json:"tags,omitempty"`
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

// Router is the routing capability under evaluation.
type Router interface {
	Route(ctx context.Context, question string) core.RoutingDecision
}

// Result is the outcome of one case.
type Result struct {
	Case     Case
	Decision core.RoutingDecision
	Correct  bool
}

// AgentStats counts cases per expected agent.
type AgentStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Accuracy returns Correct/Total, or zero for an empty bucket.
func (s AgentStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Report aggregates an evaluation run.
type Report struct {
	Total    int
	Correct  int
	Accuracy float64
	// Fallbacks counts decisions that came from keyword scoring.
	Fallbacks int
	PerAgent  map[core.AgentID]AgentStats
	Results   []Result
	Failures  []Result
}

// LoadCases decodes a YAML case file of the form {cases: [{question, expected, tags}]}.
// Every expected agent must be one of the six variants.
func LoadCases(r io.Reader) ([]Case, error) {
	var f caseFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode cases: %w", err)
	}
	for i, c := range f.Cases {
		id, ok := core.ParseAgentID(string(c.Expected))
		if !ok {
			return nil, fmt.Errorf("case %d (%q): unknown agent %q", i, c.Question, c.Expected)
		}
		f.Cases[i].Expected = id
	}
	return f.Cases, nil
}

// DefaultCases returns the built-in labeled set covering all six agents,
// long-form questions and ambiguous mixed questions.
func DefaultCases() []Case {
	cases, err := LoadCases(strings.NewReader(string(defaultCasesYAML)))
	if err != nil {
		panic(fmt.Sprintf("evaluation: embedded cases: %v", err))
	}
	return cases
}

// Run routes every case sequentially and aggregates the outcome. It stops
// early, returning the partial report, when ctx is done.
func Run(ctx context.Context, r Router, cases []Case) Report {
	report := Report{PerAgent: make(map[core.AgentID]AgentStats)}

	for _, c := range cases {
		if ctx.Err() != nil {
			break
		}

		d := r.Route(ctx, c.Question)
		res := Result{Case: c, Decision: d, Correct: d.Agent == c.Expected}

		stats := report.PerAgent[c.Expected]
		stats.Total++
		report.Total++
		if res.Correct {
			stats.Correct++
			report.Correct++
		} else {
			report.Failures = append(report.Failures, res)
		}
		if d.Source.Fallback() {
			report.Fallbacks++
		}
		report.PerAgent[c.Expected] = stats
		report.Results = append(report.Results, res)
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}
	return report
}

// Summary renders a human readable report.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total: %d  correct: %d  wrong: %d  accuracy: %.1f%%  fallbacks: %d\n",
		r.Total, r.Correct, r.Total-r.Correct, r.Accuracy*100, r.Fallbacks)

	ids := make([]core.AgentID, 0, len(r.PerAgent))
	for id := range r.PerAgent {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Priority() < ids[j].Priority() })
	for _, id := range ids {
		s := r.PerAgent[id]
		fmt.Fprintf(&b, "  %-16s %d/%d (%.0f%%)\n", id, s.Correct, s.Total, s.Accuracy()*100)
	}

	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  miss: %q expected %s got %s (%.0f%%, %s)\n",
			f.Case.Question, f.Case.Expected, f.Decision.Agent, f.Decision.Confidence*100, f.Decision.Source)
	}
	return b.String()
}
