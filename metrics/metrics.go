// Package metrics records routing, backend and turn metrics.
//
// Recorder is the narrow interface the router, the specialists and the
// orchestrator depend on. Nop discards everything and is the default; the
// Prometheus implementation registers its collectors on a caller-supplied
// registerer so several meshes (or tests) can coexist in one process.
package metrics

import (
	"time"

	"github.com/studybuddy/tutormesh/core"
)

// Recorder receives observations from the tutoring pipeline.
type Recorder interface {
	// ObserveRouting records one routing decision.
	ObserveRouting(agent core.AgentID, source core.DecisionSource)
	// ObserveBackendCall records one generative backend call. op names the
	// caller, e.g. "router.classify" or "agent.process".
	ObserveBackendCall(op string, duration time.Duration, err error)
	// ObserveTurn records one completed orchestrator turn.
	ObserveTurn(agent core.AgentID, duration time.Duration)
}

// Nop is a Recorder that discards all observations.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) ObserveRouting(core.AgentID, core.DecisionSource) {}
func (Nop) ObserveBackendCall(string, time.Duration, error) {}
func (Nop) ObserveTurn(core.AgentID, time.Duration) {}

// Ensure returns r, or Nop when r is nil.
func Ensure(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
