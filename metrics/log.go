package metrics

import (
	"time"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/logging"
)

// LogRecorder writes every observation to a TutorLogger. Observations are
// logged at debug level except failed backend calls.
type LogRecorder struct {
	logger *logging.TutorLogger
}

var _ Recorder = (*LogRecorder)(nil)

// NewLogRecorder creates a LogRecorder tagging entries with component "metrics".
func NewLogRecorder(logger *logging.TutorLogger) *LogRecorder {
	return &LogRecorder{logger: logger.WithComponent("metrics")}
}

func (r *LogRecorder) ObserveRouting(agent core.AgentID, source core.DecisionSource) {
	r.logger.LogRouting(agent.String(), string(source))
}

func (r *LogRecorder) ObserveBackendCall(op string, duration time.Duration, err error) {
	r.logger.LogBackendCall(op, duration, err)
}

func (r *LogRecorder) ObserveTurn(agent core.AgentID, duration time.Duration) {
	r.logger.Debug("turn.observed", "agent", agent.String(), "duration", duration)
}

// Multi fans every observation out to several recorders. Nil recorders are
// skipped; with none left it returns Nop.
func Multi(recorders ...Recorder) Recorder {
	out := make(multi, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	}
	return out
}

type multi []Recorder

func (m multi) ObserveRouting(agent core.AgentID, source core.DecisionSource) {
	for _, r := range m {
		r.ObserveRouting(agent, source)
	}
}

func (m multi) ObserveBackendCall(op string, duration time.Duration, err error) {
	for _, r := range m {
		r.ObserveBackendCall(op, duration, err)
	}
}

func (m multi) ObserveTurn(agent core.AgentID, duration time.Duration) {
	for _, r := range m {
		r.ObserveTurn(agent, duration)
	}
}
