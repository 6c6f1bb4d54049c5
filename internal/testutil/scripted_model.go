package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/studybuddy/tutormesh/model"
)

// ErrScriptExhausted is returned once every scripted step was consumed.
var ErrScriptExhausted = errors.New("testutil: script exhausted")

// Step is one scripted backend outcome.
type Step struct {
	Text  string
	Err   error
	Panic any
}

// Reply returns a step answering with text.
func Reply(text string) Step { return Step{Text: text} }

// Fail returns a step failing with err.
func Fail(err error) Step { return Step{Err: err} }

// ScriptedModel answers successive Generate calls with the scripted steps in
// order and records every request. It is safe for concurrent use.
type ScriptedModel struct {
	mu       sync.Mutex
	steps    []Step
	requests []model.Request
}

var _ model.Model = (*ScriptedModel)(nil)

// NewScriptedModel creates a model that plays steps in order.
func NewScriptedModel(steps ...Step) *ScriptedModel {
	return &ScriptedModel{steps: steps}
}

// Generate implements model.Model.
func (m *ScriptedModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	var (
		step Step
		ok   bool
	)
	if len(m.steps) > 0 {
		step, m.steps, ok = m.steps[0], m.steps[1:], true
	}
	m.mu.Unlock()

	if ok && step.Panic != nil {
		panic(step.Panic)
	}

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	go func() {
		defer close(respCh)
		defer close(errCh)

		switch {
		case ctx.Err() != nil:
			errCh <- ctx.Err()
		case !ok:
			errCh <- ErrScriptExhausted
		case step.Err != nil:
			errCh <- step.Err
		default:
			respCh <- model.Response{ID: model.NewResponseID(), Text: step.Text, FinishReason: "stop"}
		}
	}()
	return respCh, errCh
}

// Info implements model.Model.
func (m *ScriptedModel) Info() model.Info {
	return model.Info{Name: "scripted", Provider: "test"}
}

// Requests returns a copy of every request received so far.
func (m *ScriptedModel) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of Generate calls.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
