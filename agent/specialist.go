package agent

import (
	"context"
	"time"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/metrics"
	"github.com/studybuddy/tutormesh/model"
)

// ApologyMessage is returned whenever a specialist cannot produce a reply.
const ApologyMessage = "抱歉，我現在無法回答這個問題。"

// SpecialistOptions configures a Specialist.
//
// Use functional options with NewSpecialist or NewSet to override defaults.
type SpecialistOptions struct {
	// Model overrides the backend's default model.
	Model       string
	Temperature *float64
	// HistoryWindow limits how many trailing history messages are sent;
	// zero sends all retained history.
	HistoryWindow int
	// Instruction replaces the persona instruction when set.
	Instruction *Instruction
	Logger      logging.Logger
	Metrics     metrics.Recorder
}

// Specialist answers questions in one domain using a persona prompt.
// It holds no per-call state and is safe for concurrent use.
type Specialist struct {
	desc        Descriptor
	backend     model.Model
	instruction Instruction
	opts        SpecialistOptions
}

var _ core.Agent = (*Specialist)(nil)

// NewSpecialist creates a specialist for d backed by backend.
func NewSpecialist(d Descriptor, backend model.Model, optFns ...func(o *SpecialistOptions)) *Specialist {
	opts := SpecialistOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = core.EnsureLogger(opts.Logger)
	opts.Metrics = metrics.Ensure(opts.Metrics)

	instruction := PersonaInstruction(d)
	if opts.Instruction != nil {
		instruction = *opts.Instruction
	}

	return &Specialist{
		desc:        d,
		backend:     backend,
		instruction: instruction,
		opts:        opts,
	}
}

// Set maps each variant to its specialist.
type Set map[core.AgentID]*Specialist

// NewSet creates one specialist per built-in descriptor, all sharing backend
// and options.
func NewSet(backend model.Model, optFns ...func(o *SpecialistOptions)) Set {
	set := make(Set, len(builtin))
	for _, d := range Descriptors() {
		set[d.ID] = NewSpecialist(d, backend, optFns...)
	}
	return set
}

// Agents returns the set as core.Agent values.
func (s Set) Agents() map[core.AgentID]core.Agent {
	out := make(map[core.AgentID]core.Agent, len(s))
	for id, sp := range s {
		out[id] = sp
	}
	return out
}

// ID returns the variant this specialist implements.
func (s *Specialist) ID() core.AgentID { return s.desc.ID }

// Descriptor returns the configuration of this specialist.
func (s *Specialist) Descriptor() Descriptor { return s.desc }

// SystemPrompt returns the persona text for an elementary student.
func (s *Specialist) SystemPrompt() string {
	text, err := s.instruction.Resolve(nil)
	if err != nil {
		s.opts.Logger.Warn("agent.instruction.error", "agent", s.desc.ID.String(), "error", err)
		return ""
	}
	return text
}

// Process answers question. The request is the system prompt, the trailing
// history window of conv and the question as the final user turn. Any
// backend failure yields ApologyMessage.
func (s *Specialist) Process(ctx context.Context, question string, conv *core.ConversationContext) string {
	id := s.desc.ID.String()

	system, err := s.instruction.Resolve(conv)
	if err != nil {
		s.opts.Logger.Warn("agent.instruction.error", "agent", id, "error", err)
		return ApologyMessage
	}

	history := conv.Tail(s.opts.HistoryWindow)
	messages := make([]core.Message, 0, len(history)+2)
	messages = append(messages, core.SystemMessage(system))
	messages = append(messages, history...)
	messages = append(messages, core.UserMessage(question))

	req := model.Request{
		Model:       s.opts.Model,
		Messages:    messages,
		Temperature: s.opts.Temperature,
	}

	start := time.Now()
	reply, err := model.Complete(ctx, s.backend, req)
	s.opts.Metrics.ObserveBackendCall("agent.process", time.Since(start), err)
	if err != nil {
		s.opts.Logger.Warn("agent.process.failed", "agent", id, "error", err)
		return ApologyMessage
	}

	s.opts.Logger.Debug("agent.process.complete",
		"agent", id,
		"history", len(history),
		"reply_chars", len([]rune(reply)),
		"duration", time.Since(start),
	)
	return reply
}
