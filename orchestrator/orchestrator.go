package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studybuddy/tutormesh/agent"
	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/metrics"
)

// Router is the routing capability the orchestrator depends on.
// *router.Router implements it.
type Router interface {
	Route(ctx context.Context, question string) core.RoutingDecision
	Synthesize(ctx context.Context, question string, responses []core.LabeledResponse) string
}

// LabeledResponse is one specialist's answer passed to Synthesize.
type LabeledResponse = core.LabeledResponse

// Options configures an Orchestrator.
type Options struct {
	Logger  logging.Logger
	Metrics metrics.Recorder
}

// Turn is the full outcome of one question.
type Turn struct {
	Response string
	Decision core.RoutingDecision
	// Agent is the specialist that actually answered; it differs from
	// Decision.Agent only when the routed agent was not registered.
	Agent    core.AgentID
	Duration time.Duration
}

// Stats summarizes the session.
type Stats struct {
	TotalTurns      int            `json:"total_turns"`
	LastAgent       core.AgentID   `json:"last_agent,omitempty"`
	AvailableAgents []core.AgentID `json:"available_agents"`
}

// Orchestrator coordinates routing, dispatch and the shared context of one
// session.
type Orchestrator struct {
	router Router
	agents map[core.AgentID]core.Agent
	conv   *core.ConversationContext
	opts   Options
}

// New creates an Orchestrator. A nil conv starts a fresh context with the
// default history cap.
func New(r Router, agents map[core.AgentID]core.Agent, conv *core.ConversationContext, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = core.EnsureLogger(opts.Logger)
	opts.Metrics = metrics.Ensure(opts.Metrics)

	if conv == nil {
		conv = core.NewConversationContext(core.DefaultMaxHistory)
	}

	registered := make(map[core.AgentID]core.Agent, len(agents))
	for id, a := range agents {
		if a != nil {
			registered[id] = a
		}
	}

	return &Orchestrator{router: r, agents: registered, conv: conv, opts: opts}
}

// Context returns the conversation context handle owned by this orchestrator.
func (o *Orchestrator) Context() *core.ConversationContext { return o.conv }

// ProcessQuestion answers question and records the exchange.
func (o *Orchestrator) ProcessQuestion(ctx context.Context, question string) string {
	return o.Ask(ctx, question).Response
}

// Ask answers question and returns the full turn.
func (o *Orchestrator) Ask(ctx context.Context, question string) Turn {
	start := time.Now()

	decision := o.router.Route(ctx, question)
	target, specialist := o.resolve(decision.Agent)

	response := o.process(ctx, specialist, question)

	o.conv.AppendTurn(question, response)
	o.conv.LastAgent = target

	turn := Turn{
		Response: response,
		Decision: decision,
		Agent:    target,
		Duration: time.Since(start),
	}

	o.opts.Metrics.ObserveTurn(target, turn.Duration)
	o.opts.Logger.Info("orchestrator.turn.complete",
		"agent", target.String(),
		"routed", decision.Agent.String(),
		"confidence", decision.Confidence,
		"source", string(decision.Source),
		"turns", o.conv.Turns(),
		"duration", turn.Duration,
	)

	return turn
}

func (o *Orchestrator) resolve(id core.AgentID) (core.AgentID, core.Agent) {
	if a, ok := o.agents[id]; ok {
		return id, a
	}
	o.opts.Logger.Warn("orchestrator.resolve.fallback", "agent", id.String(), "fallback", core.AgentCompanion.String())
	return core.AgentCompanion, o.agents[core.AgentCompanion]
}

func (o *Orchestrator) process(ctx context.Context, a core.Agent, question string) (response string) {
	if a == nil {
		o.opts.Logger.Error("orchestrator.process.no_agent")
		return agent.ApologyMessage
	}

	defer func() {
		if r := recover(); r != nil {
			o.opts.Logger.Error("orchestrator.process.panic", "agent", a.ID().String(), "error", fmt.Sprint(r))
			response = agent.ApologyMessage
		}
	}()

	return a.Process(ctx, question, o.conv)
}

// ConsultReasoning marks turns answered by several specialists together.
const ConsultReasoning = "多位專家協作回答"

// Consult asks every listed specialist the same question concurrently,
// merges their answers with Synthesize and records one exchange. Unknown
// and duplicate ids are skipped; with no usable id it behaves like Ask.
// Turn.Agent is the first consulted specialist.
func (o *Orchestrator) Consult(ctx context.Context, question string, ids ...core.AgentID) Turn {
	targets := make([]core.AgentID, 0, len(ids))
	seen := make(map[core.AgentID]bool, len(ids))
	for _, id := range ids {
		if _, ok := o.agents[id]; ok && !seen[id] {
			seen[id] = true
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return o.Ask(ctx, question)
	}

	start := time.Now()
	responses := make([]LabeledResponse, len(targets))

	// Specialists only read the context, so they may share it while the
	// group runs; it is mutated after Wait.
	var g errgroup.Group
	for i, id := range targets {
		g.Go(func() error {
			responses[i] = LabeledResponse{Agent: id, Response: o.process(ctx, o.agents[id], question)}
			return nil
		})
	}
	g.Wait()

	response := o.Synthesize(ctx, question, responses)

	o.conv.AppendTurn(question, response)
	o.conv.LastAgent = targets[0]

	turn := Turn{
		Response: response,
		Decision: core.RoutingDecision{
			Agent:      targets[0],
			Confidence: 1,
			Reasoning:  ConsultReasoning,
		},
		Agent:    targets[0],
		Duration: time.Since(start),
	}

	o.opts.Metrics.ObserveTurn(targets[0], turn.Duration)
	o.opts.Logger.Info("orchestrator.consult.complete",
		"agents", targets,
		"turns", o.conv.Turns(),
		"duration", turn.Duration,
	)

	return turn
}

// ResetContext clears history and the last agent; the student level stays.
func (o *Orchestrator) ResetContext() {
	o.conv.Reset()
	o.opts.Logger.Info("orchestrator.context.reset")
}

// SetStudentLevel changes the level used by specialists from the next turn.
func (o *Orchestrator) SetStudentLevel(level core.StudentLevel) {
	o.conv.StudentLevel = level
}

// Stats returns turn count, last agent and registered agents in priority order.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		TotalTurns:      o.conv.Turns(),
		LastAgent:       o.conv.LastAgent,
		AvailableAgents: o.AvailableAgents(),
	}
}

// AvailableAgents lists registered agents in core.AllAgents order.
func (o *Orchestrator) AvailableAgents() []core.AgentID {
	out := make([]core.AgentID, 0, len(o.agents))
	for _, id := range core.AllAgents {
		if _, ok := o.agents[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Synthesize merges several labeled answers into one; see router.Synthesize
// for the fallback rules.
func (o *Orchestrator) Synthesize(ctx context.Context, question string, responses []LabeledResponse) string {
	return o.router.Synthesize(ctx, question, responses)
}

// AgentInfo returns the system prompt of a registered agent.
func (o *Orchestrator) AgentInfo(id core.AgentID) (string, bool) {
	a, ok := o.agents[id]
	if !ok {
		return "", false
	}
	return a.SystemPrompt(), true
}
