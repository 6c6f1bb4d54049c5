package router

import (
	"context"
	"fmt"
	"time"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/internal/util"
	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/metrics"
	"github.com/studybuddy/tutormesh/model"
)

const (
	reasoningClassifier = "LLM 分析 + 關鍵字匹配"
	reasoningFormat     = "LLM 回應格式錯誤，使用關鍵字匹配"
	reasoningUnknown    = "LLM 建議無效 Agent，使用關鍵字匹配"
	reasoningBackend    = "後備路由（關鍵字匹配）"
)

// Options configures a Router.
type Options struct {
	// Model overrides the backend's default model for classification calls.
	Model string
	// Prompt is the routing instruction template; it must reference {{.Question}}.
	Prompt string
	// FormatErrorConfidence is reported when the classifier reply is malformed.
	FormatErrorConfidence float64
	// FallbackConfidence is reported for unknown agents and backend failures.
	FallbackConfidence float64
	Logger             logging.Logger
	Metrics            metrics.Recorder
}

// Router decides which specialist handles a question. It holds no mutable
// state and is safe for concurrent use.
type Router struct {
	backend model.Model
	opts    Options
}

// New creates a Router classifying with backend.
func New(backend model.Model, optFns ...func(o *Options)) *Router {
	opts := Options{
		Prompt:                DefaultPrompt,
		FormatErrorConfidence: 0.6,
		FallbackConfidence:    0.5,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = core.EnsureLogger(opts.Logger)
	opts.Metrics = metrics.Ensure(opts.Metrics)

	return &Router{backend: backend, opts: opts}
}

// Route classifies question. It always returns a decision naming one of the
// six agents; backend problems only change Source, Confidence and Err.
func (r *Router) Route(ctx context.Context, question string) (decision core.RoutingDecision) {
	fallback := KeywordFallback(question)
	keywords := MatchedKeywords(question)

	defer func() {
		if rec := recover(); rec != nil {
			decision = r.fallbackDecision(fallback, keywords, "", core.SourceKeywordBackendError,
				core.NewError(core.ErrBackendUnavailable, "router.route", fmt.Errorf("panic: %v", rec)))
		}
		r.opts.Metrics.ObserveRouting(decision.Agent, decision.Source)
		r.opts.Logger.Debug("router.route.decided",
			"agent", decision.Agent.String(),
			"confidence", decision.Confidence,
			"source", string(decision.Source),
			"keywords", decision.MatchedKeywords,
		)
	}()

	reply, err := r.classify(ctx, question)
	if err != nil {
		r.opts.Logger.Warn("router.classify.fallback", "reason", "backend", "fallback", fallback.String(), "error", err)
		return r.fallbackDecision(fallback, keywords, "", core.SourceKeywordBackendError, err)
	}

	c := ParseClassification(reply)
	switch {
	case c.Kind.FormatError():
		r.opts.Logger.Warn("router.classify.fallback", "reason", c.Kind.String(), "reply", reply, "fallback", fallback.String())
		return r.fallbackDecision(fallback, keywords, c.RawAgent, core.SourceKeywordFormat,
			core.NewError(core.ErrClassificationFormat, "router.parse", fmt.Errorf("reply %q: %s", reply, c.Kind)))
	case c.Kind == ParseUnknownAgent:
		r.opts.Logger.Warn("router.classify.fallback", "reason", c.Kind.String(), "agent", c.RawAgent, "fallback", fallback.String())
		return r.fallbackDecision(fallback, keywords, c.RawAgent, core.SourceKeywordUnknownAgent,
			core.NewError(core.ErrUnknownAgent, "router.parse", fmt.Errorf("agent %q", c.RawAgent)))
	}

	return core.RoutingDecision{
		Agent:              c.Agent,
		Confidence:         c.Confidence,
		MatchedKeywords:    keywords,
		Reasoning:          reasoningClassifier,
		FallbackSuggestion: fallback,
		PrimarySuggestion:  c.RawAgent,
		Source:             core.SourceClassifier,
	}
}

func (r *Router) classify(ctx context.Context, question string) (string, error) {
	prompt, err := util.RenderTemplate(r.opts.Prompt, map[string]any{"Question": question})
	if err != nil {
		return "", core.NewError(core.ErrBackendUnavailable, "router.prompt", err)
	}

	req := model.Request{
		Model: r.opts.Model,
		Messages: []core.Message{
			core.SystemMessage(SystemMessage),
			core.UserMessage(prompt),
		},
	}

	start := time.Now()
	reply, err := model.Complete(ctx, r.backend, req)
	r.opts.Metrics.ObserveBackendCall("router.classify", time.Since(start), err)
	return reply, err
}

func (r *Router) fallbackDecision(fallback core.AgentID, keywords []string, raw string, source core.DecisionSource, err error) core.RoutingDecision {
	confidence, reasoning := r.opts.FallbackConfidence, reasoningBackend
	switch source {
	case core.SourceKeywordFormat:
		confidence, reasoning = r.opts.FormatErrorConfidence, reasoningFormat
	case core.SourceKeywordUnknownAgent:
		reasoning = reasoningUnknown
	}
	return core.RoutingDecision{
		Agent:              fallback,
		Confidence:         confidence,
		MatchedKeywords:    keywords,
		Reasoning:          reasoning,
		FallbackSuggestion: fallback,
		PrimarySuggestion:  raw,
		Source:             source,
		Err:                err,
	}
}
