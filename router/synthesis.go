package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/model"
)

// SynthesisPrompt builds the fusion request listing every labeled response.
func SynthesisPrompt(question string, responses []core.LabeledResponse) string {
	var b strings.Builder
	b.WriteString("整合以下專家的回答，給學生一個清楚、完整的答案。\n\n")
	fmt.Fprintf(&b, "學生問題: %s\n\n專家回答:\n", question)
	for _, r := range responses {
		fmt.Fprintf(&b, "\n【%s】: %s\n", r.Agent, r.Response)
	}
	b.WriteString("\n請整合以上回答，用適合 5-12 歲小朋友的語言回答:")
	return b.String()
}

// Synthesize merges several specialist answers into one. No responses yield
// "", a single response is returned unchanged, and a failed or empty fusion
// call yields the first response.
func (r *Router) Synthesize(ctx context.Context, question string, responses []core.LabeledResponse) string {
	switch len(responses) {
	case 0:
		return ""
	case 1:
		return responses[0].Response
	}

	req := model.Request{
		Model:    r.opts.Model,
		Messages: []core.Message{core.UserMessage(SynthesisPrompt(question, responses))},
	}

	start := time.Now()
	merged, err := model.Complete(ctx, r.backend, req)
	r.opts.Metrics.ObserveBackendCall("router.synthesize", time.Since(start), err)
	if err != nil {
		err = core.NewError(core.ErrSynthesis, "router.synthesize", err)
		r.opts.Logger.Warn("router.synthesize.fallback", "responses", len(responses), "error", err)
		return responses[0].Response
	}
	return merged
}
