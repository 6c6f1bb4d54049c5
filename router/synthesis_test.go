package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/internal/testutil"
)

func TestSynthesize_Empty(t *testing.T) {
	backend := testutil.NewScriptedModel()
	assert.Equal(t, "", New(backend).Synthesize(context.Background(), "q", nil))
	assert.Zero(t, backend.Calls())
}

func TestSynthesize_SingleResponseUnchanged(t *testing.T) {
	backend := testutil.NewScriptedModel()
	got := New(backend).Synthesize(context.Background(), "q", []core.LabeledResponse{
		{Agent: core.AgentMath, Response: "A"},
	})

	assert.Equal(t, "A", got)
	assert.Zero(t, backend.Calls())
}

func TestSynthesize_Merges(t *testing.T) {
	backend := testutil.NewScriptedModel(testutil.Reply("merged"))
	responses := []core.LabeledResponse{
		{Agent: core.AgentMath, Response: "A"},
		{Agent: core.AgentScience, Response: "B"},
	}

	got := New(backend).Synthesize(context.Background(), "彩虹怎麼來的", responses)

	assert.Equal(t, "merged", got)
	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Messages, 1)
	prompt := reqs[0].Messages[0].Content
	assert.Equal(t, core.RoleUser, reqs[0].Messages[0].Role)
	assert.Contains(t, prompt, "學生問題: 彩虹怎麼來的")
	assert.Contains(t, prompt, "【math_tutor】: A")
	assert.Contains(t, prompt, "【science_tutor】: B")
	assert.Contains(t, prompt, "5-12 歲")
}

func TestSynthesize_FailureReturnsFirst(t *testing.T) {
	responses := []core.LabeledResponse{
		{Agent: core.AgentMath, Response: "A"},
		{Agent: core.AgentScience, Response: "B"},
	}

	for _, step := range []testutil.Step{testutil.Fail(errors.New("down")), testutil.Reply("")} {
		got := New(testutil.NewScriptedModel(step)).Synthesize(context.Background(), "q", responses)
		assert.Equal(t, "A", got)
	}
}
