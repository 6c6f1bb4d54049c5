package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/internal/testutil"
	"github.com/studybuddy/tutormesh/model"
)

// mockModel answers every Generate call with the configured text or error.
type mockModel struct{ mock.Mock }

var _ model.Model = (*mockModel)(nil)

func (m *mockModel) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)
	if err := args.Error(1); err != nil {
		errCh <- err
	} else {
		respCh <- model.Response{Text: args.String(0), FinishReason: "stop"}
	}
	close(respCh)
	close(errCh)
	return respCh, errCh
}

func (m *mockModel) Info() model.Info { return model.Info{Name: "mock", Provider: "test"} }

func TestNewSet(t *testing.T) {
	set := NewSet(model.NewMockModel("m"))

	require.Len(t, set, len(core.AllAgents))
	for _, id := range core.AllAgents {
		s, ok := set[id]
		require.True(t, ok, id)
		assert.Equal(t, id, s.ID())
		assert.NotEmpty(t, s.SystemPrompt())
		assert.NotEmpty(t, s.Descriptor().Summary())
	}
}

func TestDescriptors_Order(t *testing.T) {
	ds := Descriptors()
	require.Len(t, ds, len(core.AllAgents))
	for i, d := range ds {
		assert.Equal(t, core.AllAgents[i], d.ID)
	}

	ds[0].Title = "changed"
	assert.Equal(t, "數學專家", Descriptors()[0].Title)

	_, ok := Lookup("history_tutor")
	assert.False(t, ok)
}

func TestSpecialist_ProcessBuildsRequest(t *testing.T) {
	backend := &mockModel{}
	backend.On("Generate", mock.Anything, mock.Anything).Return("三加五等於八。", nil).Once()

	d, _ := Lookup(core.AgentMath)
	s := NewSpecialist(d, backend, func(o *SpecialistOptions) { o.Model = "llama3.2:3b" })
	conv := testutil.NewContextBuilder().Turn("q1", "a1").Turn("q2", "a2").Build()

	got := s.Process(context.Background(), "3 + 5 等於多少？", conv)

	assert.Equal(t, "三加五等於八。", got)
	backend.AssertExpectations(t)

	req := backend.Calls[0].Arguments.Get(1).(model.Request)
	assert.Equal(t, "llama3.2:3b", req.Model)
	require.Len(t, req.Messages, 6)
	assert.Equal(t, core.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, s.SystemPrompt(), req.Messages[0].Content)
	assert.Equal(t, core.UserMessage("q1"), req.Messages[1])
	assert.Equal(t, core.AssistantMessage("a2"), req.Messages[4])
	assert.Equal(t, core.UserMessage("3 + 5 等於多少？"), req.Messages[5])
}

func TestSpecialist_HistoryWindow(t *testing.T) {
	backend := testutil.NewScriptedModel(testutil.Reply("ok"))
	d, _ := Lookup(core.AgentScience)
	s := NewSpecialist(d, backend, func(o *SpecialistOptions) { o.HistoryWindow = 2 })
	conv := testutil.NewContextBuilder().Turn("q1", "a1").Turn("q2", "a2").Build()

	s.Process(context.Background(), "q3", conv)

	msgs := backend.Requests()[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, "q2", msgs[1].Content)
	assert.Equal(t, "a2", msgs[2].Content)
	assert.Equal(t, "q3", msgs[3].Content)
}

func TestSpecialist_NilAndEmptyContext(t *testing.T) {
	backend := testutil.NewScriptedModel(testutil.Reply("hi"), testutil.Reply("hi"))
	d, _ := Lookup(core.AgentCompanion)
	s := NewSpecialist(d, backend)

	assert.Equal(t, "hi", s.Process(context.Background(), "你好", nil))
	assert.Equal(t, "hi", s.Process(context.Background(), "你好", core.NewConversationContext(0)))
	for _, req := range backend.Requests() {
		assert.Len(t, req.Messages, 2)
	}
}

func TestSpecialist_LevelHintInSystemPrompt(t *testing.T) {
	backend := testutil.NewScriptedModel(testutil.Reply("ok"))
	d, _ := Lookup(core.AgentLanguage)
	s := NewSpecialist(d, backend)
	conv := testutil.NewContextBuilder().Level(core.LevelIntermediate).Build()

	s.Process(context.Background(), "什麼是成語", conv)

	assert.Contains(t, backend.Requests()[0].Messages[0].Content, levelHints[core.LevelIntermediate])
}

func TestSpecialist_ApologyOnFailure(t *testing.T) {
	tests := []struct {
		name string
		step testutil.Step
	}{
		{"backend error", testutil.Fail(errors.New("connection refused"))},
		{"empty reply", testutil.Reply("")},
		{"panic", testutil.Step{Panic: "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := Lookup(core.AgentPedagogy)
			s := NewSpecialist(d, testutil.NewScriptedModel(tt.step))

			assert.Equal(t, ApologyMessage, s.Process(context.Background(), "怎麼背九九乘法", nil))
		})
	}
}

func TestSpecialist_CustomInstruction(t *testing.T) {
	backend := testutil.NewScriptedModel(testutil.Reply("ok"))
	inst := NewInstructionFromText("custom persona")
	d, _ := Lookup(core.AgentAssessment)
	s := NewSpecialist(d, backend, func(o *SpecialistOptions) { o.Instruction = &inst })

	assert.Equal(t, "custom persona", s.SystemPrompt())
	s.Process(context.Background(), "我的答案對嗎", nil)
	assert.Equal(t, "custom persona", backend.Requests()[0].Messages[0].Content)
}

func TestSpecialist_InstructionErrorApologizes(t *testing.T) {
	backend := testutil.NewScriptedModel(testutil.Reply("ok"))
	inst := NewInstructionFromProvider(mockProvider{err: errors.New("boom")})
	d, _ := Lookup(core.AgentAssessment)
	s := NewSpecialist(d, backend, func(o *SpecialistOptions) { o.Instruction = &inst })

	assert.Equal(t, ApologyMessage, s.Process(context.Background(), "我的答案對嗎", nil))
	assert.Zero(t, backend.Calls())
	assert.Empty(t, s.SystemPrompt())
}

func TestSet_Agents(t *testing.T) {
	agents := NewSet(model.NewMockModel("m")).Agents()

	require.Len(t, agents, len(core.AllAgents))
	assert.Equal(t, core.AgentCompanion, agents[core.AgentCompanion].ID())
}
