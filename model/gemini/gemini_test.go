package gemini

import (
	"testing"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var _ model.Model = (*Model)(nil)

func TestConvertMessages(t *testing.T) {
	contents, system := convertMessages([]core.Message{
		core.SystemMessage("a"),
		core.SystemMessage("b"),
		core.UserMessage("你好"),
		core.AssistantMessage("嗨"),
	})

	assert.Equal(t, "a\n\nb", system)
	require.Len(t, contents, 2)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, "嗨", contents[1].Parts[0].Text)
}

func TestFinishReason(t *testing.T) {
	assert.Equal(t, "stop", finishReason(&genai.GenerateContentResponse{}))
	assert.Equal(t, "length", finishReason(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}))
	assert.Equal(t, "safety", finishReason(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}))
}

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel()
	assert.Equal(t, model.Info{Name: DefaultModel, Provider: "gemini"}, m.Info())
}
