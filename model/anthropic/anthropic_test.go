package anthropic

import (
	"testing"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ model.Model = (*Model)(nil)

func TestBuildMessages_SplitsSystem(t *testing.T) {
	msgs := []core.Message{
		core.SystemMessage("你是一位科學老師"),
		core.UserMessage("為什麼會下雨？"),
		core.AssistantMessage("因為水蒸氣凝結。"),
		core.UserMessage(""),
		core.UserMessage("那雪呢？"),
	}

	params := buildMessages(msgs)
	require.Len(t, params, 3)
	assert.Equal(t, "user", string(params[0].Role))
	assert.Equal(t, "assistant", string(params[1].Role))

	system := extractSystem(msgs)
	require.Len(t, system, 1)
	assert.Equal(t, "你是一位科學老師", system[0].Text)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test"; o.Model = "claude-3-5-haiku-latest" })
	assert.Equal(t, model.Info{Name: "claude-3-5-haiku-latest", Provider: "anthropic"}, m.Info())
}
