package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studybuddy/tutormesh/core"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "數學專家 - 處理計算和數學概念", Describe(core.AgentMath))
	assert.Equal(t, "陪伴專家 - 提供情緒支持和鼓勵", Describe(core.AgentCompanion))
	assert.Equal(t, UnknownAgentDescription, Describe("history_tutor"))
	assert.Equal(t, UnknownAgentDescription, Describe(core.NoAgent))
}

func TestQuestionType(t *testing.T) {
	tests := map[string]string{
		"3 + 5 等於多少？":  QuestionMath,
		"天空為什麼是藍色的？":   QuestionConcept,
		"幫我造句":         QuestionLanguage,
		"有什麼好的記憶方法":    QuestionStudy,
		"我的答案對不對":      QuestionAssessment,
		"你好":           QuestionGeneral,
		"":             QuestionGeneral,
	}
	for q, want := range tests {
		assert.Equal(t, want, QuestionType(q), q)
	}
}
