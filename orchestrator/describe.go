package orchestrator

import (
	"strings"

	"github.com/studybuddy/tutormesh/agent"
	"github.com/studybuddy/tutormesh/core"
)

// UnknownAgentDescription is returned by Describe for unknown ids.
const UnknownAgentDescription = "未知 Agent"

// Describe returns the one-line description of a built-in agent.
func Describe(id core.AgentID) string {
	d, ok := agent.Lookup(id)
	if !ok {
		return UnknownAgentDescription
	}
	return d.Summary()
}

// Question categories reported by QuestionType.
const (
	QuestionMath       = "數學問題"
	QuestionConcept    = "科學/概念問題"
	QuestionLanguage   = "語文問題"
	QuestionStudy      = "學習方法"
	QuestionAssessment = "答案評估"
	QuestionGeneral    = "一般對話"
)

var questionCategories = []struct {
	category string
	terms    []string
}{
	{QuestionMath, []string{"數學", "計算", "加", "減", "乘", "除", "等於"}},
	{QuestionConcept, []string{"為什麼", "怎麼", "如何", "原理"}},
	{QuestionLanguage, []string{"寫", "造句", "作文"}},
	{QuestionStudy, []string{"學習", "記憶", "方法"}},
	{QuestionAssessment, []string{"對不對", "答案", "檢查"}},
}

// QuestionType returns a coarse display category for question. It is
// independent of routing and only used for diagnostics.
func QuestionType(question string) string {
	for _, c := range questionCategories {
		for _, term := range c.terms {
			if strings.Contains(question, term) {
				return c.category
			}
		}
	}
	return QuestionGeneral
}
