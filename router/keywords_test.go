package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/studybuddy/tutormesh/core"
)

func TestKeywordFallback(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     core.AgentID
	}{
		{"arithmetic", "3 + 5 等於多少？", core.AgentMath},
		{"greeting", "你好", core.AgentCompanion},
		{"empty question", "", core.AgentCompanion},
		{"no keywords", "嗯嗯", core.AgentCompanion},
		{"sky color", "天空為什麼是藍色的？", core.AgentScience},
		{"improve reading", "如何提升閱讀能力", core.AgentLanguage},
		{"improve math", "怎麼提高數學成績", core.AgentMath},
		{"generic improvement", "我想改善自己", core.AgentPedagogy},
		{"answer check", "我的答案對嗎", core.AgentAssessment},
		{"idiom", "畫蛇添足這個成語是什麼意思", core.AgentLanguage},
		{"notes", "要怎麼做筆記比較好", core.AgentPedagogy},
		{"feelings", "我今天心情不好", core.AgentCompanion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordFallback(tt.question))
		})
	}
}

func TestScore_TieBreakFollowsPriorityOrder(t *testing.T) {
	// 分數 (math, 3) vs 原理 (science, 3)
	scores := Score("分數原理")
	assert.Equal(t, scores[core.AgentMath], scores[core.AgentScience])
	assert.Equal(t, core.AgentMath, scores.Best())

	// 實驗 (science, 3) vs 文章 (language, 3)
	scores = Score("實驗文章")
	assert.Equal(t, scores[core.AgentScience], scores[core.AgentLanguage])
	assert.Equal(t, core.AgentScience, scores.Best())
}

func TestScore_ShortWhyQuestionBoost(t *testing.T) {
	short := "為什麼月亮會跟著我走呢"
	long := "為什麼月亮會跟著我走呢我走到哪裡它就跟到哪裡"

	// 為什麼 (2) + 月亮 (2), plus the boost only for the short form.
	assert.Equal(t, 7, Score(short)[core.AgentScience])
	assert.Equal(t, 4, Score(long)[core.AgentScience])
}

func TestScore_ShortThresholdCountsCharacters(t *testing.T) {
	// 14 characters but 40+ bytes: still short.
	q := "為什麼下雪的時候天空是白色呢"
	assert.Less(t, len([]rune(q)), shortQuestionRunes)
	assert.Greater(t, len(q), shortQuestionRunes)

	base := 2 + 3 // 為什麼 + 天空
	assert.Equal(t, base+phenomenonBoost, Score(q)[core.AgentScience])
}

func TestScore_ImprovementBoost(t *testing.T) {
	assert.Equal(t, 3+improvementBoost, Score("如何提升閱讀能力")[core.AgentLanguage])
	assert.Equal(t, 3+improvementBoost, Score("怎麼提高數學成績")[core.AgentMath])
	assert.Equal(t, genericStudyBoost, Score("我想改善自己")[core.AgentPedagogy])
}

func TestScore_AllAgentsPresent(t *testing.T) {
	scores := Score("")
	assert.Len(t, scores, len(core.AllAgents))
	assert.Zero(t, scores.Total())
}

func TestMatchedKeywords(t *testing.T) {
	assert.Equal(t, []string{"多少", "等於"}, MatchedKeywords("3 + 5 等於多少？"))
	assert.Equal(t, []string{"平分", "糖果"}, MatchedKeywords("我有5顆糖果，平分給2個朋友"))
	assert.Equal(t, []string{"加"}, MatchedKeywords("加加加"))
	assert.Empty(t, MatchedKeywords(""))
}

func TestMatchedKeywords_BroaderThanScoring(t *testing.T) {
	// 恐龍 is informational only and never scores.
	assert.Contains(t, MatchedKeywords("恐龍"), "恐龍")
	assert.Zero(t, Score("恐龍").Total())
	assert.Equal(t, core.AgentCompanion, KeywordFallback("恐龍"))
}

var questionRunes = []rune("數學計算加減乘除為什麼天空月亮太陽雨雪雲寫作閱讀成語提升提高改善怎麼學筆記答案對嗎你好謝謝心情 abc123？")

func questionGen() *rapid.Generator[string] {
	return rapid.StringOf(rapid.SampledFrom(questionRunes))
}

func TestKeywordFallback_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		q := questionGen().Draw(rt, "question")

		scores := Score(q)
		best := KeywordFallback(q)

		if !best.Valid() {
			rt.Fatalf("invalid agent %q", best)
		}
		if scores.Total() == 0 && best != core.AgentCompanion {
			rt.Fatalf("all-zero scores must pick companion, got %q", best)
		}
		for _, id := range core.AllAgents {
			if scores[id] > scores[best] {
				rt.Fatalf("%q scored %d above winner %q (%d)", id, scores[id], best, scores[best])
			}
			if scores[id] == scores[best] && scores[id] > 0 && id.Priority() < best.Priority() {
				rt.Fatalf("tie between %q and %q not broken by priority", id, best)
			}
		}
		if KeywordFallback(q) != best {
			rt.Fatalf("scoring is not deterministic")
		}
	})
}
