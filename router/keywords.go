package router

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/studybuddy/tutormesh/core"
)

// weighted is one keyword of a scoring table. Domain-specific terms weigh 3,
// supporting terms 2 and generic interrogatives 1.
type weighted struct {
	keyword string
	weight  int
}

// scoringTables holds the weighted keywords per agent. Several tokens appear
// in more than one table on purpose; ties are broken by core.AllAgents order.
var scoringTables = map[core.AgentID][]weighted{
	core.AgentMath: {
		{"數學", 3}, {"計算", 3}, {"加", 2}, {"減", 2}, {"乘", 2}, {"除", 2},
		{"幾何", 3}, {"代數", 3}, {"方程", 3}, {"分數", 3}, {"小數", 3},
		{"等於", 2}, {"多少", 1}, {"幾個", 1}, {"數字", 2}, {"算", 2},
	},
	core.AgentScience: {
		{"科學", 3}, {"物理", 3}, {"化學", 3}, {"生物", 3}, {"實驗", 3},
		{"為什麼", 2}, {"怎麼", 2}, {"原理", 3}, {"現象", 3},
		{"光", 2}, {"聲音", 2}, {"能量", 2}, {"力", 2},
		{"天空", 3}, {"藍色", 2}, {"月亮", 2}, {"太陽", 2},
		{"下雨", 3}, {"雲", 2}, {"風", 2}, {"水", 1},
		{"植物", 2}, {"動物", 2}, {"細胞", 3},
		{"光合作用", 3}, {"呼吸", 2}, {"消化", 2},
	},
	core.AgentLanguage: {
		{"寫作", 3}, {"造句", 3}, {"語詞", 3}, {"成語", 3},
		{"作文", 3}, {"閱讀", 3}, {"字", 2}, {"詞", 2},
		{"句", 2}, {"段落", 3}, {"文章", 3}, {"理解", 2},
		{"文法", 3}, {"標點", 3}, {"修辭", 3},
	},
	core.AgentPedagogy: {
		{"怎麼學", 3}, {"如何學", 3}, {"學習方法", 3}, {"記憶", 3},
		{"技巧", 2}, {"不會", 2}, {"專注", 2}, {"複習", 2},
		{"準備", 2}, {"筆記", 3},
	},
	core.AgentAssessment: {
		{"對不對", 3}, {"答案", 3}, {"檢查", 3}, {"對嗎", 3},
		{"正確", 2}, {"錯", 2}, {"評分", 3},
	},
	core.AgentCompanion: {
		{"心情", 3}, {"難過", 3}, {"開心", 3}, {"謝謝", 3},
		{"你好", 3}, {"再見", 3}, {"累", 2}, {"困", 2},
	},
}

// matchLists are the broader, unweighted vocabularies reported as matched
// keywords. They only inform callers and never affect scoring.
var matchLists = map[core.AgentID][]string{
	core.AgentMath: {
		"數學", "計算", "加", "減", "乘", "除", "幾何", "代數",
		"方程", "分數", "小數", "等於", "多少", "幾個", "數字",
		"算", "通分", "平分", "糖果", "元", "錢",
	},
	core.AgentScience: {
		"科學", "物理", "化學", "生物", "實驗", "為什麼", "怎麼",
		"原理", "現象", "光", "聲音", "能量", "力", "天空", "藍色",
		"月亮", "太陽", "下雨", "雲", "風", "水", "植物", "動物",
		"細胞", "光合作用", "呼吸", "消化", "恐龍", "隕石", "滅絕",
		"氧氣", "二氧化碳", "空氣", "雪", "冬天",
	},
	core.AgentLanguage: {
		"寫作", "造句", "語詞", "成語", "作文", "閱讀", "字", "詞",
		"句", "段落", "文章", "理解", "文法", "標點", "修辭",
		"描寫", "故事", "比喻", "擬人", "生動",
	},
	core.AgentPedagogy: {
		"怎麼學", "如何學", "學習方法", "記憶", "技巧", "不會",
		"專注", "複習", "準備", "筆記", "緊張", "考試", "背",
		"時間", "安排", "讀書",
	},
	core.AgentAssessment: {
		"對不對", "答案", "檢查", "對嗎", "正確", "錯", "評分",
		"誰是對的", "幫我看看", "有問題",
	},
	core.AgentCompanion: {
		"心情", "難過", "開心", "謝謝", "你好", "再見", "累",
		"困", "好笨", "不想", "罵我", "厲害", "休息",
	},
}

var (
	improvementTerms = []string{"提升", "提高", "改善"}
	languageDomain   = []string{"閱讀", "寫作"}
	mathDomain       = []string{"數學", "計算"}
	phenomenonTerms  = []string{"天空", "月亮", "太陽", "星星", "雨", "雪", "雲"}
)

const (
	whyTerm = "為什麼"
	// shortQuestionRunes is the length (in characters) below which a
	// why-question about a natural phenomenon is boosted toward science.
	shortQuestionRunes = 15
	improvementBoost   = 2
	genericStudyBoost  = 1
	phenomenonBoost    = 3
)

// Scores is the per-agent keyword score vector of one question.
type Scores map[core.AgentID]int

// Best returns the winning agent: the highest score, ties broken by
// core.AllAgents order, companion when every score is zero.
func (s Scores) Best() core.AgentID {
	best, bestScore := core.AgentCompanion, 0
	for _, id := range core.AllAgents {
		if s[id] > bestScore {
			best, bestScore = id, s[id]
		}
	}
	return best
}

// Total returns the sum of all scores.
func (s Scores) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Score computes the weighted keyword score of every agent for question.
// It is pure: identical text always yields an identical vector.
func Score(question string) Scores {
	scores := make(Scores, len(core.AllAgents))
	for _, id := range core.AllAgents {
		scores[id] = 0
		for _, kw := range scoringTables[id] {
			if strings.Contains(question, kw.keyword) {
				scores[id] += kw.weight
			}
		}
	}

	if containsAny(question, improvementTerms) {
		switch {
		case containsAny(question, languageDomain):
			scores[core.AgentLanguage] += improvementBoost
		case containsAny(question, mathDomain):
			scores[core.AgentMath] += improvementBoost
		default:
			scores[core.AgentPedagogy] += genericStudyBoost
		}
	}

	if strings.Contains(question, whyTerm) &&
		utf8.RuneCountInString(question) < shortQuestionRunes &&
		containsAny(question, phenomenonTerms) {
		scores[core.AgentScience] += phenomenonBoost
	}

	return scores
}

// KeywordFallback returns the agent chosen by keyword scoring alone.
func KeywordFallback(question string) core.AgentID {
	return Score(question).Best()
}

// MatchedKeywords returns the deduplicated, sorted vocabulary terms found in
// question across all agents.
func MatchedKeywords(question string) []string {
	seen := map[string]struct{}{}
	for _, id := range core.AllAgents {
		for _, kw := range matchLists[id] {
			if strings.Contains(question, kw) {
				seen[kw] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for kw := range seen {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
