package router

// SystemMessage is the fixed system turn of every classification request.
const SystemMessage = "You are a smart question classifier."

// DefaultPrompt is the routing instruction sent as the user turn. It must
// contain the {{.Question}} placeholder.
const DefaultPrompt = `你是一個智能路由系統。分析學生的問題，判斷應該路由到哪個專業 Agent。

可用的 Agents:
1. math_tutor - 數學相關問題（計算、幾何、代數、分數、小數等）
2. science_tutor - 科學相關問題（物理、化學、生物、地球科學、天文、自然現象等）
3. language_tutor - 語言相關問題（國語、英語、寫作、閱讀理解、造句等）
4. pedagogy - 學習方法、解題技巧、如何記憶、學習策略等
5. assessment - 檢查答案、評估理解程度、判斷對錯
6. companion - 情緒支持、鼓勵、閒聊、非學習相關問題

重要規則：
- 如果問題包含「加減乘除、分數、小數、計算、等於」→ math_tutor
- 如果問題問「為什麼會XX現象」（如天空、下雨、光）→ science_tutor
- 如果問題關於「寫作、造句、閱讀理解、成語」→ language_tutor
- 如果問「如何提升閱讀/寫作」→ language_tutor（不是 pedagogy）
- 如果問「什麼是分數/小數」→ math_tutor（不是 language_tutor）
- 如果問「怎麼學習/記憶方法」→ pedagogy
- 如果問「我的答案對嗎」→ assessment
- 如果是打招呼或情緒問題 → companion

請只回答 Agent 名稱和信心度，格式: agent_name|confidence
例如: math_tutor|0.9

學生問題: {{.Question}}`
