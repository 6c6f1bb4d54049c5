// Package router classifies a student question and selects the specialist
// that should answer it.
//
// Routing has two stages. Keyword scoring (Score, KeywordFallback) is pure
// and always available. The primary classifier asks a generative backend for
// an "agent|confidence" reply; whenever that reply is missing, malformed or
// names an unknown agent, the keyword result is used instead. Route therefore
// never fails and never returns an agent outside core.AllAgents.
package router
