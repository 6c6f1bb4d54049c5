// Package core provides the foundational domain types and interfaces shared by
// every tutormesh component. It defines:
//
//   - AgentID, the closed set of specialist identifiers and their priority order
//   - Message and Role, the role-tagged units exchanged with generative backends
//   - RoutingDecision, the immutable outcome of classifying one question
//   - ConversationContext, the bounded per-session history
//   - Agent and ContextStore, the small interfaces concrete packages implement
//   - the error taxonomy used for diagnostics when a component degrades
//
// Implementation concerns (model providers, routing heuristics, persistence)
// live in their own packages so this package stays free of vendor SDKs.
package core
