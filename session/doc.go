// Package session houses concrete implementations of core.ContextStore.
// The interface itself (and ConversationContext) live in the core package so
// higher level packages depend only on the contract.
//
// Add persistent backends in sub-packages without changing calling code;
// only the wiring layer decides which implementation to instantiate.
package session
