// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with generative backends inside tutormesh.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Convert every backend failure into core.ErrBackendUnavailable at the
//     edge (Complete) so callers can degrade instead of crash
//   - Offer resilience decorators (WithTimeout, WithRetry, WithRateLimit)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Ollama, Gemini) implement the Model interface
// from this package so higher layers (router, agents) remain decoupled from
// vendor SDKs.
package model
