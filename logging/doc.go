// Package logging provides a minimal logging interface and adapters for tutormesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the router, agents and orchestrator use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping a caller supplied *slog.Logger
//   - TutorLogger with component/session context and routing helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	mesh := tutormesh.New(model, func(o *tutormesh.Options) { o.Logger = logger })
//
// The interface stays minimal to avoid vendor lock-in while supporting
// structured logging where available.
package logging
