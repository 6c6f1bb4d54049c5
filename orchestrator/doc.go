// Package orchestrator ties a router, the specialist set and one
// conversation context together.
//
// An Orchestrator serves exactly one session. Its methods are not
// internally locked: callers serialize calls per session (the root
// tutormesh.Mesh does this). Every turn runs route, resolve, process and
// record in that order, and the context is only mutated once a reply (at
// worst the apology) exists.
package orchestrator
