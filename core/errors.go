package core

import (
	"errors"
	"fmt"
)

// Sentinel errors of the degradation taxonomy. None of them ever crosses the
// public routing or orchestration boundary; they annotate decisions and logs.
var (
	// ErrClassificationFormat marks a malformed classifier reply.
	ErrClassificationFormat = errors.New("classification format error")
	// ErrUnknownAgent marks a classifier reply naming an agent outside the set.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrBackendUnavailable marks a failed generative backend call.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrSynthesis marks a failed multi-agent fusion call.
	ErrSynthesis = errors.New("synthesis failed")
)

// Error annotates a taxonomy sentinel with the failing operation and cause.
type Error struct {
	Kind error  // one of the sentinels above
	Op   string // e.g. "router.classify"
	Err  error  // underlying cause, may be nil
}

// NewError builds an *Error.
func NewError(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
