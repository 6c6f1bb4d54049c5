package core

import "github.com/studybuddy/tutormesh/logging"

// EnsureLogger returns l, or a NoOpLogger when l is nil, so components can log
// unconditionally.
func EnsureLogger(l logging.Logger) logging.Logger {
	if l == nil {
		return logging.NoOpLogger{}
	}
	return l
}
