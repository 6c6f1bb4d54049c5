package session

import (
	"errors"
	"sync"
	"time"

	"github.com/studybuddy/tutormesh/core"
)

// ErrEmptySessionID is returned for operations without a session id.
var ErrEmptySessionID = errors.New("session: empty session id")

// InMemoryStore is a volatile ContextStore keeping conversation contexts in a
// process local map. It is safe for concurrent access. Contexts are cloned on
// the way in and out so callers never share mutable state with the store or
// with each other.
type InMemoryStore struct {
	mu         sync.RWMutex
	maxHistory int
	level      core.StudentLevel
	contexts   map[string]*core.ConversationContext
}

// StoreOptions configures contexts created lazily by Get.
type StoreOptions struct {
	// StudentLevel of new sessions. Defaults to core.LevelElementary.
	StudentLevel core.StudentLevel
}

var (
	_ core.ContextStore  = (*InMemoryStore)(nil)
	_ core.ContextPeeker = (*InMemoryStore)(nil)
)

// NewInMemoryStore constructs an empty store. Contexts created lazily by Get
// use maxHistory as their history cap (core.DefaultMaxHistory when <= 0).
func NewInMemoryStore(maxHistory int, optFns ...func(o *StoreOptions)) *InMemoryStore {
	opts := StoreOptions{StudentLevel: core.LevelElementary}
	for _, fn := range optFns {
		fn(&opts)
	}
	if !opts.StudentLevel.Valid() {
		opts.StudentLevel = core.LevelElementary
	}
	return &InMemoryStore{
		maxHistory: maxHistory,
		level:      opts.StudentLevel,
		contexts:   make(map[string]*core.ConversationContext),
	}
}

// Get returns a clone of the stored context, creating an idle one lazily.
func (s *InMemoryStore) Get(sessionID string) (*core.ConversationContext, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.RLock()
	conv, ok := s.contexts[sessionID]
	s.mu.RUnlock()
	if ok {
		return conv.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok = s.contexts[sessionID]; !ok {
		conv = s.fresh()
		s.contexts[sessionID] = conv
	}
	return conv.Clone(), nil
}

// Peek is Get without the lazy creation: an unknown session yields an idle
// context that is not stored.
func (s *InMemoryStore) Peek(sessionID string) (*core.ConversationContext, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if conv, ok := s.contexts[sessionID]; ok {
		return conv.Clone(), nil
	}
	return s.fresh(), nil
}

func (s *InMemoryStore) fresh() *core.ConversationContext {
	conv := core.NewConversationContext(s.maxHistory)
	conv.StudentLevel = s.level
	return conv
}

// Save stores a clone of conv.
func (s *InMemoryStore) Save(sessionID string, conv *core.ConversationContext) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if conv == nil {
		return errors.New("session: nil context")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[sessionID] = conv.Clone()
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sessionID)
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

// Prune deletes sessions not updated since cutoff and returns how many were
// removed.
func (s *InMemoryStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, conv := range s.contexts {
		if conv.Updated.Before(cutoff) {
			delete(s.contexts, id)
			n++
		}
	}
	return n
}
