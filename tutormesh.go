// Package tutormesh provides a high-level façade over the router, the six
// specialists and the orchestrator, serving many tutoring sessions from one
// process. Most applications interact with this package by:
//  1. Creating a Mesh via New (or NewFromConfig)
//  2. Minting a session id with NewSessionID
//  3. Calling Ask for every question the child types or says
//
// Each session keeps its own ConversationContext in a core.ContextStore.
// Turns of one session are serialized; different sessions run concurrently,
// optionally bounded by MaxConcurrentTurns.
package tutormesh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/studybuddy/tutormesh/agent"
	"github.com/studybuddy/tutormesh/config"
	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/metrics"
	"github.com/studybuddy/tutormesh/model"
	"github.com/studybuddy/tutormesh/orchestrator"
	"github.com/studybuddy/tutormesh/router"
	"github.com/studybuddy/tutormesh/session"
)

// ErrEmptySessionID is returned when a session id is missing.
var ErrEmptySessionID = session.ErrEmptySessionID

// Options configures the Mesh instance.
type Options struct {
	// Store keeps one conversation context per session. Defaults to an
	// in-memory store using MaxHistory.
	Store core.ContextStore

	// MaxHistory caps messages kept per session (core.DefaultMaxHistory
	// when zero). Ignored when Store is supplied.
	MaxHistory int

	// HistoryWindow limits the trailing messages sent to a specialist;
	// zero sends all retained history.
	HistoryWindow int

	// StudentLevel of new sessions. Ignored when Store is supplied.
	StudentLevel core.StudentLevel

	// MaxConcurrentTurns limits how many turns run at once across all
	// sessions. Zero means unlimited.
	MaxConcurrentTurns int64

	// RouterOptions are passed through to router.New.
	RouterOptions []func(o *router.Options)

	Logger  logging.Logger
	Metrics metrics.Recorder
}

// Mesh is the high-level façade aggregating the router, the specialists and
// the session store. It is safe for concurrent use.
type Mesh struct {
	opts   Options
	router *router.Router
	agents map[core.AgentID]core.Agent
	sem    *semaphore.Weighted

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes the turns of one session. refs counts holders and
// waiters; the entry is dropped when it reaches zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a Mesh whose router and specialists all talk to backend.
func New(backend model.Model, optFns ...func(o *Options)) *Mesh {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Logger = core.EnsureLogger(opts.Logger)
	opts.Metrics = metrics.Ensure(opts.Metrics)
	if opts.Store == nil {
		opts.Store = session.NewInMemoryStore(opts.MaxHistory, func(o *session.StoreOptions) {
			o.StudentLevel = opts.StudentLevel
		})
	}

	r := router.New(backend, append([]func(o *router.Options){func(o *router.Options) {
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	}}, opts.RouterOptions...)...)

	set := agent.NewSet(backend, func(o *agent.SpecialistOptions) {
		o.HistoryWindow = opts.HistoryWindow
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	m := &Mesh{
		opts:   opts,
		router: r,
		agents: set.Agents(),
		locks:  make(map[string]*sessionLock),
	}
	if opts.MaxConcurrentTurns > 0 {
		m.sem = semaphore.NewWeighted(opts.MaxConcurrentTurns)
	}
	return m
}

// NewFromConfig builds the backend, logger and metrics described by cfg and
// returns a Mesh using them. At debug log level every observation is also
// logged. optFns run after the config has been applied.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	backend, err := config.NewModel(cfg)
	if err != nil {
		return nil, err
	}
	level, err := cfg.StudentLevel()
	if err != nil {
		return nil, fmt.Errorf("tutormesh: %w", err)
	}

	logger := config.NewLogger(cfg).WithComponent("tutormesh")

	var recorders []metrics.Recorder
	if cfg.Metrics.Enabled {
		recorders = append(recorders, metrics.NewPrometheusRecorder(func(o *metrics.PrometheusOptions) {
			o.Namespace = cfg.Metrics.Namespace
		}))
	}
	if logLevel, _ := logging.ParseLevel(cfg.Log.Level); logLevel == logging.LogLevelDebug {
		recorders = append(recorders, metrics.NewLogRecorder(logger))
	}
	recorder := metrics.Multi(recorders...)

	return New(backend, append([]func(o *Options){func(o *Options) {
		o.MaxHistory = cfg.Conversation.MaxHistory
		o.HistoryWindow = cfg.Conversation.HistoryWindow
		o.StudentLevel = level
		o.MaxConcurrentTurns = cfg.MaxConcurrentTurns
		o.Logger = logger
		o.Metrics = recorder
	}}, optFns...)...), nil
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string { return uuid.NewString() }

// Ask routes question to a specialist within sessionID and records the
// exchange. The only errors are a missing session id, a context that ended
// while waiting for a turn slot, and store failures; backend trouble is
// absorbed into the returned turn.
func (m *Mesh) Ask(ctx context.Context, sessionID, question string) (orchestrator.Turn, error) {
	var turn orchestrator.Turn
	err := m.withSession(ctx, sessionID, func(o *orchestrator.Orchestrator) {
		turn = o.Ask(ctx, question)
	})
	return turn, err
}

// Consult asks several specialists at once and returns their merged answer
// as a single recorded exchange.
func (m *Mesh) Consult(ctx context.Context, sessionID, question string, ids ...core.AgentID) (orchestrator.Turn, error) {
	var turn orchestrator.Turn
	err := m.withSession(ctx, sessionID, func(o *orchestrator.Orchestrator) {
		turn = o.Consult(ctx, question, ids...)
	})
	return turn, err
}

// Reset clears a session's history; its student level stays.
func (m *Mesh) Reset(sessionID string) error {
	return m.withSession(context.Background(), sessionID, func(o *orchestrator.Orchestrator) {
		o.ResetContext()
	})
}

// SetStudentLevel changes the level used for the session's next turns.
func (m *Mesh) SetStudentLevel(sessionID string, level core.StudentLevel) error {
	if !level.Valid() {
		return fmt.Errorf("tutormesh: unknown student level %q", level)
	}
	return m.withSession(context.Background(), sessionID, func(o *orchestrator.Orchestrator) {
		o.SetStudentLevel(level)
	})
}

// Stats summarizes a session without changing it. Unknown sessions report
// an idle context; stores implementing core.ContextPeeker are not asked to
// create them.
func (m *Mesh) Stats(sessionID string) (orchestrator.Stats, error) {
	unlock, err := m.lock(sessionID)
	if err != nil {
		return orchestrator.Stats{}, err
	}
	defer unlock()

	conv, err := m.peek(sessionID)
	if err != nil {
		return orchestrator.Stats{}, err
	}
	return m.orchestrator(sessionID, conv).Stats(), nil
}

// History returns a copy of the session's retained messages. Like Stats it
// does not create unknown sessions.
func (m *Mesh) History(sessionID string) ([]core.Message, error) {
	unlock, err := m.lock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	conv, err := m.peek(sessionID)
	if err != nil {
		return nil, err
	}
	return conv.Tail(0), nil
}

// Delete forgets a session entirely.
func (m *Mesh) Delete(sessionID string) error {
	unlock, err := m.lock(sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := m.opts.Store.Delete(sessionID); err != nil {
		return fmt.Errorf("tutormesh: delete session: %w", err)
	}
	return nil
}

// AgentInfo returns the system prompt of one specialist.
func (m *Mesh) AgentInfo(id core.AgentID) (string, bool) {
	a, ok := m.agents[id]
	if !ok {
		return "", false
	}
	return a.SystemPrompt(), true
}

// Router exposes the shared router, e.g. for routing evaluation.
func (m *Mesh) Router() *router.Router { return m.router }

func (m *Mesh) withSession(ctx context.Context, sessionID string, fn func(o *orchestrator.Orchestrator)) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if m.sem != nil {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("tutormesh: wait for turn slot: %w", err)
		}
		defer m.sem.Release(1)
	}

	unlock, err := m.lock(sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	conv, err := m.load(sessionID)
	if err != nil {
		return err
	}

	fn(m.orchestrator(sessionID, conv))

	if err := m.opts.Store.Save(sessionID, conv); err != nil {
		return fmt.Errorf("tutormesh: save session: %w", err)
	}
	return nil
}

// lock acquires the mutex of sessionID and returns its release func.
func (m *Mesh) lock(sessionID string) (func(), error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, sessionID)
		}
		m.mu.Unlock()
	}, nil
}

func (m *Mesh) load(sessionID string) (*core.ConversationContext, error) {
	return m.read(sessionID, m.opts.Store.Get)
}

func (m *Mesh) peek(sessionID string) (*core.ConversationContext, error) {
	if p, ok := m.opts.Store.(core.ContextPeeker); ok {
		return m.read(sessionID, p.Peek)
	}
	return m.load(sessionID)
}

func (m *Mesh) read(sessionID string, get func(string) (*core.ConversationContext, error)) (*core.ConversationContext, error) {
	conv, err := get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("tutormesh: load session: %w", err)
	}
	if conv == nil {
		return nil, errors.New("tutormesh: store returned no context")
	}
	return conv, nil
}

func (m *Mesh) orchestrator(sessionID string, conv *core.ConversationContext) *orchestrator.Orchestrator {
	logger := m.opts.Logger
	if tl, ok := logger.(*logging.TutorLogger); ok {
		logger = tl.WithSession(sessionID)
	}
	return orchestrator.New(m.router, m.agents, conv, func(o *orchestrator.Options) {
		o.Logger = logger
		o.Metrics = m.opts.Metrics
	})
}
