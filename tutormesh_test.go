package tutormesh

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/tutormesh/config"
	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/internal/testutil"
	"github.com/studybuddy/tutormesh/logging"
	"github.com/studybuddy/tutormesh/model"
	"github.com/studybuddy/tutormesh/session"
)

func TestMesh_AskKeepsSessionsApart(t *testing.T) {
	m := New(model.NewMockModel("mock"))
	ctx := context.Background()

	turn, err := m.Ask(ctx, "a", "3 + 5 等於多少？")
	require.NoError(t, err)
	// The mock never answers in agent|confidence form, so keywords decide.
	assert.Equal(t, core.AgentMath, turn.Agent)
	assert.Equal(t, core.SourceKeywordFormat, turn.Decision.Source)
	assert.Equal(t, "Mock response to: 3 + 5 等於多少？", turn.Response)

	stats, err := m.Stats("a")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTurns)
	assert.Equal(t, core.AgentMath, stats.LastAgent)
	assert.Equal(t, core.AllAgents, stats.AvailableAgents)

	stats, err = m.Stats("b")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTurns)
	assert.Equal(t, core.NoAgent, stats.LastAgent)
}

func TestMesh_EmptySessionID(t *testing.T) {
	m := New(model.NewMockModel("mock"))

	_, err := m.Ask(context.Background(), "", "你好")
	assert.ErrorIs(t, err, ErrEmptySessionID)
	_, err = m.Stats("")
	assert.ErrorIs(t, err, ErrEmptySessionID)
	assert.ErrorIs(t, m.Reset(""), ErrEmptySessionID)
	assert.ErrorIs(t, m.Delete(""), ErrEmptySessionID)
}

func TestMesh_HistoryCarriesAcrossTurns(t *testing.T) {
	backend := testutil.NewScriptedModel(
		testutil.Reply("math_tutor|0.9"),
		testutil.Reply("八"),
		testutil.Reply("math_tutor|0.9"),
		testutil.Reply("十"),
	)
	m := New(backend)
	ctx := context.Background()

	_, err := m.Ask(ctx, "s", "3 + 5 等於多少？")
	require.NoError(t, err)
	turn, err := m.Ask(ctx, "s", "那 5 + 5 呢？")
	require.NoError(t, err)
	assert.Equal(t, "十", turn.Response)

	reqs := backend.Requests()
	require.Len(t, reqs, 4)
	msgs := reqs[3].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, core.UserMessage("3 + 5 等於多少？"), msgs[1])
	assert.Equal(t, core.AssistantMessage("八"), msgs[2])
	assert.Equal(t, core.UserMessage("那 5 + 5 呢？"), msgs[3])

	history, err := m.History("s")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestMesh_StudentLevel(t *testing.T) {
	backend := testutil.NewScriptedModel(
		testutil.Reply("science_tutor|0.8"),
		testutil.Reply("因為光的散射。"),
	)
	m := New(backend, func(o *Options) { o.StudentLevel = core.LevelAdvanced })

	_, err := m.Ask(context.Background(), "s", "為什麼天空是藍色的？")
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1].Messages[0].Content, "進階")
}

func TestMesh_ResetAndSetStudentLevel(t *testing.T) {
	store := session.NewInMemoryStore(0)
	m := New(model.NewMockModel("mock"), func(o *Options) { o.Store = store })
	ctx := context.Background()

	require.NoError(t, m.SetStudentLevel("s", core.LevelIntermediate))
	_, err := m.Ask(ctx, "s", "你好")
	require.NoError(t, err)

	require.NoError(t, m.Reset("s"))

	conv, err := store.Get("s")
	require.NoError(t, err)
	assert.True(t, conv.Idle())
	assert.Equal(t, core.NoAgent, conv.LastAgent)
	assert.Equal(t, core.LevelIntermediate, conv.StudentLevel)

	assert.Error(t, m.SetStudentLevel("s", "genius"))
}

func TestMesh_Delete(t *testing.T) {
	m := New(model.NewMockModel("mock"))
	ctx := context.Background()

	_, err := m.Ask(ctx, "s", "你好")
	require.NoError(t, err)
	require.NoError(t, m.Delete("s"))

	stats, err := m.Stats("s")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTurns)
}

func TestMesh_SessionLocksAreReleased(t *testing.T) {
	store := session.NewInMemoryStore(0)
	m := New(model.NewMockModel("mock"), func(o *Options) { o.Store = store })
	ctx := context.Background()

	for i := range 200 {
		id := fmt.Sprintf("s%d", i)
		_, err := m.Ask(ctx, id, "你好")
		require.NoError(t, err)
		require.NoError(t, m.Delete(id))
	}
	assert.Empty(t, m.locks)
	assert.Zero(t, store.Len())

	stats, err := m.Stats("never-asked")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTurns)
	history, err := m.History("never-asked")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, m.locks)
	assert.Zero(t, store.Len())
}

func TestMesh_DeleteWhileTurnsWait(t *testing.T) {
	m := New(model.NewMockModel("mock"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%4 == 0 {
				assert.NoError(t, m.Delete("shared"))
				return
			}
			_, err := m.Ask(ctx, "shared", fmt.Sprintf("問題 %d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.locks)
}

func TestMesh_LogsCarrySessionID(t *testing.T) {
	var buf bytes.Buffer
	cfg := logging.DefaultLoggerConfig()
	cfg.Output = &buf
	m := New(model.NewMockModel("mock"), func(o *Options) { o.Logger = logging.NewLogger(cfg) })

	_, err := m.Ask(context.Background(), "kid-42", "你好")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"session_id":"kid-42"`)
}

func TestMesh_Consult(t *testing.T) {
	m := New(model.NewMockModel("mock"))

	turn, err := m.Consult(context.Background(), "s", "分數是什麼？", core.AgentMath, core.AgentLanguage)
	require.NoError(t, err)

	assert.Equal(t, core.AgentMath, turn.Agent)
	assert.Contains(t, turn.Response, "【math_tutor】: Mock response to: 分數是什麼？")
	assert.Contains(t, turn.Response, "【language_tutor】: Mock response to: 分數是什麼？")

	stats, err := m.Stats("s")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTurns)
}

func TestMesh_WaitsForTurnSlot(t *testing.T) {
	m := New(model.NewMockModel("mock"), func(o *Options) { o.MaxConcurrentTurns = 1 })
	require.NotNil(t, m.sem)

	require.NoError(t, m.sem.Acquire(context.Background(), 1))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Ask(ctx, "s", "你好")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	m.sem.Release(1)
	_, err = m.Ask(context.Background(), "s", "你好")
	assert.NoError(t, err)
}

func TestMesh_ConcurrentSessions(t *testing.T) {
	m := New(model.NewMockModel("mock"), func(o *Options) { o.MaxConcurrentTurns = 4 })
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.Ask(ctx, "shared", fmt.Sprintf("問題 %d", i))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := m.Ask(ctx, fmt.Sprintf("own-%d", i), "你好")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stats, err := m.Stats("shared")
	require.NoError(t, err)
	assert.Equal(t, 8, stats.TotalTurns)

	stats, err = m.Stats("own-3")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTurns)
}

func TestMesh_AgentInfo(t *testing.T) {
	m := New(model.NewMockModel("mock"))

	prompt, ok := m.AgentInfo(core.AgentCompanion)
	require.True(t, ok)
	assert.NotEmpty(t, prompt)

	_, ok = m.AgentInfo("history_tutor")
	assert.False(t, ok)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendMock
	cfg.Retry.MaxRetries = 0
	cfg.Conversation.StudentLevel = string(core.LevelAdvanced)
	cfg.MaxConcurrentTurns = 2
	cfg.Log.Level = "debug"

	m, err := NewFromConfig(cfg, func(o *Options) { o.MaxHistory = 4 })
	require.NoError(t, err)
	assert.NotNil(t, m.sem)
	assert.NotNil(t, m.Router())

	ctx := context.Background()
	for i := range 3 {
		_, err := m.Ask(ctx, "s", fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}
	history, err := m.History("s")
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Equal(t, "q1", history[0].Content)

	cfg.Backend = "nope"
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)

	cfg.Backend = config.BackendMock
	cfg.Conversation.StudentLevel = "genius"
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewSessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
