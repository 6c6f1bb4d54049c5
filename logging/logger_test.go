package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ Logger = (*TutorLogger)(nil)
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = NoOpLogger{}
)

func newBufferLogger(level LogLevel) (*TutorLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Output = buf
	cfg.Level = level
	return NewLogger(cfg), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestTutorLogger_KeyValueArgs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)
	l.WithComponent("router").WithSession("s1").Info("router.classify", "agent", "math_tutor", "confidence", 0.9)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "router.classify", lines[0]["msg"])
	assert.Equal(t, "router", lines[0]["component"])
	assert.Equal(t, "s1", lines[0]["session_id"])
	assert.Equal(t, "math_tutor", lines[0]["agent"])
	assert.InDelta(t, 0.9, lines[0]["confidence"], 1e-9)
}

func TestTutorLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelWarn)
	l.Debug("hidden")
	l.Info("hidden")
	l.LogRouting("companion", "keyword_backend_error")
	l.LogBackendCall("router.classify", time.Millisecond, nil)
	l.Warn("shown")
	l.LogBackendCall("router.classify", time.Millisecond, errors.New("boom"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", lines[0]["msg"])
	assert.Equal(t, "backend.call.failed", lines[1]["msg"])
	assert.Equal(t, "router.classify", lines[1]["op"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestTutorLogger_DomainHelpersAtDebug(t *testing.T) {
	l, buf := newBufferLogger(LogLevelDebug)
	l.LogRouting("math_tutor", "classifier")
	l.LogBackendCall("agent.process", 2*time.Millisecond, nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "router.decision", lines[0]["msg"])
	assert.Equal(t, "math_tutor", lines[0]["agent"])
	assert.Equal(t, "classifier", lines[0]["source"])
	assert.Equal(t, "backend.call.complete", lines[1]["msg"])
	assert.Equal(t, "agent.process", lines[1]["op"])
}

func TestTutorLogger_WithContextDoesNotLeak(t *testing.T) {
	base, buf := newBufferLogger(LogLevelDebug)
	child := base.WithContext("turn", 3)
	base.Info("base")
	child.Info("child")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	_, ok := lines[0]["turn"]
	assert.False(t, ok)
	assert.EqualValues(t, 3, lines[1]["turn"])
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, l)

	l, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
