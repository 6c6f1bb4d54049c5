package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/studybuddy/tutormesh/core"
	"github.com/studybuddy/tutormesh/logging"
)

func TestLogRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := logging.DefaultLoggerConfig()
	cfg.Output = buf
	cfg.Level = logging.LogLevelDebug
	rec := NewLogRecorder(logging.NewLogger(cfg))

	rec.ObserveRouting(core.AgentMath, core.SourceClassifier)
	rec.ObserveBackendCall("agent.process", time.Millisecond, errors.New("down"))
	rec.ObserveTurn(core.AgentMath, time.Second)

	out := buf.String()
	assert.Contains(t, out, `"msg":"router.decision"`)
	assert.Contains(t, out, `"msg":"backend.call.failed"`)
	assert.Contains(t, out, `"msg":"turn.observed"`)
	assert.Contains(t, out, `"component":"metrics"`)
}

func TestMulti(t *testing.T) {
	assert.Equal(t, Nop{}, Multi())
	assert.Equal(t, Nop{}, Multi(nil, nil))

	a, _ := newTestRecorder(t)
	assert.Same(t, a, Multi(nil, a))

	b, _ := newTestRecorder(t)
	m := Multi(a, b)
	m.ObserveRouting(core.AgentScience, core.SourceClassifier)
	m.ObserveTurn(core.AgentScience, time.Second)
	m.ObserveBackendCall("router.classify", time.Millisecond, nil)

	for _, rec := range []*PrometheusRecorder{a, b} {
		assert.Equal(t, 1.0, testutil.ToFloat64(rec.routingTotal.WithLabelValues("science_tutor", "classifier")))
		assert.Equal(t, 1.0, testutil.ToFloat64(rec.turnsTotal.WithLabelValues("science_tutor")))
		assert.Equal(t, 1.0, testutil.ToFloat64(rec.backendCalls.WithLabelValues("router.classify", "success")))
	}
}
