package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLogger_LevelsAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	log := NewLogrusLogger(base)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	tests := []struct {
		level logrus.Level
		msg   string
		key   string
		val   int
	}{
		{logrus.DebugLevel, "dbg", "a", 1},
		{logrus.InfoLevel, "inf", "b", 2},
		{logrus.WarnLevel, "wrn", "c", 3},
		{logrus.ErrorLevel, "err", "d", 4},
	}

	entries := hook.AllEntries()
	require.Len(t, entries, len(tests))
	for i, tc := range tests {
		assert.Equal(t, tc.level, entries[i].Level)
		assert.Equal(t, tc.msg, entries[i].Message)
		assert.Equal(t, tc.val, entries[i].Data[tc.key])
	}
}

func TestLogrusLogger_WithAndRequestID(t *testing.T) {
	base, hook := test.NewNullLogger()
	log := NewLogrusLogger(base).With("component", "httpapi")

	ctx := WithRequestID(context.Background(), "req-123")
	log.Info(ctx, "hello", "k", "v")

	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "httpapi", e.Data["component"])
	assert.Equal(t, "req-123", e.Data["request_id"])
	assert.Equal(t, "v", e.Data["k"])
}

func TestLogrusLogger_OddArgs(t *testing.T) {
	base, hook := test.NewNullLogger()
	NewLogrusLogger(base).Info(context.Background(), "odd", "lonely")

	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "lonely", e.Data["!BADKEY"])
}

func TestNew_JSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, "warn")

	log.Info(context.Background(), "suppressed")
	log.Warn(context.Background(), "kept", "user", "alice")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "kept", got["msg"])
	assert.Equal(t, "warning", got["level"])
	assert.Equal(t, "alice", got["user"])

	assert.NotPanics(t, func() { newWithOutput(&buf, "nonsense") })
}
