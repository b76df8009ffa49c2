package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WarnLevel, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown", map[string]interface{}{"k": "v"})
	logger.Error("shown too")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, "v", entries[0]["k"])
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(DebugLevel, &buf)
	child := base.WithFields(map[string]interface{}{"run_id": "abc"}).WithField("algorithm", "LN_COBYLA")

	child.Info("run started")
	base.Info("no fields")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0]["run_id"])
	assert.Equal(t, "LN_COBYLA", entries[0]["algorithm"])
	assert.NotContains(t, entries[1], "run_id")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf).WithFormat(TextFormat)

	logger.Info("hello", map[string]interface{}{"b": 2, "a": 1})

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "hello a=1 b=2")
}

func TestNewLoggerConfig(t *testing.T) {
	logger, err := NewLogger(&Config{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, logger.level)
	assert.Equal(t, TextFormat, logger.format)

	logger, err = NewLogger(nil)
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, logger.level)
	assert.Equal(t, JSONFormat, logger.format)

	assert.Equal(t, InfoLevel, parseLevel("bogus"))
}

func TestZapAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(New(InfoLevel, &buf)).Named("optimizer").With(zap.String("run_id", "r1"))

	logger.Debug("hidden")
	logger.Info("evaluated",
		zap.Int("evaluations", 3),
		zap.Float64("value", 0.5),
		zap.Bool("ok", true),
		zap.Duration("elapsed", time.Second),
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "evaluated", e["message"])
	assert.Equal(t, "optimizer", e["logger"])
	assert.Equal(t, "r1", e["run_id"])
	assert.Equal(t, float64(3), e["evaluations"])
	assert.Equal(t, 0.5, e["value"])
	assert.Equal(t, true, e["ok"])
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctxLogger := &CtxLogger{Logger: New(InfoLevel, &buf)}
	ctx := ctxLogger.WithContext(t.Context())

	assert.Same(t, ctxLogger, FromContext(ctx))
	assert.NotNil(t, FromContext(t.Context()))
}
