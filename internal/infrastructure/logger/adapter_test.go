package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAdapter_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromCore(core)

	log.WithField("task_id", "abc123").Info("Status polled", "status", "RUNNING")
	log.Named("poller").WithFields(map[string]any{"b": 2, "a": 1}).Warn("Transient failure")
	log.Debug("debug line")
	log.Error("boom", "error", "x")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "Status polled", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "abc123", entries[0].ContextMap()["task_id"])
	assert.Equal(t, "RUNNING", entries[0].ContextMap()["status"])

	assert.Equal(t, "poller", entries[1].LoggerName)
	assert.EqualValues(t, 1, entries[1].ContextMap()["a"])
	assert.EqualValues(t, 2, entries[1].ContextMap()["b"])

	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestNewLoggerAdapter_WritesJSONFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "nested", "research.log")

	log, err := NewLoggerAdapter(cfg)
	require.NoError(t, err)

	log.Info("Research started", "query", "quantum computing trends")
	log.Debug("filtered out at info level")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"message":"Research started"`)
	assert.Contains(t, content, `"level":"INFO"`)
	assert.Contains(t, content, `"query":"quantum computing trends"`)
	assert.False(t, strings.Contains(content, "filtered out"))
}

func TestNewLoggerAdapter_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "research.log")
	cfg.Level = "loud"

	_, err := NewLoggerAdapter(cfg)
	assert.Error(t, err)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info("ignored")
	assert.NoError(t, log.Close())
}
