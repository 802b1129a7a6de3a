package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

func TestZapLogger_LevelIsShared(t *testing.T) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	obs, logs := observer.New(level)
	root := NewZapWithCore(obs, level)
	child := root.Named("ledger")

	child.Debug("hidden", nil)
	child.Info("Transaction created", map[string]any{"amount": int64(52542)})
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ledger", entry.LoggerName)
	assert.Equal(t, int64(52542), entry.ContextMap()["amount"])

	root.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, child.GetLevel())
	child.Debug("visible", nil)
	assert.Equal(t, 2, logs.Len())

	root.SetLevel(core.LogLevelError)
	child.Warn("hidden", nil)
	child.Error("Failed", map[string]any{"error": errors.New("boom")})
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "boom", logs.All()[2].ContextMap()["error"])
}

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger(Options{Production: true, Level: core.LogLevelWarn, Output: "stderr"})
	require.NoError(t, err)
	assert.Equal(t, core.LogLevelWarn, l.GetLevel())

	_, err = NewZapLogger(Options{Output: "/nonexistent-dir/x/y.log"})
	assert.Error(t, err)
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	l.SetLevel(core.LogLevelError)
	assert.Equal(t, core.LogLevelError, l.GetLevel())
	assert.Same(t, l, l.Named("x"))
	assert.NoError(t, l.Flush())
}
