package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", "debug", slog.LevelDebug, true},
		{"info", "info", slog.LevelInfo, true},
		{"warn", "warn", slog.LevelWarn, true},
		{"error", "error", slog.LevelError, true},
		{"case insensitive", "DEBUG", slog.LevelDebug, true},
		{"mixed case", "Info", slog.LevelInfo, true},
		{"unknown", "verbose", slog.LevelInfo, false},
		{"empty", "", slog.LevelInfo, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out, warn bytes.Buffer
	l := setup(&out, &warn, config.ServerConfig{LogLevel: "warn", Port: 8080})
	require.NotNil(t, l)

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)
	assert.Empty(t, warn.String())
	assert.Same(t, l, slog.Default())
}

func TestSetupInvalidLevelWarns(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var out, warn bytes.Buffer
	l := setup(&out, &warn, config.ServerConfig{LogLevel: "invalid_level", Port: 8080})

	assert.Contains(t, warn.String(), "invalid log level configured")
	assert.Contains(t, warn.String(), "invalid_level")

	l.Debug("debug message")
	l.Info("info message")
	assert.NotContains(t, out.String(), "debug message")
	assert.Contains(t, out.String(), "info message")
}

func TestFromContext(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("returns stored logger with request id", func(t *testing.T) {
		l, buf := NewBufferLogger(slog.LevelDebug)
		ctx := WithRequestID(WithLogger(context.Background(), l), "req-123")

		FromContext(ctx).Info("hello")

		entries, err := buf.Entries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "hello", entries[0]["msg"])
		assert.Equal(t, "req-123", entries[0]["request_id"])
	})

	t.Run("uses fallback when no logger is stored", func(t *testing.T) {
		fallback, buf := NewBufferLogger(slog.LevelInfo)
		FromContextOrDefault(WithRequestID(context.Background(), "req-9"), fallback).Info("stored")

		entries, err := buf.Entries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "req-9", entries[0]["request_id"])
	})
}

func TestComponent(t *testing.T) {
	l, buf := NewBufferLogger(slog.LevelInfo)
	Component(l, "task_runner").Info("started")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "task_runner", entries[0]["component"])
}
