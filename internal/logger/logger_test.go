package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger checks that named loggers travel through the context.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "nsis-build")
	ctx = WithKV(ctx, "root", "/tmp/x")

	InfoKV(ctx, "Rendering fragments", "count", 3)

	out := buf.String()
	require.Contains(t, out, "nsis-build")
	require.Contains(t, out, "Rendering fragments")
	require.Contains(t, out, `"root": "/tmp/x"`)
	require.Contains(t, out, `"count": 3`)
}

// TestLevelHelpers writes one line per helper at or above the logger level.
func TestLevelHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.InfoLevel))

	DebugKV(ctx, "hidden")
	Info(ctx, "plain")
	WarnKV(ctx, "careful", "path", "a")
	ErrorKV(ctx, "Build failed", "error", "boom")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "INFO plain")
	require.Contains(t, out, "WARN careful")
	require.Contains(t, out, `ERROR Build failed {"error": "boom"}`)
	require.Equal(t, 3, strings.Count(out, "\n"))
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
