package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdeck/prepdeck-api/internal/config"
)

func TestSetupReturnsLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		log, err := Setup(config.ServerConfig{LogLevel: level})
		require.NoError(t, err, "level %q", level)
		require.NotNil(t, log, "level %q", level)
	}
}

func TestSetupLevelFiltering(t *testing.T) {
	log, err := Setup(config.ServerConfig{LogLevel: "warn"})
	require.NoError(t, err)

	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, log.Enabled(context.Background(), slog.LevelWarn))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	scoped := slog.New(slog.NewJSONHandler(&buf, nil)).With("trace_id", "abc123")

	ctx := WithLogger(context.Background(), scoped)

	got := FromContext(ctx)
	require.Same(t, scoped, got)

	got.Info("hello")
	assert.Contains(t, buf.String(), "abc123")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Same(t, slog.Default(), got)
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("context logger wins", func(t *testing.T) {
		scoped := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, FromContextOrDefault(ctx, fallback))
	})

	t.Run("fallback when context is bare", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("default when both are missing", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})
}
