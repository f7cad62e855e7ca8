package slogutil

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/agentmart/agentmart/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithAndAttrs(t *testing.T) {
	ctx := With(context.Background(), "request_id", "r1", "path", "/api/agents")

	attrs := Attrs(ctx)
	require.Len(t, attrs, 2)

	got := map[string]string{}
	for _, a := range attrs {
		got[a.Key] = a.Value.String()
	}
	assert.Equal(t, "r1", got["request_id"])
	assert.Equal(t, "/api/agents", got["path"])
}

func TestWith_LaterValueWins(t *testing.T) {
	ctx := With(context.Background(), "request_id", "r1")
	ctx = With(ctx, "request_id", "r2")

	attrs := Attrs(ctx)
	require.Len(t, attrs, 1)
	assert.Equal(t, "r2", attrs[0].Value.String())
}

func TestWith_DoesNotMutateParent(t *testing.T) {
	parent := With(context.Background(), "request_id", "r1")
	_ = With(parent, "extra", "x")

	assert.Len(t, Attrs(parent), 1)
}

func TestAttrs_PlainContext(t *testing.T) {
	assert.Nil(t, Attrs(context.Background()))
}

func TestHandler_AppendsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewTextHandler(&buf, nil)))

	ctx := With(context.Background(), "request_id", "r1")
	logger.InfoContext(ctx, "listing served", "total", 7)

	out := buf.String()
	assert.Contains(t, out, "listing served")
	assert.Contains(t, out, "total=7")
	assert.Contains(t, out, "request_id=r1")
}

func TestHandler_PlainContextUnchanged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("no request scope")

	assert.Contains(t, buf.String(), "no request scope")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestSetup_LevelFiltering(t *testing.T) {
	logger := Setup(config.LogConfig{Level: "warn"})

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
