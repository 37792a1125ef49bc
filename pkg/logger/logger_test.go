package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestColoredHandler_PrefixesIDs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewColoredHandler(&buf, nil)).With("flow_id", "abc-123", "command", "reviewcv")

	l.Info("command started", "user", "u1")

	out := buf.String()
	assert.Contains(t, out, "[abc-123]")
	assert.Contains(t, out, "command started")
	assert.Contains(t, out, `"reviewcv"`)
	assert.Contains(t, out, `"u1"`)
	assert.NotContains(t, out, "flow_id")
}

func TestContextIDs(t *testing.T) {
	ctx := WithRequestID(WithFlowID(context.Background(), "flow-1"), "req-1")
	assert.Equal(t, "flow-1", GetFlowID(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Empty(t, GetFlowID(context.Background()))
}
