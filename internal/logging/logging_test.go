package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l = New(Options{Output: &buf, Verbose: true})
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestRequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(Options{Output: &buf, Format: "json"}), "server")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	l.InfoContext(ctx, "handled")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-42", rec["request_id"])
	assert.Equal(t, "server", rec["component"])
	assert.Equal(t, "handled", rec["msg"])
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
