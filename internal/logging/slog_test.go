package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestSetup_WritesToFile(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{Output: &buf, Level: "info"})

	m.Logger().Info("frame advanced", "frames", 2)

	assert.Contains(t, buf.String(), "frame advanced")
	assert.Contains(t, buf.String(), "frames=2")
}

func TestSetup_InfoLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{Output: &buf, Level: "info"})

	m.Logger().Debug("hidden")
	m.Logger().Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{Output: &buf, Level: "debug", Context: func() []slog.Attr {
		return []slog.Attr{slog.String("play", "p-1"), slog.String("frame", "f-9")}
	}})

	m.Logger().Info("saved")

	assert.Contains(t, buf.String(), "play=p-1")
	assert.Contains(t, buf.String(), "frame=f-9")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestFlush_NoProvider(t *testing.T) {
	require.NoError(t, NewSlogManager().Flush(context.Background()))
}

func TestContextHandler_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil), nil))

	outer := WithAttrs(context.Background(), slog.String("command", ":FRAME:ADVANCE:"))
	ctx := WithAttrs(outer, slog.Int("line", 3))
	sibling := WithAttrs(outer, slog.Int("line", 4))
	logger.InfoContext(ctx, "dispatch")

	assert.Contains(t, buf.String(), "command=:FRAME:ADVANCE:")
	assert.Contains(t, buf.String(), "line=3")
	assert.Len(t, attrsFrom(sibling), 2)
	assert.Equal(t, int64(4), attrsFrom(sibling)[1].Value.Int64())
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("disk full")
}

func TestMultiHandler_ContinuesPastFailures(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(failingHandler{}, nil, slog.NewTextHandler(&buf, nil))
	logger := slog.New(h)

	logger.Info("still written")

	assert.Contains(t, buf.String(), "still written")
	err := h.Handle(context.Background(), slog.Record{})
	assert.ErrorContains(t, err, "disk full")
}

func TestMultiHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMultiHandler(slog.NewTextHandler(&buf, nil))).WithGroup("arrow")
	logger.Info("created", "kind", "pass")
	assert.Contains(t, buf.String(), "arrow.kind=pass")
}
