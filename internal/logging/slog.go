package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName is the instrumentation scope used for the OTel log bridge.
const ServiceName = "playauthor"

var levels = map[string]slog.Level{
	"DEBUG":   slog.LevelDebug,
	"INFO":    slog.LevelInfo,
	"WARN":    slog.LevelWarn,
	"WARNING": slog.LevelWarn,
	"ERROR":   slog.LevelError,
}

// ParseLevel converts a level name to slog.Level. Unknown names mean INFO.
func ParseLevel(level string) slog.Level {
	if lvl, ok := levels[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Options describes where a session's records go.
type Options struct {
	// Output receives text records; stdout when nil.
	Output io.Writer
	Level  string
	// Provider, when set, also bridges records into OTel.
	Provider *sdklog.LoggerProvider
	// Context adds the live editor state to every record.
	Context ContextProvider
}

// SlogManager owns the session's slog logger. Setup may be called again
// once more of the session is known, e.g. after the log file is open.
type SlogManager struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

// NewSlogManager creates a manager whose Logger is slog.Default until Setup.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// Setup builds the logger described by opts.
func (m *SlogManager) Setup(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	lvl := ParseLevel(opts.Level)

	text := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: utcTime,
	})
	var bridge slog.Handler
	if opts.Provider != nil {
		bridge = otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(opts.Provider))
	}

	m.provider = opts.Provider
	m.logger = slog.New(NewContextHandler(NewMultiHandler(text, bridge), opts.Context))
	m.logger.Debug("Logging initialized", "level", lvl.String(), "otel", bridge != nil)
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Logger returns the configured logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes buffered OTel records out.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.ForceFlush(ctx)
}
