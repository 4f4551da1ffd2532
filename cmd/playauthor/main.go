package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/cache"
	"github.com/nebrenner/basketball-play-author/internal/commands"
	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/dispatcher"
	"github.com/nebrenner/basketball-play-author/internal/editor"
	"github.com/nebrenner/basketball-play-author/internal/logging"
	intOtel "github.com/nebrenner/basketball-play-author/internal/otel"
	"github.com/nebrenner/basketball-play-author/internal/playback"
	"github.com/nebrenner/basketball-play-author/internal/storage"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "playauthor"
)

// app holds the wired services for one session.
type app struct {
	log        *slog.Logger
	slog       *logging.SlogManager
	otel       *intOtel.Provider
	logFile    *os.File
	backend    storage.Backend
	store      *editor.Store
	registry   *cache.NodeRegistry
	stage      *stageAnimator
	dispatcher *dispatcher.Dispatcher

	sessionStart time.Time
	closeOnce    sync.Once
}

func main() {
	flags := pflag.NewFlagSet(AppName, pflag.ExitOnError)
	flags.String("config-dir", ".", "directory containing "+config.FileName)
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage", "", "storage backend (memory, sqlite, postgres, auto)")
	flags.String("script", "", "run editor commands from a file instead of stdin")
	flags.Bool("version", false, "print version and exit")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [repl|run FILE|list|labels ID|order ID|tree ID|export ID|paths ID]\n", AppName)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if v, _ := flags.GetBool("version"); v {
		fmt.Println(CurrentVersion, BuildDate)
		return
	}

	configDir, _ := flags.GetString("config-dir")
	if err := config.LoadOrDefault(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	_ = viper.BindPFlag("logLevel", flags.Lookup("log-level"))
	_ = viper.BindPFlag("storage.type", flags.Lookup("storage"))

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.close()
	go a.handleSignals()

	if err := a.runCLI(ctx, flags.Args(), flags); err != nil {
		a.log.Error("Command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{sessionStart: time.Now()}

	a.slog = logging.NewSlogManager()
	a.slog.Setup(logging.Options{Output: os.Stderr, Level: viper.GetString("logLevel")})
	a.log = a.slog.Logger()

	logFile, err := logging.OpenLogFile(viper.GetString("logsDir"), AppName, a.sessionStart)
	if err != nil {
		a.log.Warn("Failed to open log file, logging to stderr", "error", err)
	} else {
		a.logFile = logFile
	}
	logOut := os.Stderr
	if a.logFile != nil {
		logOut = a.logFile
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var otelOut io.Writer
		if a.logFile != nil {
			otelOut = a.logFile
		}
		a.otel, err = intOtel.New(ctx, intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    otelOut,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,

			MetricInterval: otelCfg.MetricInterval,
		})
		if err != nil {
			a.log.Error("Failed to initialize OTel provider", "error", err)
			a.otel = nil
		} else {
			a.log.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint, "metrics", a.otel.MetricsEnabled())
		}
	}

	if err := a.initStorage(logging.NewZerolog(logOut, viper.GetString("logLevel"), "database")); err != nil {
		return nil, err
	}

	// The store is built before logging is re-setup so the context provider
	// can read the current play and frame.
	a.registry = cache.NewNodeRegistry()
	editorCfg := config.GetEditorConfig()
	playbackCfg := config.GetPlaybackConfig()
	runner, err := playback.NewRunner(a.registry,
		playback.WithFrameInterval(playbackCfg.FrameInterval),
		playback.WithLogger(a.log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create playback runner: %w", err)
	}
	a.stage = &stageAnimator{
		runner:     runner,
		registry:   a.registry,
		ballOffset: playback.BallOffset(editorCfg.TokenRadius),
	}
	a.store = editor.New(editor.Dependencies{
		Backend:  a.backend,
		Animator: a.stage,
		Logger:   a.log,
		Editor:   editorCfg,
		Playback: playbackCfg,
	})
	a.stage.frame = a.store.CurrentFrame

	var otelLogProvider *sdklog.LoggerProvider
	if a.otel != nil {
		otelLogProvider = a.otel.LoggerProvider()
	}
	a.slog.Setup(logging.Options{
		Output:   logOut,
		Level:    viper.GetString("logLevel"),
		Provider: otelLogProvider,
		Context:  a.store.LogAttrs,
	})
	a.log = a.slog.Logger()

	// zerolog feeds the dispatcher's own logs into the same sink.
	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(
		logging.NewZerolog(logOut, viper.GetString("logLevel"), "dispatcher"),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	registerLifecycleHandlers(a)
	commands.NewManager(commands.Dependencies{
		Store:  a.store,
		Logger: a.log,
	}).RegisterHandlers(a.dispatcher)

	a.log.Info("Started", "version", CurrentVersion, "build", BuildDate, "storage", config.GetStorageConfig().Type)
	return a, nil
}

func (a *app) initStorage(connLog zerolog.Logger) error {
	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, config.GetDBConfig(), a.log, connLog)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage backend: %w", storageCfg.Type, err)
	}
	a.backend = backend
	a.log.Info("Storage backend initialized", "type", storageCfg.Type)
	return nil
}

// close releases everything newApp opened. It is safe to call twice.
func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.store != nil {
			a.store.PauseAnimation()
		}
		if a.dispatcher != nil {
			a.dispatcher.Close()
		}
		if a.backend != nil {
			if err := a.backend.Close(); err != nil {
				a.log.Warn("Failed to close storage backend", "error", err)
			}
		}
		if a.otel != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.otel.Shutdown(ctx); err != nil {
				a.log.Warn("Failed to shut down OTel provider", "error", err)
			}
		}
		if a.logFile != nil {
			_ = a.logFile.Close()
		}
	})
}

// handleSignals pauses running playback on the first interrupt. Any other
// interrupt or a SIGTERM shuts down.
func (a *app) handleSignals() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	for sig := range sigs {
		if sig == os.Interrupt && a.store.PauseAnimation() {
			a.log.Info("Playback paused by interrupt")
			continue
		}
		a.log.Info("Shutting down", "signal", sig.String())
		a.close()
		os.Exit(130)
	}
}

func registerLifecycleHandlers(a *app) {
	a.dispatcher.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{CurrentVersion, BuildDate}, nil
	})

	a.dispatcher.Register(":GETDIR:LOGS:", func(e dispatcher.Event) (any, error) {
		return logging.LogFilePath(viper.GetString("logsDir"), AppName, a.sessionStart), nil
	})

	a.dispatcher.Register(":COMMANDS:", func(e dispatcher.Event) (any, error) {
		prefix := strings.ToUpper(e.Arg(0))
		var out []string
		for _, c := range a.dispatcher.Commands() {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return out, nil
	}, dispatcher.Usage("[PREFIX]"))

	a.dispatcher.Register(":VIEW:STAGE:", func(e dispatcher.Event) (any, error) {
		return a.stage.positions(), nil
	})

	a.dispatcher.Register(":FLUSH:", func(e dispatcher.Event) (any, error) {
		ctx, cancel := context.WithTimeout(e.Context(), 5*time.Second)
		defer cancel()
		if err := a.slog.Flush(ctx); err != nil {
			a.log.Warn("Failed to flush OTel logs", "error", err)
			return nil, err
		}
		return "ok", nil
	})
}
