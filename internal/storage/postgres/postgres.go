// Package postgres implements the storage.Backend interface using GORM/PostgreSQL.
package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/database"
	gormstorage "github.com/nebrenner/basketball-play-author/internal/storage/gorm"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Backend wraps the GORM backend with a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg   config.DBConfig
	log   *slog.Logger
	sqlDB *sql.DB

	fallback    bool
	sqlitePath  string
	connLog     zerolog.Logger
	usingSQLite bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithSQLiteFallback makes Init fall back to a local SQLite database at path
// (in memory when empty) when Postgres cannot be reached.
func WithSQLiteFallback(path string) Option {
	return func(b *Backend) {
		b.fallback = true
		b.sqlitePath = path
	}
}

// WithConnLogger sets the logger used while connecting.
func WithConnLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.connLog = l }
}

// New creates a Postgres backend. The connection is opened by Init.
func New(cfg config.DBConfig, log *slog.Logger, opts ...Option) *Backend {
	if log == nil {
		log = slog.Default()
	}
	b := &Backend{cfg: cfg, log: log, connLog: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// UsingSQLite reports whether Init fell back to the local database.
func (b *Backend) UsingSQLite() bool {
	return b.usingSQLite
}

// Init connects, validates the connection and migrates the schema.
func (b *Backend) Init() error {
	if b.fallback {
		return b.initWithFallback()
	}

	db, sqlDB, err := database.OpenPostgres(b.cfg)
	if err != nil {
		return err
	}
	b.sqlDB = sqlDB
	if err := b.setup(db); err != nil {
		_ = sqlDB.Close()
		return err
	}
	b.log.Info("connected to postgres", "host", b.cfg.Host, "database", b.cfg.Database)
	return nil
}

func (b *Backend) initWithFallback() error {
	m := database.NewManager(b.connLog)
	m.FallbackPath = b.sqlitePath
	if err := m.Connect(b.cfg); err != nil {
		return fmt.Errorf("failed to connect to postgres or sqlite: %w", err)
	}
	if err := m.Migrate(); err != nil {
		_ = m.Close()
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.sqlDB = m.SQL()
	b.usingSQLite = m.Local()
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: m.DB, Logger: b.log})
	if b.usingSQLite {
		b.log.Warn("postgres unreachable, using local sqlite", "path", b.sqlitePath)
	} else {
		b.log.Info("connected to postgres", "host", b.cfg.Host, "database", b.cfg.Database)
	}
	return nil
}

func (b *Backend) setup(db *gorm.DB) error {
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})
	if err := b.Backend.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}
