// Package database opens the gorm connections behind the SQL storage
// backends and keeps their schema current.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/model"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN is the shared-cache in-memory SQLite database.
const MemoryDSN = "file::memory:?cache=shared"

const (
	maxOpenConns = 10
	pingTimeout  = 5 * time.Second
)

// ErrNotConnected is returned by Manager methods that need a connection.
var ErrNotConnected = errors.New("database not connected")

var pragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
	"PRAGMA foreign_keys = ON;",
}

// Manager opens the play database: Postgres when it answers, otherwise a
// local SQLite file.
type Manager struct {
	DB *gorm.DB
	// FallbackPath is the SQLite file used when Postgres is unreachable.
	// Empty means in memory.
	FallbackPath string

	log   zerolog.Logger
	sqlDB *sql.DB
	local bool
}

// NewManager creates a manager logging connection events to log.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Connect tries Postgres first and falls back to SQLite at FallbackPath.
func (m *Manager) Connect(cfg config.DBConfig) error {
	db, sqlDB, err := OpenPostgres(cfg)
	if err == nil {
		m.log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to Postgres")
		m.DB, m.sqlDB, m.local = db, sqlDB, false
		return nil
	}

	m.log.Warn().Err(err).Str("path", m.FallbackPath).Msg("Postgres unreachable, falling back to SQLite")
	if db, err = OpenSQLite(m.FallbackPath); err != nil {
		return fmt.Errorf("failed to open SQLite fallback: %w", err)
	}
	if sqlDB, err = db.DB(); err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	m.DB, m.sqlDB, m.local = db, sqlDB, true
	return nil
}

// Local reports whether Connect fell back to SQLite.
func (m *Manager) Local() bool { return m.local }

// SQL returns the connection pool, nil before Connect.
func (m *Manager) SQL() *sql.DB { return m.sqlDB }

// Migrate brings the schema up to date.
func (m *Manager) Migrate() error {
	if m.DB == nil {
		return ErrNotConnected
	}
	start := time.Now()
	if err := Migrate(m.DB); err != nil {
		return err
	}
	m.log.Debug().Dur("took", time.Since(start)).Bool("local", m.local).Msg("Schema migrated")
	return nil
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	if m.sqlDB == nil {
		return nil
	}
	return m.sqlDB.Close()
}

// PostgresDSN builds the keyword/value connection string for cfg.
func PostgresDSN(cfg config.DBConfig) string {
	pairs := []struct{ k, v string }{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"user", cfg.Username},
		{"password", cfg.Password},
		{"dbname", cfg.Database},
		{"sslmode", "disable"},
		{"connect_timeout", "5"},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.v == "" {
			continue
		}
		v := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(p.v)
		parts = append(parts, fmt.Sprintf("%s='%s'", p.k, v))
	}
	return strings.Join(parts, " ")
}

// OpenPostgres connects to Postgres and checks the server answers. The pool
// is closed again when it does not.
func OpenPostgres(cfg config.DBConfig) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access sql interface: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	return db, sqlDB, nil
}

// OpenSQLite opens the SQLite database at path, or the shared in-memory
// database when path is empty.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", dsn, err)
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table in model.DatabaseModels.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// VacuumInto writes a compact copy of db to path. The copy is built next to
// path and renamed over it, so an existing file is only replaced by a
// complete dump.
func VacuumInto(db *gorm.DB, path string) error {
	if path == "" {
		return errors.New("dump path not set")
	}
	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error clearing %s: %w", tmp, err)
	}

	quoted := strings.ReplaceAll(tmp, "'", "''")
	if err := db.Exec("VACUUM INTO '" + quoted + "';").Error; err != nil {
		return fmt.Errorf("error dumping database: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing %s: %w", path, err)
	}
	return nil
}
