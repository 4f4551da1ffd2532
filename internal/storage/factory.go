// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/storage/memory"
	"github.com/nebrenner/basketball-play-author/internal/storage/postgres"
	sqlitestorage "github.com/nebrenner/basketball-play-author/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration. The backend
// is not initialized. "auto" tries Postgres and falls back to the SQLite
// settings when it cannot connect; connLog receives the connection attempts.
func NewBackend(cfg config.StorageConfig, db config.DBConfig, log *slog.Logger, connLog zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(db, log, postgres.WithConnLogger(connLog)), nil
	case "auto":
		return postgres.New(db, log,
			postgres.WithConnLogger(connLog),
			postgres.WithSQLiteFallback(cfg.SQLite.Path),
		), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, log)
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
