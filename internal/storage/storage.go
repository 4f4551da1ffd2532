// internal/storage/storage.go
package storage

import (
	"context"
	"sort"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/model"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// ErrNotFound is returned when a play id is unknown to the backend.
var ErrNotFound = core.ErrPlayNotFound

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SavePlay inserts or replaces the play with the same id.
	SavePlay(ctx context.Context, p *core.Play) error
	// LoadPlay returns a validated copy of the stored play.
	LoadPlay(ctx context.Context, id string) (*core.Play, error)
	// ListPlays returns summaries, newest first.
	ListPlays(ctx context.Context) ([]core.PlaySummary, error)
	DeletePlay(ctx context.Context, id string) error
}

// Exporter is an optional interface for backends that can write a play to
// a standalone file.
type Exporter interface {
	ExportPlay(p *core.Play, at time.Time) (string, error)
	GetExportedFilePath() string
}

// PathStore is implemented by backends that keep the resolved arrow paths
// of every saved play in their own table.
type PathStore interface {
	ArrowPaths(ctx context.Context, playID string) ([]model.ArrowPath, error)
}

// SortSummaries orders summaries newest first. Ties fall back to name and
// then id so listings are stable.
func SortSummaries(s []core.PlaySummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		if s[i].Name != s[j].Name {
			return s[i].Name < s[j].Name
		}
		return s[i].ID < s[j].ID
	})
}
