// Package gormstorage implements the storage.Backend interface on top of any
// GORM dialector. The sqlite and postgres packages wrap it with their
// connection handling.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nebrenner/basketball-play-author/internal/database"
	"github.com/nebrenner/basketball-play-author/internal/model"
	"github.com/nebrenner/basketball-play-author/internal/model/convert"
	"github.com/nebrenner/basketball-play-author/pkg/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// arrowBatchSize bounds a single INSERT of arrow path rows.
const arrowBatchSize = 500

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init runs the schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend: no database")
	}
	return database.Migrate(b.deps.DB)
}

// Close is a no-op; the connection belongs to whoever opened it.
func (b *Backend) Close() error {
	return nil
}

// SavePlay upserts the play row and rewrites its arrow paths in one
// transaction.
func (b *Backend) SavePlay(ctx context.Context, p *core.Play) error {
	rec, err := convert.PlayToRecord(p)
	if err != nil {
		return err
	}
	paths := convert.PlayToArrowPaths(p)

	err = b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&rec).Error; err != nil {
			return fmt.Errorf("upsert play: %w", err)
		}
		if err := tx.Where("play_id = ?", p.ID).Delete(&model.ArrowPath{}).Error; err != nil {
			return fmt.Errorf("clear arrow paths: %w", err)
		}
		if len(paths) > 0 {
			if err := tx.CreateInBatches(paths, arrowBatchSize).Error; err != nil {
				return fmt.Errorf("insert arrow paths: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.deps.Logger.Debug("play saved", "play", p.ID, "frames", rec.FrameCount, "arrows", len(paths))
	return nil
}

// LoadPlay reads and validates the stored document.
func (b *Backend) LoadPlay(ctx context.Context, id string) (*core.Play, error) {
	var rec model.PlayRecord
	err := b.deps.DB.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", core.ErrPlayNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load play %s: %w", id, err)
	}
	return convert.RecordToPlay(rec)
}

// ListPlays returns every play summary, newest first, without reading the
// documents.
func (b *Backend) ListPlays(ctx context.Context) ([]core.PlaySummary, error) {
	var recs []model.PlayRecord
	err := b.deps.DB.WithContext(ctx).
		Select("id", "name", "court_type", "frame_count", "arrow_count", "meta_created_at", "meta_updated_at").
		Order("meta_updated_at DESC").
		Order("name").
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list plays: %w", err)
	}

	out := make([]core.PlaySummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, convert.RecordToSummary(r))
	}
	return out, nil
}

// DeletePlay removes a play and its arrow paths.
func (b *Backend) DeletePlay(ctx context.Context, id string) error {
	return b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("play_id = ?", id).Delete(&model.ArrowPath{}).Error; err != nil {
			return fmt.Errorf("delete arrow paths: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.PlayRecord{})
		if res.Error != nil {
			return fmt.Errorf("delete play %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", core.ErrPlayNotFound, id)
		}
		return nil
	})
}

// ArrowPaths returns the resolved arrow paths stored for a play, ordered by
// frame and arrow id.
func (b *Backend) ArrowPaths(ctx context.Context, playID string) ([]model.ArrowPath, error) {
	var out []model.ArrowPath
	err := b.deps.DB.WithContext(ctx).
		Where("play_id = ?", playID).
		Order("frame_id").
		Order("arrow_id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("arrow paths for %s: %w", playID, err)
	}
	return out, nil
}
