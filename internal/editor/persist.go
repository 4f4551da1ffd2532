package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nebrenner/basketball-play-author/internal/framegraph"
	"github.com/nebrenner/basketball-play-author/internal/schema"
	"github.com/nebrenner/basketball-play-author/internal/storage"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// SavePlay stores the current play under name. A blank name keeps the
// play's current name; a play without any name cannot be saved.
func (s *Store) SavePlay(ctx context.Context, name string) error {
	if s.backend == nil {
		return ErrNoBackend
	}

	s.mu.Lock()
	if s.play == nil {
		s.mu.Unlock()
		return ErrNoPlay
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(s.play.Meta.Name)
	}
	if name == "" {
		s.mu.Unlock()
		return ErrNameRequired
	}
	s.play.Meta.Name = name
	s.play.Meta.UpdatedAt = s.now()
	snapshot := s.play.Clone()
	s.mu.Unlock()

	if err := schema.Validate(snapshot); err != nil {
		return fmt.Errorf("failed to save play: %w", err)
	}
	if err := s.backend.SavePlay(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save play %s: %w", snapshot.ID, err)
	}

	s.mu.Lock()
	// edits made while the save was in flight keep the play dirty
	if s.play != nil && s.play.ID == snapshot.ID && s.play.Meta.UpdatedAt.Equal(snapshot.Meta.UpdatedAt) {
		s.dirty = false
	}
	s.mu.Unlock()

	s.log.InfoContext(ctx, "play saved", "play", snapshot.ID, "name", name)
	return nil
}

// SavePlayAsCopy stores a copy of the current play under a new id and name.
// The play being edited is unchanged. It returns the id of the copy.
func (s *Store) SavePlayAsCopy(ctx context.Context, name string) (string, error) {
	if s.backend == nil {
		return "", ErrNoBackend
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}

	s.mu.RLock()
	if s.play == nil {
		s.mu.RUnlock()
		return "", ErrNoPlay
	}
	cp := s.play.Clone()
	s.mu.RUnlock()

	now := s.now()
	cp.ID = s.newID()
	cp.Meta = core.Meta{Name: name, CreatedAt: now, UpdatedAt: now}

	if err := schema.Validate(cp); err != nil {
		return "", fmt.Errorf("failed to copy play: %w", err)
	}
	if err := s.backend.SavePlay(ctx, cp); err != nil {
		return "", fmt.Errorf("failed to save copy %s: %w", cp.ID, err)
	}
	s.log.InfoContext(ctx, "play copied", "play", cp.ID, "name", name)
	return cp.ID, nil
}

// LoadPlay replaces the current play with a saved one.
func (s *Store) LoadPlay(ctx context.Context, id string) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	p, err := s.backend.LoadPlay(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load play %s: %w", id, err)
	}
	s.open(p)
	return nil
}

// ImportPlay replaces the current play with a JSON document.
func (s *Store) ImportPlay(raw []byte) error {
	p, err := schema.Parse(raw)
	if err != nil {
		return fmt.Errorf("failed to import play: %w", err)
	}
	s.open(p)
	return nil
}

// open installs p as the current play with the cursor on its root.
func (s *Store) open(p *core.Play) {
	p = framegraph.Normalize(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.detachRunLocked()

	s.play = p
	s.branchPath = nil
	s.index = 0
	if root, ok := framegraph.Root(p); ok {
		s.branchPath = framegraph.PathTo(p, root.ID)
		if len(s.branchPath) == 0 {
			s.branchPath = []string{root.ID}
		}
		s.index = len(s.branchPath) - 1
	}
	s.courtType = p.CourtType
	if s.courtType == "" {
		s.courtType = core.CourtHalf
	}
	if f := s.currentLocked(); f != nil && f.Possession != "" {
		p.Possession = f.Possession
	}
	s.draft = idle
	s.dirty = false
	s.publish()
	s.log.Info("play opened", "play", p.ID, "frames", len(p.Frames))
}

// ExportJSON serializes the current play.
func (s *Store) ExportJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.play == nil {
		return nil, ErrNoPlay
	}
	return json.MarshalIndent(s.play, "", "  ")
}

// ExportPlay writes the current play to a file through the backend and
// returns the file path.
func (s *Store) ExportPlay() (string, error) {
	exp, ok := s.backend.(storage.Exporter)
	if !ok {
		return "", ErrExportUnsupported
	}
	p := s.Play()
	if p == nil {
		return "", ErrNoPlay
	}
	path, err := exp.ExportPlay(p, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to export play %s: %w", p.ID, err)
	}
	s.log.Info("play exported", "play", p.ID, "path", path)
	return path, nil
}

// ListPlays returns the saved plays, most recently updated first.
func (s *Store) ListPlays(ctx context.Context) ([]core.PlaySummary, error) {
	if s.backend == nil {
		return nil, ErrNoBackend
	}
	out, err := s.backend.ListPlays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plays: %w", err)
	}
	storage.SortSummaries(out)
	return out, nil
}

// DeletePlay removes a saved play. The play being edited is not affected.
func (s *Store) DeletePlay(ctx context.Context, id string) error {
	if s.backend == nil {
		return ErrNoBackend
	}
	if err := s.backend.DeletePlay(ctx, id); err != nil {
		return fmt.Errorf("failed to delete play %s: %w", id, err)
	}
	return nil
}
