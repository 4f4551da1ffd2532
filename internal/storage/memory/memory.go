// internal/storage/memory/memory.go
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/schema"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// record keeps the serialized document so that callers never share memory
// with the backend.
type record struct {
	Summary  core.PlaySummary
	Document []byte
}

// Backend stores plays in memory and exports them to JSON files.
type Backend struct {
	cfg   config.MemoryConfig
	plays map[string]record

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:   cfg,
		plays: make(map[string]record),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// SavePlay stores a snapshot of p.
func (b *Backend) SavePlay(_ context.Context, p *core.Play) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal play %s: %w", p.ID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.plays[p.ID] = record{Summary: p.Summary(), Document: doc}
	return nil
}

// LoadPlay decodes the stored snapshot.
func (b *Backend) LoadPlay(_ context.Context, id string) (*core.Play, error) {
	b.mu.RLock()
	rec, ok := b.plays[id]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrPlayNotFound, id)
	}
	return schema.Parse(rec.Document)
}

// ListPlays returns the summaries of every stored play in no particular
// order; storage.SortSummaries is applied by callers that need ordering.
func (b *Backend) ListPlays(_ context.Context) ([]core.PlaySummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.PlaySummary, 0, len(b.plays))
	for _, rec := range b.plays {
		out = append(out, rec.Summary)
	}
	return out, nil
}

// DeletePlay removes a play.
func (b *Backend) DeletePlay(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.plays[id]; !ok {
		return fmt.Errorf("%w: %s", core.ErrPlayNotFound, id)
	}
	delete(b.plays, id)
	return nil
}
