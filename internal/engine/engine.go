// Package engine derives the next frame of a play from the arrows drawn on
// the current one.
package engine

import (
	"maps"

	"github.com/google/uuid"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// IDFunc produces unique frame ids.
type IDFunc func() string

// Engine computes frame advances.
type Engine struct {
	newID IDFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDFunc overrides the frame id generator.
func WithIDFunc(fn IDFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New creates an Engine that mints uuid frame ids by default.
func New(opts ...Option) *Engine {
	e := &Engine{newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Advance builds the frame that follows frameID. Token positions are copied
// and moved to the end of each cut, dribble or screen arrow; a pass hands the
// ball to its target token or leaves it loose when it ends on a free point.
// The new frame has no arrows, no parent and no children. The second return
// is false when frameID is not part of play.
func (e *Engine) Advance(play *core.Play, frameID string) (*core.Frame, bool) {
	if play == nil {
		return nil, false
	}
	current, ok := play.Frame(frameID)
	if !ok {
		return nil, false
	}

	tokens := maps.Clone(current.Tokens)
	if tokens == nil {
		tokens = map[string]core.Point{}
	}

	possession := current.Possession
	if possession == "" {
		possession = play.Possession
	}

	for _, id := range current.Arrows {
		arrow, ok := play.ArrowsByID[id]
		if !ok {
			continue
		}
		if arrow.Kind == core.ArrowPass {
			possession = passResult(arrow, tokens, possession)
			continue
		}
		if arrow.ToPoint == nil {
			continue
		}
		if _, ok := tokens[arrow.From]; !ok {
			continue
		}
		tokens[arrow.From] = *arrow.ToPoint
	}

	return &core.Frame{
		ID:           e.newID(),
		Tokens:       tokens,
		Arrows:       []string{},
		Possession:   possession,
		NextFrameIDs: []string{},
	}, true
}

func passResult(arrow core.Arrow, tokens map[string]core.Point, current string) string {
	if arrow.ToTokenID != "" {
		if _, ok := tokens[arrow.ToTokenID]; ok {
			return arrow.ToTokenID
		}
		return current
	}
	if arrow.ToPoint != nil {
		return ""
	}
	return current
}
