package main

import (
	"context"

	"github.com/nebrenner/basketball-play-author/internal/cache"
	"github.com/nebrenner/basketball-play-author/internal/playback"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// stageAnimator puts handles for the frame being viewed on the registry
// before each playback run. The CLI has no canvas, so the handles only hold
// positions, which :VIEW:STAGE: reports.
type stageAnimator struct {
	runner     *playback.Runner
	registry   *cache.NodeRegistry
	ballOffset core.Point
	frame      func() (*core.Frame, bool)
}

func (s *stageAnimator) Run(ctx context.Context, steps []playback.Step, after func(playback.Step) bool) (int, error) {
	if s.frame != nil {
		if f, ok := s.frame(); ok {
			s.registry.Reset()
			s.registry.RegisterFrame(f, s.ballOffset)
		}
	}
	// A move can name a token that only exists in a later frame.
	for _, step := range steps {
		for _, m := range step.Moves {
			if _, ok := s.registry.Resolve(m.ID); !ok {
				h := &cache.PointHandle{}
				h.SetPosition(m.From)
				s.registry.Register(m.ID, h)
			}
		}
	}
	return s.runner.Run(ctx, steps, after)
}

// positions reports where every registered handle currently sits.
func (s *stageAnimator) positions() map[string]core.Point {
	out := make(map[string]core.Point)
	for _, id := range s.registry.IDs() {
		h, ok := s.registry.Resolve(id)
		if !ok {
			continue
		}
		if ph, ok := h.(*cache.PointHandle); ok {
			out[id], _ = ph.Position()
		}
	}
	return out
}
