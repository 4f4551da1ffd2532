package editor

import (
	"slices"

	"github.com/nebrenner/basketball-play-author/internal/arrows"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

var idle arrows.Draft = arrows.Idle{}

// CreateArrow draws an arrow of kind from a token on the current frame with
// a default end point. A token carries at most one arrow per frame, so a
// second request for the same token is refused.
func (s *Store) CreateArrow(kind core.ArrowKind, fromTokenID string) (string, bool) {
	if !kind.Valid() {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.currentLocked()
	if f == nil {
		return "", false
	}
	start, ok := f.Tokens[fromTokenID]
	if !ok || s.sourceHasArrow(f, fromTokenID) {
		return "", false
	}

	a := s.geometry.New(s.newID(), kind, fromTokenID, start)
	s.addArrow(f, a)
	return a.ID, true
}

// UpdateArrowEndpoint moves the end of an arrow. Pass arrows that end close
// enough to another token are attached to it.
func (s *Store) UpdateArrowEndpoint(arrowID string, p core.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, f, ok := s.arrowLocked(arrowID)
	if !ok {
		return false
	}
	s.play.ArrowsByID[arrowID] = s.geometry.WithEndpoint(a, p, f.Tokens, s.play.TokenOrder())
	s.touch()
	return true
}

// UpdateArrowControlPoint bends an arrow through p.
func (s *Store) UpdateArrowControlPoint(arrowID string, p core.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, f, ok := s.arrowLocked(arrowID)
	if !ok {
		return false
	}
	s.play.ArrowsByID[arrowID] = s.geometry.WithControl(a, p, f.Tokens)
	s.touch()
	return true
}

// DeleteArrow removes an arrow from the play and from every frame that
// references it.
func (s *Store) DeleteArrow(arrowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil {
		return false
	}
	if _, ok := s.play.ArrowsByID[arrowID]; !ok {
		return false
	}
	delete(s.play.ArrowsByID, arrowID)
	for _, f := range s.play.Frames {
		f.Arrows = slices.DeleteFunc(f.Arrows, func(id string) bool { return id == arrowID })
	}
	s.touch()
	return true
}

// ArrowPath returns the drawable points of an arrow, resolved against the
// positions on the frame that owns it.
func (s *Store) ArrowPath(arrowID string) ([]core.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, f, ok := s.arrowLocked(arrowID)
	if !ok {
		return nil, false
	}
	return arrows.Resolve(a, f.Tokens), true
}

// Draft returns the arrow currently being drawn, if any.
func (s *Store) Draft() arrows.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// BeginArrow starts drawing an arrow from a token on the current frame.
func (s *Store) BeginArrow(kind core.ArrowKind, fromTokenID string) bool {
	if !kind.Valid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.currentLocked()
	if f == nil {
		return false
	}
	start, ok := f.Tokens[fromTokenID]
	if !ok || s.sourceHasArrow(f, fromTokenID) {
		return false
	}
	s.draft = arrows.Begin(kind, fromTokenID, start)
	return true
}

// UpdateArrowPreview moves the free end of the draft.
func (s *Store) UpdateArrowPreview(p core.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.draft.(arrows.Drawing)
	if !ok {
		return false
	}
	s.draft = d.WithPreview(p)
	return true
}

// CommitArrowToPoint finishes the draft at p. A pass has to end on a
// teammate; when p is not within reach of one the draft stays open and the
// call is refused.
func (s *Store) CommitArrowToPoint(p core.Point) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, f, ok := s.drawingLocked()
	if !ok {
		return "", false
	}
	a := s.geometry.New(s.newID(), d.Kind, d.From, d.Start)
	a = s.geometry.WithEndpoint(a, p, f.Tokens, s.play.TokenOrder())
	if a.Kind == core.ArrowPass && a.ToTokenID == "" {
		s.draft = d.WithPreview(p)
		return "", false
	}
	s.addArrow(f, a)
	s.draft = idle
	return a.ID, true
}

// CommitArrowToToken finishes the draft on another token.
func (s *Store) CommitArrowToToken(tokenID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, f, ok := s.drawingLocked()
	if !ok {
		return "", false
	}
	target, ok := f.Tokens[tokenID]
	if !ok || tokenID == d.From {
		return "", false
	}
	a := s.geometry.New(s.newID(), d.Kind, d.From, d.Start)
	a = s.geometry.WithEndpoint(a, target, f.Tokens, s.play.TokenOrder())
	if a.Kind == core.ArrowPass {
		a.ToTokenID = tokenID
		a.ToPoint = nil
		a.Points[len(a.Points)-1] = target
	}
	s.addArrow(f, a)
	s.draft = idle
	return a.ID, true
}

// CancelArrow drops the draft.
func (s *Store) CancelArrow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.draft.(arrows.Drawing); !ok {
		return false
	}
	s.draft = idle
	return true
}

// drawingLocked returns the open draft and the current frame. A draft whose
// source vanished or already has an arrow is discarded.
func (s *Store) drawingLocked() (arrows.Drawing, *core.Frame, bool) {
	d, ok := s.draft.(arrows.Drawing)
	if !ok {
		return arrows.Drawing{}, nil, false
	}
	f := s.currentLocked()
	if f == nil {
		s.draft = idle
		return arrows.Drawing{}, nil, false
	}
	if _, ok := f.Tokens[d.From]; !ok || s.sourceHasArrow(f, d.From) {
		s.draft = idle
		return arrows.Drawing{}, nil, false
	}
	return d, f, true
}

func (s *Store) addArrow(f *core.Frame, a core.Arrow) {
	s.play.ArrowsByID[a.ID] = a
	f.Arrows = append(f.Arrows, a.ID)
	s.touch()
}

func (s *Store) sourceHasArrow(f *core.Frame, tokenID string) bool {
	for _, a := range s.play.FrameArrows(f) {
		if a.From == tokenID {
			return true
		}
	}
	return false
}

// arrowLocked finds an arrow and the frame whose positions it should be
// resolved against: the frame it was drawn on, or the current frame for an
// arrow no frame references.
func (s *Store) arrowLocked(arrowID string) (core.Arrow, *core.Frame, bool) {
	if s.play == nil {
		return core.Arrow{}, nil, false
	}
	a, ok := s.play.ArrowsByID[arrowID]
	if !ok {
		return core.Arrow{}, nil, false
	}
	for _, f := range s.play.Frames {
		if f.HasArrow(arrowID) {
			return a, f, true
		}
	}
	f := s.currentLocked()
	if f == nil {
		return core.Arrow{}, nil, false
	}
	return a, f, true
}
