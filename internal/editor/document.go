package editor

import (
	"strings"

	"github.com/nebrenner/basketball-play-author/internal/framegraph"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// DefaultPlayName is used when a play is created without a name.
const DefaultPlayName = "New Play"

// InitDefaultPlay replaces the current document with a single-frame play
// holding the default roster for the store's court type. P1 starts with the
// ball. The new play is not dirty.
func (s *Store) InitDefaultPlay(name string) {
	if strings.TrimSpace(name) == "" {
		name = DefaultPlayName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachRunLocked()

	now := s.now()
	root := &core.Frame{
		ID:           s.newID(),
		Tokens:       DefaultPositions(s.stageW, s.stageH, s.courtType),
		Arrows:       []string{},
		Possession:   string(core.P1),
		NextFrameIDs: []string{},
	}
	s.play = framegraph.Normalize(&core.Play{
		ID:         s.newID(),
		Meta:       core.Meta{Name: name, CreatedAt: now, UpdatedAt: now},
		Tokens:     DefaultTokens(),
		Frames:     []*core.Frame{root},
		ArrowsByID: map[string]core.Arrow{},
		Possession: string(core.P1),
		CourtType:  s.courtType,
	})
	s.branchPath = []string{root.ID}
	s.index = 0
	s.draft = idle
	s.dirty = false
	s.publish()
	s.log.Info("play created", "play", s.play.ID, "court", s.courtType)
}

// SetCourtType switches the court layout. A play that still has a single
// frame is re-laid out for the new court; once frames have been added the
// positions are left alone.
func (s *Store) SetCourtType(court core.CourtType) bool {
	if court != core.CourtHalf && court != core.CourtFull {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.courtType == court {
		return false
	}
	s.courtType = court
	if s.play == nil {
		return true
	}

	s.play.CourtType = court
	if len(s.play.Frames) == 1 {
		f := s.play.Frames[0]
		f.Tokens = DefaultPositions(s.stageW, s.stageH, court)
		if f.Possession == "" {
			f.Possession = s.play.Possession
		}
	}
	s.touch()
	return true
}

// SetPlayName renames the play.
func (s *Store) SetPlayName(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil || s.play.Meta.Name == name {
		return false
	}
	s.play.Meta.Name = name
	s.touch()
	return true
}

// SetTokenPosition moves a token on the current frame, snapping to the grid
// when enabled. Unknown tokens are ignored.
func (s *Store) SetTokenPosition(tokenID string, p core.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.currentLocked()
	if f == nil || !s.hasToken(tokenID) {
		return false
	}
	f.Tokens[tokenID] = s.geometry.Snap(p)
	s.touch()
	return true
}

// SetPossession gives the ball to tokenID on the current frame. An empty id
// leaves the ball loose.
func (s *Store) SetPossession(tokenID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.currentLocked()
	if f == nil {
		return false
	}
	if tokenID != "" && !s.hasToken(tokenID) {
		return false
	}
	f.Possession = tokenID
	s.play.Possession = tokenID
	s.touch()
	return true
}

// SetCurrentFrameNote sets the coaching note of the current frame. An empty
// note clears it.
func (s *Store) SetCurrentFrameNote(note string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.currentLocked()
	if f == nil || f.Note == note {
		return false
	}
	f.Note = note
	s.touch()
	return true
}

// SetCurrentFrameTitle sets a custom title on the current frame. A blank
// title clears it so the computed step title is shown again.
func (s *Store) SetCurrentFrameTitle(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.currentLocked()
	if f == nil {
		return false
	}
	if strings.TrimSpace(title) == "" {
		if f.Title == "" {
			return false
		}
		f.Title = ""
		s.touch()
		return true
	}
	if f.Title == title {
		return false
	}
	f.Title = title
	s.touch()
	return true
}

// SetFrameOptionLabel names the branch option that frameID represents. A
// blank label clears it.
func (s *Store) SetFrameOptionLabel(frameID, label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil {
		return false
	}
	f, ok := s.play.Frame(frameID)
	if !ok {
		return false
	}
	if strings.TrimSpace(label) == "" {
		label = ""
	}
	if f.OptionLabel == label {
		return false
	}
	f.OptionLabel = label
	s.touch()
	return true
}

func (s *Store) hasToken(id string) bool {
	for _, t := range s.play.Tokens {
		if t.ID == id {
			return true
		}
	}
	return false
}
