package editor

import (
	"slices"

	"github.com/nebrenner/basketball-play-author/internal/framegraph"
	"github.com/nebrenner/basketball-play-author/internal/labels"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// AdvanceFrame appends the frame that follows the current one and moves the
// cursor onto it. Advancing from a frame that already has a continuation
// starts a new branch; the rest of the old branch drops off the cursor path.
func (s *Store) AdvanceFrame() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.currentLocked()
	if current == nil {
		return "", false
	}
	next, ok := s.childLocked(current)
	if !ok {
		return "", false
	}
	s.moveCursorToChild(next)
	s.log.Debug("frame advanced", "from", current.ID, "to", next.ID)
	return next.ID, true
}

// BranchFrame adds two continuations of the current frame and moves the
// cursor onto the first.
func (s *Store) BranchFrame() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.currentLocked()
	if current == nil {
		return nil, false
	}
	first, ok := s.childLocked(current)
	if !ok {
		return nil, false
	}
	second, ok := s.childLocked(current)
	if !ok {
		return nil, false
	}
	s.moveCursorToChild(first)
	s.log.Debug("frame branched", "from", current.ID, "options", []string{first.ID, second.ID})
	return []string{first.ID, second.ID}, true
}

// childLocked computes and links a new child of parent.
func (s *Store) childLocked(parent *core.Frame) (*core.Frame, bool) {
	next, ok := s.engine.Advance(s.play, parent.ID)
	if !ok {
		return nil, false
	}
	next.ParentID = parent.ID
	s.play.Frames = append(s.play.Frames, next)
	if !slices.Contains(parent.NextFrameIDs, next.ID) {
		parent.NextFrameIDs = append(parent.NextFrameIDs, next.ID)
	}
	return next, true
}

func (s *Store) moveCursorToChild(child *core.Frame) {
	idx := s.clampIndex(s.index)
	path := append(slices.Clone(s.branchPath[:idx+1]), child.ID)
	s.branchPath = path
	s.index = len(path) - 1
	s.draft = idle
	s.mirrorPossession(child)
	s.touch()
	s.publish()
}

// SetCurrentFrameIndex moves the cursor along the branch path. Out of range
// indexes are clamped.
func (s *Store) SetCurrentFrameIndex(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil || len(s.branchPath) == 0 {
		return false
	}
	s.index = s.clampIndex(i)
	s.draft = idle
	s.mirrorPossession(s.currentLocked())
	s.publish()
	return true
}

// FocusFrameByID moves the cursor to any frame of the play, replacing the
// branch path with the path from the root to it.
func (s *Store) FocusFrameByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil {
		return false
	}
	f, ok := s.play.Frame(id)
	if !ok {
		return false
	}
	path := framegraph.PathTo(s.play, id)
	if len(path) == 0 {
		return false
	}
	s.branchPath = path
	s.index = len(path) - 1
	s.draft = idle
	s.mirrorPossession(f)
	s.publish()
	return true
}

// DeleteLastFrame removes the current frame when it is the last one on the
// cursor path, has no continuations and is not the root. Arrows drawn only on
// that frame are removed with it.
func (s *Store) DeleteLastFrame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.play == nil || len(s.branchPath) == 0 {
		return false
	}
	idx := s.clampIndex(s.index)
	if idx != len(s.branchPath)-1 {
		return false
	}
	f := s.currentLocked()
	if f == nil || len(f.NextFrameIDs) > 0 || f.IsRoot() {
		return false
	}

	s.play.Frames = slices.DeleteFunc(s.play.Frames, func(x *core.Frame) bool { return x.ID == f.ID })
	if parent, ok := s.play.Frame(f.ParentID); ok {
		parent.NextFrameIDs = slices.DeleteFunc(parent.NextFrameIDs, func(id string) bool { return id == f.ID })
	}
	for _, arrowID := range f.Arrows {
		if !s.arrowReferenced(arrowID) {
			delete(s.play.ArrowsByID, arrowID)
		}
	}

	s.branchPath = s.branchPath[:len(s.branchPath)-1]
	s.index = s.clampIndex(len(s.branchPath) - 1)
	s.draft = idle
	s.mirrorPossession(s.currentLocked())
	s.touch()
	s.publish()
	s.log.Debug("frame deleted", "frame", f.ID)
	return true
}

func (s *Store) arrowReferenced(arrowID string) bool {
	for _, f := range s.play.Frames {
		if f.HasArrow(arrowID) {
			return true
		}
	}
	return false
}

// Labels returns the step label of every frame.
func (s *Store) Labels() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.play == nil {
		return map[string]string{}
	}
	return labels.ComputeStepLabels(s.play)
}

// StepTitle is the display title of a frame: its custom title or the
// computed default.
func (s *Store) StepTitle(frameID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.play == nil {
		return "", false
	}
	f, ok := s.play.Frame(frameID)
	if !ok {
		return "", false
	}
	return labels.FormatStepTitle(f, labels.ComputeStepLabels(s.play)[frameID]), true
}

// Tree returns the nested frame tree of a copy of the play.
func (s *Store) Tree() []*framegraph.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.play == nil {
		return nil
	}
	return framegraph.BuildTree(s.play.Clone())
}

// BranchOptions lists the continuations of a branching frame.
func (s *Store) BranchOptions(frameID string) []labels.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.play == nil {
		return nil
	}
	return labels.BranchOptions(s.play, frameID)
}

// PlaybackOrder is the order frames are visited during full playback.
func (s *Store) PlaybackOrder() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.play == nil {
		return nil
	}
	return framegraph.PlaybackOrder(s.play)
}
