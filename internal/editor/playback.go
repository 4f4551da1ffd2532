package editor

import (
	"context"
	"errors"
	"slices"

	"github.com/nebrenner/basketball-play-author/internal/framegraph"
	"github.com/nebrenner/basketball-play-author/internal/playback"
)

// instantAnimator settles every step immediately. It is used when the store
// has no animation runtime attached.
type instantAnimator struct{}

func (instantAnimator) Run(ctx context.Context, steps []playback.Step, after func(playback.Step) bool) (int, error) {
	done := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		done++
		if after != nil && !after(step) {
			break
		}
	}
	return done, nil
}

// SetSpeed sets the playback multiplier, clamped to the supported range, and
// returns the value applied.
func (s *Store) SetSpeed(mult float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = playback.ClampSpeed(mult)
	return s.speed
}

// Speed is the playback multiplier.
func (s *Store) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speed
}

// playRun is one call into the animator. It stays installed on the store
// until the animator returns, so a paused run still blocks a new one while
// its last step is in flight.
type playRun struct {
	cancel   context.CancelFunc
	stopped  bool
	detached bool // the play was replaced underneath the run
}

func (r *playRun) stop() {
	r.stopped = true
	r.cancel()
}

// beginLocked installs a new run. The caller holds s.mu.
func (s *Store) beginLocked(ctx context.Context) (*playRun, context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	run := &playRun{cancel: cancel}
	s.run = run
	return run, runCtx
}

// detachRunLocked stops a running animation whose play is being replaced.
func (s *Store) detachRunLocked() {
	if s.run != nil {
		s.run.detached = true
		s.run.stop()
	}
}

func (s *Store) end(run *playRun) {
	s.mu.Lock()
	if s.run == run {
		s.run = nil
	}
	s.mu.Unlock()
	run.cancel()
}

// IsPlaying reports whether an animation is running. It stays true after
// PauseAnimation until the step in flight has settled.
func (s *Store) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run != nil
}

// StepForward animates from the current frame to the next one on the branch
// path and moves the cursor there. It returns false at the end of the path.
func (s *Store) StepForward(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return false, ErrPlaying
	}
	step, ok := s.stepAlongPathLocked()
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	run, runCtx := s.beginLocked(ctx)
	s.mu.Unlock()
	defer s.end(run)

	if _, err := s.animator.Run(runCtx, []playback.Step{step}, nil); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return false, nil
		}
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if run.detached || s.play == nil {
		return false, nil
	}
	idx := s.clampIndex(s.index)
	if idx+1 >= len(s.branchPath) || s.branchPath[idx+1] != step.ToFrameID {
		return false, nil
	}
	s.index = idx + 1
	s.mirrorPossession(s.currentLocked())
	s.publish()
	return true, nil
}

func (s *Store) stepAlongPathLocked() (playback.Step, bool) {
	if s.play == nil || len(s.branchPath) == 0 {
		return playback.Step{}, false
	}
	idx := s.clampIndex(s.index)
	if idx+1 >= len(s.branchPath) {
		return playback.Step{}, false
	}
	return s.stepLocked(s.branchPath[idx], s.branchPath[idx+1])
}

func (s *Store) stepLocked(fromID, toID string) (playback.Step, bool) {
	from, ok := s.play.Frame(fromID)
	if !ok {
		return playback.Step{}, false
	}
	to, ok := s.play.Frame(toID)
	if !ok {
		return playback.Step{}, false
	}
	d := playback.StepDuration(s.baseDuration, s.speed)
	return s.sequencer.Step(s.play, from, to, d), true
}

// PlayAnimation plays the whole play in playback order starting from the
// current frame, following the cursor as each step settles. It blocks until
// the last step finishes, PauseAnimation is called or ctx is cancelled, and
// returns the number of steps played. A pause is not an error.
func (s *Store) PlayAnimation(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return 0, ErrPlaying
	}
	if s.play == nil {
		s.mu.Unlock()
		return 0, nil
	}
	steps := s.playbackStepsLocked()
	if len(steps) == 0 {
		s.mu.Unlock()
		return 0, nil
	}
	run, runCtx := s.beginLocked(ctx)
	speed := s.speed
	s.mu.Unlock()

	s.log.InfoContext(ctx, "playback started", "steps", len(steps), "speed", speed)
	n, err := s.animator.Run(runCtx, steps, func(step playback.Step) bool {
		return s.settle(run, step)
	})
	s.end(run)

	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = nil
	}
	s.log.InfoContext(ctx, "playback finished", "played", n, "error", err)
	return n, err
}

func (s *Store) playbackStepsLocked() []playback.Step {
	order := framegraph.PlaybackOrder(s.play)
	if len(order) < 2 {
		return nil
	}
	start := 0
	if f := s.currentLocked(); f != nil {
		if i := slices.Index(order, f.ID); i >= 0 {
			start = i
		}
	}
	steps := make([]playback.Step, 0, len(order)-start-1)
	for i := start; i < len(order)-1; i++ {
		if step, ok := s.stepLocked(order[i], order[i+1]); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

// settle moves the cursor onto the frame a step arrived at. It returns false
// once the run has been paused, after the cursor has caught up with the step
// that was in flight.
func (s *Store) settle(run *playRun, step playback.Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != run || run.detached || s.play == nil {
		return false
	}
	if to, ok := s.play.Frame(step.ToFrameID); ok {
		if path := framegraph.PathTo(s.play, to.ID); len(path) > 0 {
			s.branchPath = path
			s.index = len(path) - 1
		}
		s.mirrorPossession(to)
		s.publish()
	}
	return !run.stopped
}

// PauseAnimation stops a running animation once the step in flight has
// settled. It returns false when nothing is running or a pause is already
// pending.
func (s *Store) PauseAnimation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil || s.run.stopped {
		return false
	}
	s.run.stop()
	return true
}
