package editor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/cache"
	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/playback"
	"github.com/nebrenner/basketball-play-author/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAnimator settles every step at once and keeps what it was given.
type recordingAnimator struct {
	mu    sync.Mutex
	steps []playback.Step
}

func (a *recordingAnimator) Run(ctx context.Context, steps []playback.Step, after func(playback.Step) bool) (int, error) {
	done := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		a.mu.Lock()
		a.steps = append(a.steps, step)
		a.mu.Unlock()
		done++
		if after != nil && !after(step) {
			break
		}
	}
	return done, nil
}

// gatedAnimator blocks inside each step until released.
type gatedAnimator struct {
	started chan struct{}
	release chan struct{}
}

func (a *gatedAnimator) Run(ctx context.Context, steps []playback.Step, after func(playback.Step) bool) (int, error) {
	done := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		a.started <- struct{}{}
		<-a.release
		done++
		if after != nil && !after(step) {
			break
		}
	}
	return done, nil
}

func newAnimatedStore(t *testing.T, animator Animator, base time.Duration) *Store {
	t.Helper()
	s := New(Dependencies{
		Animator: animator,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Editor:   testEditorConfig(),
		Playback: config.PlaybackConfig{BaseDuration: base, Speed: 1},
		NewID:    sequentialIDs(),
	})
	s.InitDefaultPlay("Zipper")
	return s
}

func TestSetSpeed_Clamps(t *testing.T) {
	s := newPlayStore(t)
	assert.Equal(t, 4.0, s.SetSpeed(10))
	assert.Equal(t, 0.25, s.SetSpeed(0.01))
	assert.Equal(t, 1.5, s.SetSpeed(1.5))
	assert.Equal(t, 1.5, s.Speed())
}

func TestStepForward_ScalesDurationBySpeed(t *testing.T) {
	rec := &recordingAnimator{}
	s := newAnimatedStore(t, rec, 900*time.Millisecond)
	_, ok := s.AdvanceFrame()
	require.True(t, ok)
	require.True(t, s.SetCurrentFrameIndex(0))
	s.SetSpeed(2)

	moved, err := s.StepForward(context.Background())
	require.NoError(t, err)
	assert.True(t, moved)
	require.Len(t, rec.steps, 1)
	assert.Equal(t, 450*time.Millisecond, rec.steps[0].Duration)
	assert.Equal(t, 1, s.CurrentFrameIndex())

	moved, err = s.StepForward(context.Background())
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestStepForward_AnimatesHandles(t *testing.T) {
	registry := cache.NewNodeRegistry()
	runner, err := playback.NewRunner(registry, playback.WithFrameInterval(time.Millisecond))
	require.NoError(t, err)
	s := newAnimatedStore(t, runner, 10*time.Millisecond)

	id, ok := s.CreateArrow(core.ArrowCut, "P1")
	require.True(t, ok)
	require.True(t, s.UpdateArrowEndpoint(id, core.Point{X: 900, Y: 450}))
	_, ok = s.AdvanceFrame()
	require.True(t, ok)
	require.True(t, s.SetCurrentFrameIndex(0))

	handles := registry.RegisterFrame(currentFrame(t, s), playback.BallOffset(18))
	moved, err := s.StepForward(context.Background())
	require.NoError(t, err)
	require.True(t, moved)

	pos, _ := handles["P1"].Position()
	assert.Equal(t, core.Point{X: 900, Y: 450}, pos)
	ball, _ := handles[playback.BallID].Position()
	assert.Equal(t, core.Point{X: 900, Y: 450}.Add(playback.BallOffset(18)), ball)

	// untouched tokens get no updates
	_, updates := handles["P2"].Position()
	assert.Zero(t, updates)
}

func TestPlayAnimation_FollowsPlaybackOrder(t *testing.T) {
	rec := &recordingAnimator{}
	s := newAnimatedStore(t, rec, 10*time.Millisecond)
	root := currentFrame(t, s).ID
	ids, ok := s.BranchFrame()
	require.True(t, ok)
	require.True(t, s.SetCurrentFrameIndex(0))

	n, err := s.PlayAnimation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var visited []string
	for _, step := range rec.steps {
		visited = append(visited, step.FromFrameID+">"+step.ToFrameID)
	}
	assert.Equal(t, []string{
		root + ">" + ids[0],
		ids[0] + ">" + root,
		root + ">" + ids[1],
	}, visited)
	assert.Equal(t, []string{root, ids[1]}, s.BranchPath())
	assert.False(t, s.IsPlaying())
}

func TestPlayAnimation_StartsAtCurrentFrame(t *testing.T) {
	rec := &recordingAnimator{}
	s := newAnimatedStore(t, rec, 10*time.Millisecond)
	_, ok := s.AdvanceFrame()
	require.True(t, ok)
	last, ok := s.AdvanceFrame()
	require.True(t, ok)
	require.True(t, s.SetCurrentFrameIndex(1))

	n, err := s.PlayAnimation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f := currentFrame(t, s)
	assert.Equal(t, last, f.ID)
}

func TestPlayAnimation_NothingToPlay(t *testing.T) {
	s := newPlayStore(t)
	n, err := s.PlayAnimation(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	empty := newTestStore(t, nil)
	n, err = empty.PlayAnimation(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type playResult struct {
	n   int
	err error
}

func playAsync(s *Store) <-chan playResult {
	done := make(chan playResult, 1)
	go func() {
		n, err := s.PlayAnimation(context.Background())
		done <- playResult{n, err}
	}()
	return done
}

func waitPlayed(t *testing.T, done <-chan playResult) playResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not stop")
		return playResult{}
	}
}

func TestPauseAnimation_StopsBetweenSteps(t *testing.T) {
	gate := &gatedAnimator{started: make(chan struct{}), release: make(chan struct{})}
	s := newAnimatedStore(t, gate, 10*time.Millisecond)
	root := currentFrame(t, s).ID
	first, ok := s.AdvanceFrame()
	require.True(t, ok)
	for i := 0; i < 2; i++ {
		_, ok := s.AdvanceFrame()
		require.True(t, ok)
	}
	require.True(t, s.FocusFrameByID(root))

	done := playAsync(s)
	<-gate.started
	assert.True(t, s.IsPlaying())

	_, err := s.PlayAnimation(context.Background())
	assert.ErrorIs(t, err, ErrPlaying)
	_, err = s.StepForward(context.Background())
	assert.ErrorIs(t, err, ErrPlaying)

	require.True(t, s.PauseAnimation())
	assert.False(t, s.PauseAnimation(), "pause already pending")
	assert.True(t, s.IsPlaying(), "step still in flight")
	close(gate.release)

	r := waitPlayed(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.n)
	assert.False(t, s.IsPlaying())
	assert.False(t, s.PauseAnimation())
	// the cursor lands on the frame the in-flight step reached
	assert.Equal(t, first, currentFrame(t, s).ID)
}

func TestPauseAnimation_ReplayWaitsForInFlightStep(t *testing.T) {
	gate := &gatedAnimator{started: make(chan struct{}), release: make(chan struct{})}
	s := newAnimatedStore(t, gate, 10*time.Millisecond)
	root := currentFrame(t, s).ID
	for i := 0; i < 3; i++ {
		_, ok := s.AdvanceFrame()
		require.True(t, ok)
	}
	require.True(t, s.FocusFrameByID(root))

	done := playAsync(s)
	<-gate.started
	require.True(t, s.PauseAnimation())

	// a new run is refused until the paused one has settled
	_, err := s.PlayAnimation(context.Background())
	assert.ErrorIs(t, err, ErrPlaying)
	_, err = s.StepForward(context.Background())
	assert.ErrorIs(t, err, ErrPlaying)

	gate.release <- struct{}{}
	r := waitPlayed(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.n)
	assert.Equal(t, 1, s.CurrentFrameIndex())

	again := playAsync(s)
	<-gate.started
	assert.True(t, s.IsPlaying())
	require.True(t, s.PauseAnimation(), "second run can be paused")
	gate.release <- struct{}{}

	r = waitPlayed(t, again)
	require.NoError(t, r.err)
	assert.Equal(t, 1, r.n)
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 2, s.CurrentFrameIndex())
}

func TestPlayAnimation_ReplacedPlayStopsRun(t *testing.T) {
	gate := &gatedAnimator{started: make(chan struct{}), release: make(chan struct{})}
	s := newAnimatedStore(t, gate, 10*time.Millisecond)
	for i := 0; i < 2; i++ {
		_, ok := s.AdvanceFrame()
		require.True(t, ok)
	}
	require.True(t, s.SetCurrentFrameIndex(0))

	done := playAsync(s)
	<-gate.started
	s.InitDefaultPlay("Floppy")
	assert.True(t, s.IsPlaying())
	close(gate.release)

	r := waitPlayed(t, done)
	require.NoError(t, r.err)
	assert.False(t, s.IsPlaying())
	assert.Len(t, s.Play().Frames, 1)
	assert.Zero(t, s.CurrentFrameIndex())
}

func TestPlayAnimation_CallerCancel(t *testing.T) {
	rec := &recordingAnimator{}
	s := newAnimatedStore(t, rec, 10*time.Millisecond)
	_, ok := s.AdvanceFrame()
	require.True(t, ok)
	require.True(t, s.SetCurrentFrameIndex(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.PlayAnimation(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.IsPlaying())
}
