// Package editor owns the play being authored: the document itself, the
// navigation cursor, the arrow draft, playback state and persistence. Every
// user action is a method on Store and is applied atomically under one lock.
//
// Policy violations (stale ids, deleting a non-leaf frame, acting without a
// play) are refused and reported through a false return rather than an
// error. Errors are reserved for persistence and parsing failures.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nebrenner/basketball-play-author/internal/arrows"
	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/engine"
	"github.com/nebrenner/basketball-play-author/internal/playback"
	"github.com/nebrenner/basketball-play-author/internal/storage"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

var (
	// ErrNoPlay is returned by persistence calls made before a play exists.
	ErrNoPlay = errors.New("no play loaded")
	// ErrNoBackend is returned when persistence is used without a backend.
	ErrNoBackend = errors.New("no storage backend configured")
	// ErrNameRequired is returned when saving with a blank name.
	ErrNameRequired = errors.New("play name is required")
	// ErrPlaying is returned when playback is requested while it is running.
	ErrPlaying = errors.New("playback already running")
	// ErrExportUnsupported is returned when the backend cannot export files.
	ErrExportUnsupported = errors.New("storage backend cannot export")
)

// Animator runs playback steps. *playback.Runner implements it.
type Animator interface {
	Run(ctx context.Context, steps []playback.Step, after func(playback.Step) bool) (int, error)
}

// Dependencies holds everything the Store needs. Only Editor and Playback
// are required; the rest default to sensible values.
type Dependencies struct {
	Backend  storage.Backend
	Animator Animator
	Logger   *slog.Logger
	Editor   config.EditorConfig
	Playback config.PlaybackConfig
	Now      func() time.Time
	NewID    func() string
}

// logState is published after every mutation for lock-free log enrichment.
type logState struct {
	playID  string
	frameID string
}

// Store is the editor orchestrator.
type Store struct {
	backend  storage.Backend
	animator Animator
	log      *slog.Logger
	now      func() time.Time
	newID    func() string

	geometry  arrows.Geometry
	sequencer playback.Sequencer
	engine    *engine.Engine
	stageW    float64
	stageH    float64

	mu         sync.RWMutex
	play       *core.Play
	courtType  core.CourtType
	branchPath []string
	index      int
	draft      arrows.Draft
	dirty      bool

	run          *playRun
	speed        float64
	baseDuration time.Duration

	logAttrs atomic.Pointer[logState]
}

// New creates a Store. No play exists until InitDefaultPlay, ImportPlay or
// LoadPlay is called.
func New(deps Dependencies) *Store {
	s := &Store{
		backend:  deps.Backend,
		animator: deps.Animator,
		log:      deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
		draft:    arrows.Idle{},
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.animator == nil {
		s.animator = instantAnimator{}
	}

	ed := deps.Editor
	defaults := arrows.DefaultGeometry()
	s.geometry = arrows.Geometry{
		StageWidth:    orDefault(ed.StageWidth, defaults.StageWidth),
		StageHeight:   orDefault(ed.StageHeight, defaults.StageHeight),
		TokenRadius:   orDefault(ed.TokenRadius, defaults.TokenRadius),
		DefaultLength: orDefault(ed.DefaultArrowLength, defaults.DefaultLength),
		CaptureFactor: orDefault(ed.CaptureRadiusFactor, defaults.CaptureFactor),
		GridStep:      orDefault(ed.GridStep, defaults.GridStep),
		SnapToGrid:    ed.SnapToGrid,
	}
	s.stageW, s.stageH = s.geometry.StageWidth, s.geometry.StageHeight
	s.sequencer = playback.Sequencer{TokenRadius: s.geometry.TokenRadius}
	s.engine = engine.New(engine.WithIDFunc(s.newID))

	s.courtType = core.CourtType(ed.CourtType)
	if s.courtType != core.CourtFull {
		s.courtType = core.CourtHalf
	}

	s.baseDuration = deps.Playback.BaseDuration
	if s.baseDuration <= 0 {
		s.baseDuration = 900 * time.Millisecond
	}
	s.speed = 1
	if deps.Playback.Speed > 0 {
		s.speed = playback.ClampSpeed(deps.Playback.Speed)
	}

	s.logAttrs.Store(&logState{})
	return s
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// LogAttrs describes the play and frame being edited. It never takes the
// store lock and is safe to use as a logging.ContextProvider.
func (s *Store) LogAttrs() []slog.Attr {
	st := s.logAttrs.Load()
	if st == nil || st.playID == "" {
		return nil
	}
	return []slog.Attr{slog.String("play", st.playID), slog.String("frame", st.frameID)}
}

// publish refreshes LogAttrs. Callers hold the write lock.
func (s *Store) publish() {
	st := &logState{}
	if s.play != nil {
		st.playID = s.play.ID
		if f := s.currentLocked(); f != nil {
			st.frameID = f.ID
		}
	}
	s.logAttrs.Store(st)
}

// touch bumps updatedAt and marks the document dirty.
func (s *Store) touch() {
	if s.play == nil {
		return
	}
	s.play.Meta.UpdatedAt = s.now()
	s.dirty = true
}

// clampIndex keeps i inside the branch path.
func (s *Store) clampIndex(i int) int {
	if len(s.branchPath) == 0 || i < 0 {
		return 0
	}
	if i > len(s.branchPath)-1 {
		return len(s.branchPath) - 1
	}
	return i
}

// currentLocked returns the live frame at the cursor or nil.
func (s *Store) currentLocked() *core.Frame {
	if s.play == nil || len(s.branchPath) == 0 {
		return nil
	}
	f, ok := s.play.Frame(s.branchPath[s.clampIndex(s.index)])
	if !ok {
		return nil
	}
	return f
}

// mirrorPossession copies the frame's possession to the play-level cache.
func (s *Store) mirrorPossession(f *core.Frame) {
	if s.play != nil && f != nil {
		s.play.Possession = f.Possession
	}
}

// Play returns a deep copy of the document, or nil.
func (s *Store) Play() *core.Play {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.play.Clone()
}

// HasPlay reports whether a document is loaded.
func (s *Store) HasPlay() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.play != nil
}

// CurrentFrame returns a copy of the frame at the cursor.
func (s *Store) CurrentFrame() (*core.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.currentLocked()
	if f == nil {
		return nil, false
	}
	return f.Clone(), true
}

// CurrentFrameIndex is the cursor position within BranchPath.
func (s *Store) CurrentFrameIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clampIndex(s.index)
}

// BranchPath returns the frame ids from the root to the end of the branch
// being viewed.
func (s *Store) BranchPath() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.branchPath...)
}

// Dirty reports unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// CourtType is the court layout used for new plays.
func (s *Store) CourtType() core.CourtType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courtType
}

// SnapToGrid reports whether positions are grid snapped.
func (s *Store) SnapToGrid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.geometry.SnapToGrid
}

// SetSnap toggles grid snapping.
func (s *Store) SetSnap(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry.SnapToGrid = enabled
}
