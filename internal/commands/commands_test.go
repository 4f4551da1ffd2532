package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/config"
	"github.com/nebrenner/basketball-play-author/internal/dispatcher"
	"github.com/nebrenner/basketball-play-author/internal/editor"
	"github.com/nebrenner/basketball-play-author/internal/labels"
	"github.com/nebrenner/basketball-play-author/internal/playback"
	"github.com/nebrenner/basketball-play-author/internal/storage/memory"
	"github.com/nebrenner/basketball-play-author/internal/util"
	"github.com/nebrenner/basketball-play-author/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, keysAndValues ...any) { l.add(msg) }
func (l *mockLogger) Info(msg string, keysAndValues ...any)  { l.add(msg) }
func (l *mockLogger) Error(msg string, keysAndValues ...any) { l.add(msg) }

func (l *mockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

type harness struct {
	d       *dispatcher.Dispatcher
	store   *editor.Store
	backend *memory.Backend
}

func newHarness(t *testing.T, animator editor.Animator) *harness {
	t.Helper()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	store := editor.New(editor.Dependencies{
		Backend:  backend,
		Animator: animator,
		Logger:   discard,
		Editor: config.EditorConfig{
			StageWidth:  1200,
			StageHeight: 760,
			SnapToGrid:  true,
			GridStep:    10,
			TokenRadius: 18,
		},
		Playback: config.PlaybackConfig{BaseDuration: 10 * time.Millisecond},
	})

	d, err := dispatcher.New(&mockLogger{})
	require.NoError(t, err)
	t.Cleanup(d.Close)

	NewManager(Dependencies{Store: store, Logger: discard}).RegisterHandlers(d)
	return &harness{d: d, store: store, backend: backend}
}

// run dispatches a command line the way the REPL does.
func (h *harness) run(line string) (any, error) {
	args := util.SplitArgs(line)
	return h.d.Dispatch(dispatcher.NewEvent(context.Background(), args[0], args[1:]...))
}

func (h *harness) mustRun(t *testing.T, line string) any {
	t.Helper()
	res, err := h.run(line)
	require.NoError(t, err, line)
	return res
}

func TestRegisterHandlers_AllCommands(t *testing.T) {
	h := newHarness(t, nil)
	for _, cmd := range []string{
		":PLAY:NEW:", ":PLAY:NAME:", ":PLAY:COURT:", ":EDITOR:SNAP:",
		":TOKEN:MOVE:", ":TOKEN:POSSESSION:", ":FRAME:NOTE:", ":FRAME:TITLE:", ":FRAME:OPTION:",
		":ARROW:CREATE:", ":ARROW:END:", ":ARROW:CONTROL:", ":ARROW:DELETE:",
		":ARROW:BEGIN:", ":ARROW:PREVIEW:", ":ARROW:COMMIT:", ":ARROW:COMMIT:TOKEN:", ":ARROW:CANCEL:",
		":FRAME:ADVANCE:", ":FRAME:BRANCH:", ":FRAME:INDEX:", ":FRAME:FOCUS:", ":FRAME:DELETE:",
		":PLAYBACK:SPEED:", ":PLAYBACK:STEP:", ":PLAYBACK:PLAY:", ":PLAYBACK:PAUSE:",
		":PLAY:SAVE:", ":PLAY:SAVEAS:", ":PLAY:LOAD:", ":PLAY:IMPORT:", ":PLAY:EXPORT:",
		":PLAY:LIST:", ":PLAY:DELETE:",
		":VIEW:FRAME:", ":VIEW:PATH:", ":VIEW:LABELS:", ":VIEW:ORDER:", ":VIEW:OPTIONS:",
		":VIEW:ARROW:", ":VIEW:JSON:",
	} {
		assert.True(t, h.d.HasHandler(cmd), cmd)
	}
}

func TestNewPlayAndAdvance(t *testing.T) {
	h := newHarness(t, nil)

	id := h.mustRun(t, `:PLAY:NEW: "Chicago Action"`)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Chicago Action", h.store.Play().Meta.Name)

	next := h.mustRun(t, ":FRAME:ADVANCE:")
	assert.Equal(t, 1, h.store.CurrentFrameIndex())

	cur := h.mustRun(t, ":VIEW:PATH:").(Cursor)
	assert.Equal(t, next, cur.Path[1])
	assert.Equal(t, 1, cur.Index)
}

func TestPassThenAdvance(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")
	p2 := h.mustRun(t, ":VIEW:FRAME:").(*core.Frame).Tokens["P2"]

	arrowID := h.mustRun(t, ":ARROW:CREATE: pass P1").(string)
	h.mustRun(t, ":ARROW:END: "+arrowID+" "+formatPoint(p2))
	h.mustRun(t, ":FRAME:ADVANCE:")

	f := h.mustRun(t, ":VIEW:FRAME:").(*core.Frame)
	assert.Equal(t, "P2", f.Possession)
}

func TestArrowControlAcceptsPolyline(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")
	arrowID := h.mustRun(t, ":ARROW:CREATE: cut P1").(string)

	h.mustRun(t, ":ARROW:CONTROL: "+arrowID+" [[0,0],[300,250],[0,0]]")
	path := h.mustRun(t, ":VIEW:ARROW: "+arrowID).([]core.Point)
	require.Len(t, path, 3)
	assert.Equal(t, core.Point{X: 300, Y: 250}, path[1])

	_, err := h.run(":ARROW:CONTROL: " + arrowID + " [[0,0],[1,1]]")
	assert.ErrorIs(t, err, ErrBadArgs)
}

func TestDraftCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")

	h.mustRun(t, ":ARROW:BEGIN: cut P3")
	h.mustRun(t, ":ARROW:PREVIEW: 300 500")
	id := h.mustRun(t, ":ARROW:COMMIT: 301,502").(string)
	a := h.store.Play().ArrowsByID[id]
	require.NotNil(t, a.ToPoint)
	assert.Equal(t, core.Point{X: 300, Y: 500}, *a.ToPoint)

	h.mustRun(t, ":ARROW:BEGIN: pass P1")
	id = h.mustRun(t, ":ARROW:COMMIT:TOKEN: P4").(string)
	assert.Equal(t, "P4", h.store.Play().ArrowsByID[id].ToTokenID)

	path := h.mustRun(t, ":VIEW:ARROW: "+id).([]core.Point)
	assert.Len(t, path, 3)
	flat := h.mustRun(t, ":VIEW:ARROW: "+id+" straight").([]core.Point)
	assert.Equal(t, []core.Point{path[0], path[2]}, flat)
	_, err := h.run(":VIEW:ARROW: " + id + " zigzag")
	assert.ErrorIs(t, err, ErrBadArgs)
	// the stored arrow keeps its control point
	assert.Len(t, h.mustRun(t, ":VIEW:ARROW: "+id).([]core.Point), 3)

	_, err = h.run(":ARROW:CANCEL:")
	assert.ErrorIs(t, err, ErrRefused)
}

func TestRefusedActions(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")

	for _, line := range []string{
		":FRAME:DELETE:",
		":ARROW:DELETE: nope",
		":FRAME:FOCUS: nope",
		":TOKEN:MOVE: P9 1,1",
		":PLAYBACK:STEP:",
		":PLAY:COURT: half",
	} {
		_, err := h.run(line)
		assert.ErrorIs(t, err, ErrRefused, line)
	}
}

func TestBadArguments(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")

	for _, line := range []string{
		":TOKEN:MOVE: P1",
		":TOKEN:MOVE: P1 x,y",
		":ARROW:CREATE: lob P1",
		":PLAY:COURT: arena",
		":FRAME:INDEX: 1.5",
		":FRAME:INDEX: one",
		":PLAYBACK:SPEED: fast",
		":EDITOR:SNAP: maybe",
		":PLAY:LOAD:",
	} {
		_, err := h.run(line)
		assert.ErrorIs(t, err, ErrBadArgs, line)
	}
}

func TestFrameCommands(t *testing.T) {
	h := newHarness(t, nil)
	playID := h.mustRun(t, ":PLAY:NEW:").(string)
	rootFrame := h.mustRun(t, ":VIEW:FRAME:").(*core.Frame)
	root := rootFrame.ID
	assert.NotEqual(t, playID, root)

	ids := h.mustRun(t, ":FRAME:BRANCH:").([]string)
	require.Len(t, ids, 2)

	got := h.mustRun(t, ":VIEW:LABELS:").(map[string]string)
	assert.Equal(t, "1a", got[ids[0]])
	assert.Equal(t, "1b", got[ids[1]])

	h.mustRun(t, ":FRAME:OPTION: "+ids[1]+" Flare to the corner")
	opts := h.mustRun(t, ":VIEW:OPTIONS: "+root).([]labels.Option)
	require.Len(t, opts, 2)
	assert.Equal(t, "Flare to the corner", opts[1].Title)

	assert.Equal(t, 0, h.mustRun(t, ":FRAME:INDEX: 0.00"))
	h.mustRun(t, ":FRAME:FOCUS: "+ids[1])
	h.mustRun(t, ":FRAME:TITLE: Weak side flare")
	h.mustRun(t, ":FRAME:NOTE: 2 relocates")
	f := h.mustRun(t, ":VIEW:FRAME:").(*core.Frame)
	assert.Equal(t, "Weak side flare", f.Title)
	assert.Equal(t, "2 relocates", f.Note)

	h.mustRun(t, ":FRAME:DELETE:")
	order := h.mustRun(t, ":VIEW:ORDER:").([]string)
	assert.Equal(t, []string{root, ids[0]}, order)
}

func TestSettingsCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")

	assert.Equal(t, 4.0, h.mustRun(t, ":PLAYBACK:SPEED: 9"))
	assert.Equal(t, false, h.mustRun(t, ":EDITOR:SNAP: off"))
	h.mustRun(t, ":TOKEN:MOVE: P1 101.5 203.25")
	f := h.mustRun(t, ":VIEW:FRAME:").(*core.Frame)
	assert.Equal(t, core.Point{X: 101.5, Y: 203.25}, f.Tokens["P1"])

	h.mustRun(t, ":TOKEN:POSSESSION: P5")
	h.mustRun(t, ":TOKEN:POSSESSION:")
	assert.Empty(t, h.store.Play().Possession)

	h.mustRun(t, ":PLAY:COURT: FULL")
	assert.Equal(t, core.CourtFull, h.store.CourtType())
}

func TestPersistenceCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW:")

	id := h.mustRun(t, ":PLAY:SAVE: Spain Pick and Roll").(string)
	copyID := h.mustRun(t, `:PLAY:SAVEAS: "Spain Copy"`).(string)
	assert.NotEqual(t, id, copyID)

	list := h.mustRun(t, ":PLAY:LIST:").([]core.PlaySummary)
	require.Len(t, list, 2)

	assert.Equal(t, "Spain Copy", h.mustRun(t, ":PLAY:LOAD: "+copyID))
	h.mustRun(t, ":PLAY:DELETE: "+id)
	list = h.mustRun(t, ":PLAY:LIST:").([]core.PlaySummary)
	assert.Len(t, list, 1)

	path := h.mustRun(t, ":PLAY:EXPORT:").(string)
	assert.FileExists(t, path)

	raw := h.mustRun(t, ":VIEW:JSON:").(string)
	var p core.Play
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, copyID, p.ID)
}

func TestImportCommand(t *testing.T) {
	h := newHarness(t, nil)
	h.mustRun(t, ":PLAY:NEW: Source")
	h.mustRun(t, ":FRAME:ADVANCE:")
	raw := h.mustRun(t, ":VIEW:JSON:").(string)

	path := filepath.Join(t.TempDir(), "source play.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	other := newHarness(t, nil)
	other.mustRun(t, `:PLAY:IMPORT: "`+path+`"`)
	assert.Len(t, other.store.Play().Frames, 2)

	_, err := other.run(":PLAY:IMPORT: /does/not/exist.json")
	assert.Error(t, err)
}

// gate blocks each step until released.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func (g *gate) Run(ctx context.Context, steps []playback.Step, after func(playback.Step) bool) (int, error) {
	done := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		g.started <- struct{}{}
		<-g.release
		done++
		if !after(step) {
			break
		}
	}
	return done, nil
}

func TestPlayIsQueuedAndPausable(t *testing.T) {
	g := &gate{started: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, g)
	h.mustRun(t, ":PLAY:NEW:")
	h.mustRun(t, ":FRAME:ADVANCE:")
	h.mustRun(t, ":FRAME:ADVANCE:")
	h.mustRun(t, ":FRAME:INDEX: 0")

	res := h.mustRun(t, ":PLAYBACK:PLAY:")
	assert.Equal(t, dispatcher.Queued, res)

	<-g.started
	h.mustRun(t, ":PLAYBACK:PAUSE:")
	close(g.release)

	assert.Eventually(t, func() bool { return !h.store.IsPlaying() }, 2*time.Second, 5*time.Millisecond)
	_, err := h.run(":PLAYBACK:PAUSE:")
	assert.True(t, errors.Is(err, ErrRefused))
}

func formatPoint(p core.Point) string {
	raw, _ := json.Marshal(p.X)
	y, _ := json.Marshal(p.Y)
	return string(raw) + "," + string(y)
}
