// Package commands binds editor actions to dispatcher commands so any input
// layer (a REPL, a script file, a socket) can drive the editor with plain
// string events such as ":FRAME:ADVANCE:".
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nebrenner/basketball-play-author/internal/dispatcher"
	"github.com/nebrenner/basketball-play-author/internal/editor"
	"github.com/nebrenner/basketball-play-author/internal/storage/memory"
)

var (
	// ErrRefused is returned when the editor declined an action, e.g. a stale
	// id or deleting a frame that still has continuations.
	ErrRefused = errors.New("action refused")
	// ErrBadArgs is returned when command arguments cannot be parsed.
	ErrBadArgs = errors.New("invalid arguments")
)

// Dependencies holds everything the command handlers need.
type Dependencies struct {
	Store  *editor.Store
	Logger *slog.Logger
	// ReadFile loads documents for :PLAY:IMPORT:. Defaults to
	// memory.ReadExport, which also understands gzipped exports.
	ReadFile func(path string) ([]byte, error)
}

// Manager owns the handlers registered with the dispatcher.
type Manager struct {
	store    *editor.Store
	log      *slog.Logger
	readFile func(string) ([]byte, error)
}

// NewManager creates a command manager.
func NewManager(deps Dependencies) *Manager {
	m := &Manager{store: deps.Store, log: deps.Logger, readFile: deps.ReadFile}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.readFile == nil {
		m.readFile = memory.ReadExport
	}
	return m
}

// RegisterHandlers registers every editor command with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Document
	d.Register(":PLAY:NEW:", m.handleNewPlay, dispatcher.Logged(), dispatcher.Usage("[NAME]"))
	d.Register(":PLAY:NAME:", m.handleSetName, dispatcher.Logged(), dispatcher.Usage("NAME"))
	d.Register(":PLAY:COURT:", m.handleSetCourt, dispatcher.Logged(), dispatcher.Usage("half|full"))
	d.Register(":EDITOR:SNAP:", m.handleSetSnap, dispatcher.Logged(), dispatcher.Usage("on|off"))
	d.Register(":TOKEN:MOVE:", m.handleMoveToken, dispatcher.Logged(), dispatcher.Usage("TOKEN X Y"))
	d.Register(":TOKEN:POSSESSION:", m.handleSetPossession, dispatcher.Logged(), dispatcher.Usage("[TOKEN]"))
	d.Register(":FRAME:NOTE:", m.handleFrameNote, dispatcher.Logged(), dispatcher.Usage("[TEXT]"))
	d.Register(":FRAME:TITLE:", m.handleFrameTitle, dispatcher.Logged(), dispatcher.Usage("[TEXT]"))
	d.Register(":FRAME:OPTION:", m.handleOptionLabel, dispatcher.Logged(), dispatcher.Usage("FRAME [LABEL]"))

	// Arrows
	d.Register(":ARROW:CREATE:", m.handleCreateArrow, dispatcher.Logged(), dispatcher.Usage("cut|dribble|screen|pass TOKEN"))
	d.Register(":ARROW:END:", m.handleArrowEnd, dispatcher.Logged(), dispatcher.Usage("ARROW X Y"))
	d.Register(":ARROW:CONTROL:", m.handleArrowControl, dispatcher.Logged(), dispatcher.Usage("ARROW X Y | ARROW [[x,y],[cx,cy],[x,y]]"))
	d.Register(":ARROW:DELETE:", m.handleDeleteArrow, dispatcher.Logged(), dispatcher.Usage("ARROW [curve|straight]"))
	d.Register(":ARROW:BEGIN:", m.handleBeginArrow, dispatcher.Logged(), dispatcher.Usage("cut|dribble|screen|pass TOKEN"))
	d.Register(":ARROW:PREVIEW:", m.handleArrowPreview, dispatcher.Usage("X Y"))
	d.Register(":ARROW:COMMIT:", m.handleCommitArrow, dispatcher.Logged(), dispatcher.Usage("X Y"))
	d.Register(":ARROW:COMMIT:TOKEN:", m.handleCommitArrowToken, dispatcher.Logged(), dispatcher.Usage("TOKEN"))
	d.Register(":ARROW:CANCEL:", m.handleCancelArrow, dispatcher.Logged())

	// Frames
	d.Register(":FRAME:ADVANCE:", m.handleAdvance, dispatcher.Logged())
	d.Register(":FRAME:BRANCH:", m.handleBranch, dispatcher.Logged())
	d.Register(":FRAME:INDEX:", m.handleSetIndex, dispatcher.Logged(), dispatcher.Usage("N"))
	d.Register(":FRAME:FOCUS:", m.handleFocus, dispatcher.Logged(), dispatcher.Usage("FRAME"))
	d.Register(":FRAME:DELETE:", m.handleDeleteFrame, dispatcher.Logged())

	// Playback - play runs in the background so pause can reach it
	d.Register(":PLAYBACK:SPEED:", m.handleSpeed, dispatcher.Logged(), dispatcher.Usage("0.25..4"))
	d.Register(":PLAYBACK:STEP:", m.handleStep, dispatcher.Logged())
	d.Register(":PLAYBACK:PLAY:", m.handlePlay, dispatcher.Buffered(1), dispatcher.Logged())
	d.Register(":PLAYBACK:PAUSE:", m.handlePause, dispatcher.Logged())

	// Persistence
	d.Register(":PLAY:SAVE:", m.handleSave, dispatcher.Logged(), dispatcher.Usage("[NAME]"))
	d.Register(":PLAY:SAVEAS:", m.handleSaveAs, dispatcher.Logged(), dispatcher.Usage("[NAME]"))
	d.Register(":PLAY:LOAD:", m.handleLoad, dispatcher.Logged(), dispatcher.Usage("ID"))
	d.Register(":PLAY:IMPORT:", m.handleImport, dispatcher.Logged(), dispatcher.Usage("FILE"))
	d.Register(":PLAY:EXPORT:", m.handleExport, dispatcher.Logged())
	d.Register(":PLAY:LIST:", m.handleList)
	d.Register(":PLAY:DELETE:", m.handleDeletePlay, dispatcher.Logged(), dispatcher.Usage("ID"))

	// Views
	d.Register(":VIEW:FRAME:", m.handleViewFrame)
	d.Register(":VIEW:PATH:", m.handleViewPath)
	d.Register(":VIEW:LABELS:", m.handleViewLabels)
	d.Register(":VIEW:ORDER:", m.handleViewOrder)
	d.Register(":VIEW:OPTIONS:", m.handleViewOptions, dispatcher.Usage("[FRAME]"))
	d.Register(":VIEW:ARROW:", m.handleViewArrow, dispatcher.Usage("ARROW [curve|straight]"))
	d.Register(":VIEW:JSON:", m.handleViewJSON)
}

// refused turns a declined editor action into ErrRefused.
func refused(command string, ok bool) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRefused, command)
}
