package commands

import (
	"fmt"
	"strings"

	"github.com/nebrenner/basketball-play-author/internal/dispatcher"
	"github.com/nebrenner/basketball-play-author/internal/geo"
)

// Cursor is the result of :VIEW:PATH:.
type Cursor struct {
	Path  []string `json:"path"`
	Index int      `json:"index"`
}

func (m *Manager) handleNewPlay(e dispatcher.Event) (any, error) {
	m.store.InitDefaultPlay(joined(e, 0))
	return m.store.Play().ID, nil
}

func (m *Manager) handleSetName(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.SetPlayName(joined(e, 0)))
}

func (m *Manager) handleSetCourt(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	court, err := parseCourt(arg(e, 0))
	if err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.SetCourtType(court))
}

func (m *Manager) handleSetSnap(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	on, err := parseBool(arg(e, 0))
	if err != nil {
		return nil, err
	}
	m.store.SetSnap(on)
	return on, nil
}

func (m *Manager) handleMoveToken(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 2); err != nil {
		return nil, err
	}
	p, err := parsePoint(e, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to move token: %w", err)
	}
	return nil, refused(e.Command, m.store.SetTokenPosition(arg(e, 0), p))
}

func (m *Manager) handleSetPossession(e dispatcher.Event) (any, error) {
	return nil, refused(e.Command, m.store.SetPossession(arg(e, 0)))
}

func (m *Manager) handleFrameNote(e dispatcher.Event) (any, error) {
	return nil, refused(e.Command, m.store.SetCurrentFrameNote(joined(e, 0)))
}

func (m *Manager) handleFrameTitle(e dispatcher.Event) (any, error) {
	return nil, refused(e.Command, m.store.SetCurrentFrameTitle(joined(e, 0)))
}

func (m *Manager) handleOptionLabel(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.SetFrameOptionLabel(arg(e, 0), joined(e, 1)))
}

func (m *Manager) handleCreateArrow(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 2); err != nil {
		return nil, err
	}
	kind, err := parseKind(arg(e, 0))
	if err != nil {
		return nil, err
	}
	id, ok := m.store.CreateArrow(kind, arg(e, 1))
	if !ok {
		return nil, refused(e.Command, false)
	}
	return id, nil
}

func (m *Manager) handleArrowEnd(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 2); err != nil {
		return nil, err
	}
	p, err := parsePoint(e, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to move arrow end: %w", err)
	}
	return nil, refused(e.Command, m.store.UpdateArrowEndpoint(arg(e, 0), p))
}

func (m *Manager) handleArrowControl(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 2); err != nil {
		return nil, err
	}
	p, err := parseControl(e, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to bend arrow: %w", err)
	}
	return nil, refused(e.Command, m.store.UpdateArrowControlPoint(arg(e, 0), p))
}

func (m *Manager) handleDeleteArrow(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.DeleteArrow(arg(e, 0)))
}

func (m *Manager) handleBeginArrow(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 2); err != nil {
		return nil, err
	}
	kind, err := parseKind(arg(e, 0))
	if err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.BeginArrow(kind, arg(e, 1)))
}

func (m *Manager) handleArrowPreview(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	p, err := parsePoint(e, 0)
	if err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.UpdateArrowPreview(p))
}

func (m *Manager) handleCommitArrow(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	p, err := parsePoint(e, 0)
	if err != nil {
		return nil, err
	}
	id, ok := m.store.CommitArrowToPoint(p)
	if !ok {
		return nil, refused(e.Command, false)
	}
	return id, nil
}

func (m *Manager) handleCommitArrowToken(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	id, ok := m.store.CommitArrowToToken(arg(e, 0))
	if !ok {
		return nil, refused(e.Command, false)
	}
	return id, nil
}

func (m *Manager) handleCancelArrow(e dispatcher.Event) (any, error) {
	return nil, refused(e.Command, m.store.CancelArrow())
}

func (m *Manager) handleAdvance(e dispatcher.Event) (any, error) {
	id, ok := m.store.AdvanceFrame()
	if !ok {
		return nil, refused(e.Command, false)
	}
	return id, nil
}

func (m *Manager) handleBranch(e dispatcher.Event) (any, error) {
	ids, ok := m.store.BranchFrame()
	if !ok {
		return nil, refused(e.Command, false)
	}
	return ids, nil
}

func (m *Manager) handleSetIndex(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	i, err := parseIntFromFloat(arg(e, 0))
	if err != nil {
		return nil, err
	}
	if !m.store.SetCurrentFrameIndex(i) {
		return nil, refused(e.Command, false)
	}
	return m.store.CurrentFrameIndex(), nil
}

func (m *Manager) handleFocus(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	return nil, refused(e.Command, m.store.FocusFrameByID(arg(e, 0)))
}

func (m *Manager) handleDeleteFrame(e dispatcher.Event) (any, error) {
	return nil, refused(e.Command, m.store.DeleteLastFrame())
}

func (m *Manager) handleSpeed(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	f, err := parseFloat(arg(e, 0))
	if err != nil {
		return nil, err
	}
	return m.store.SetSpeed(f), nil
}

func (m *Manager) handleStep(e dispatcher.Event) (any, error) {
	moved, err := m.store.StepForward(e.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to step: %w", err)
	}
	if !moved {
		return nil, refused(e.Command, false)
	}
	return m.store.CurrentFrameIndex(), nil
}

func (m *Manager) handlePlay(e dispatcher.Event) (any, error) {
	n, err := m.store.PlayAnimation(e.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to play: %w", err)
	}
	return n, nil
}

func (m *Manager) handlePause(e dispatcher.Event) (any, error) {
	return nil, refused(e.Command, m.store.PauseAnimation())
}

func (m *Manager) handleSave(e dispatcher.Event) (any, error) {
	if err := m.store.SavePlay(e.Context(), joined(e, 0)); err != nil {
		return nil, err
	}
	return m.store.Play().ID, nil
}

func (m *Manager) handleSaveAs(e dispatcher.Event) (any, error) {
	return m.store.SavePlayAsCopy(e.Context(), joined(e, 0))
}

func (m *Manager) handleLoad(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	if err := m.store.LoadPlay(e.Context(), arg(e, 0)); err != nil {
		return nil, err
	}
	return m.store.Play().Meta.Name, nil
}

func (m *Manager) handleImport(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	raw, err := m.readFile(arg(e, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", arg(e, 0), err)
	}
	if err := m.store.ImportPlay(raw); err != nil {
		return nil, err
	}
	return m.store.Play().ID, nil
}

func (m *Manager) handleExport(e dispatcher.Event) (any, error) {
	return m.store.ExportPlay()
}

func (m *Manager) handleList(e dispatcher.Event) (any, error) {
	return m.store.ListPlays(e.Context())
}

func (m *Manager) handleDeletePlay(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	return nil, m.store.DeletePlay(e.Context(), arg(e, 0))
}

func (m *Manager) handleViewFrame(e dispatcher.Event) (any, error) {
	f, ok := m.store.CurrentFrame()
	if !ok {
		return nil, refused(e.Command, false)
	}
	return f, nil
}

func (m *Manager) handleViewPath(e dispatcher.Event) (any, error) {
	return Cursor{Path: m.store.BranchPath(), Index: m.store.CurrentFrameIndex()}, nil
}

func (m *Manager) handleViewLabels(e dispatcher.Event) (any, error) {
	return m.store.Labels(), nil
}

func (m *Manager) handleViewOrder(e dispatcher.Event) (any, error) {
	return m.store.PlaybackOrder(), nil
}

func (m *Manager) handleViewOptions(e dispatcher.Event) (any, error) {
	id := arg(e, 0)
	if id == "" {
		f, ok := m.store.CurrentFrame()
		if !ok {
			return nil, refused(e.Command, false)
		}
		id = f.ID
	}
	return m.store.BranchOptions(id), nil
}

func (m *Manager) handleViewArrow(e dispatcher.Event) (any, error) {
	if err := requireArgs(e, 1); err != nil {
		return nil, err
	}
	straight := false
	switch mode := strings.ToLower(arg(e, 1)); mode {
	case "", "curve":
	case "straight":
		straight = true
	default:
		return nil, fmt.Errorf("%w: unknown render mode %q", ErrBadArgs, mode)
	}
	path, ok := m.store.ArrowPath(arg(e, 0))
	if !ok {
		return nil, refused(e.Command, false)
	}
	if straight {
		return geo.Straight(path), nil
	}
	return path, nil
}

func (m *Manager) handleViewJSON(e dispatcher.Event) (any, error) {
	raw, err := m.store.ExportJSON()
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
