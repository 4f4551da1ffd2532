package editor

import (
	"testing"

	"github.com/nebrenner/basketball-play-author/internal/arrows"
	"github.com/nebrenner/basketball-play-author/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArrow_DefaultEnd(t *testing.T) {
	s := newPlayStore(t)
	start := currentFrame(t, s).Tokens["P1"]

	id, ok := s.CreateArrow(core.ArrowCut, "P1")
	require.True(t, ok)

	p := s.Play()
	a := p.ArrowsByID[id]
	assert.Equal(t, "P1", a.From)
	assert.Equal(t, core.ArrowCut, a.Kind)
	require.Len(t, a.Points, 3)
	assert.Equal(t, start, a.Points[0])
	assert.Equal(t, core.Point{X: 780, Y: 380}, a.Points[2])
	require.NotNil(t, a.ToPoint)
	assert.Equal(t, a.Points[2], *a.ToPoint)
	assert.Equal(t, []string{id}, p.Frames[0].Arrows)
	assert.True(t, s.Dirty())
}

func TestCreateArrow_OnePerSourceToken(t *testing.T) {
	s := newPlayStore(t)

	_, ok := s.CreateArrow(core.ArrowDribble, "P1")
	require.True(t, ok)
	_, ok = s.CreateArrow(core.ArrowPass, "P1")
	assert.False(t, ok)

	_, ok = s.CreateArrow(core.ArrowScreen, "P4")
	assert.True(t, ok)
	assert.Len(t, s.Play().ArrowsByID, 2)
}

func TestCreateArrow_RefusesUnknownInput(t *testing.T) {
	s := newPlayStore(t)

	_, ok := s.CreateArrow(core.ArrowCut, "P7")
	assert.False(t, ok)
	_, ok = s.CreateArrow("lob", "P1")
	assert.False(t, ok)
	assert.Empty(t, s.Play().ArrowsByID)
}

func TestPassToTokenTransfersPossession(t *testing.T) {
	s := newPlayStore(t)
	p2 := currentFrame(t, s).Tokens["P2"]

	id, ok := s.CreateArrow(core.ArrowPass, "P1")
	require.True(t, ok)
	require.True(t, s.UpdateArrowEndpoint(id, p2))

	a := s.Play().ArrowsByID[id]
	assert.Equal(t, "P2", a.ToTokenID)
	assert.Nil(t, a.ToPoint)
	assert.Equal(t, p2, a.Points[len(a.Points)-1])

	next, ok := s.AdvanceFrame()
	require.True(t, ok)
	f, _ := s.Play().Frame(next)
	assert.Equal(t, "P2", f.Possession)
	assert.Equal(t, "P2", s.Play().Possession)
}

func TestPassToFreePointLeavesBallLoose(t *testing.T) {
	s := newPlayStore(t)

	id, ok := s.CreateArrow(core.ArrowPass, "P1")
	require.True(t, ok)
	require.True(t, s.UpdateArrowEndpoint(id, core.Point{X: 101, Y: 99}))

	a := s.Play().ArrowsByID[id]
	assert.Empty(t, a.ToTokenID)
	require.NotNil(t, a.ToPoint)
	assert.Equal(t, core.Point{X: 100, Y: 100}, *a.ToPoint)

	_, ok = s.AdvanceFrame()
	require.True(t, ok)
	assert.Empty(t, currentFrame(t, s).Possession)
}

func TestCutMovesTokenOnAdvance(t *testing.T) {
	s := newPlayStore(t)
	p3 := currentFrame(t, s).Tokens["P3"]

	id, ok := s.CreateArrow(core.ArrowCut, "P1")
	require.True(t, ok)
	// a cut never captures a token, even when it ends on one
	require.True(t, s.UpdateArrowEndpoint(id, p3))
	assert.Empty(t, s.Play().ArrowsByID[id].ToTokenID)

	require.True(t, s.UpdateArrowEndpoint(id, core.Point{X: 903, Y: 447}))
	_, ok = s.AdvanceFrame()
	require.True(t, ok)
	assert.Equal(t, core.Point{X: 900, Y: 450}, currentFrame(t, s).Tokens["P1"])
}

func TestUpdateArrowControlPoint(t *testing.T) {
	s := newPlayStore(t)
	id, ok := s.CreateArrow(core.ArrowDribble, "P1")
	require.True(t, ok)

	require.True(t, s.UpdateArrowControlPoint(id, core.Point{X: 681, Y: 302}))
	a := s.Play().ArrowsByID[id]
	require.Len(t, a.Points, 3)
	assert.Equal(t, core.Point{X: 680, Y: 300}, a.Points[1])

	assert.False(t, s.UpdateArrowControlPoint("missing", core.Point{}))
	assert.False(t, s.UpdateArrowEndpoint("missing", core.Point{}))
}

func TestDeleteArrow(t *testing.T) {
	s := newPlayStore(t)
	id, ok := s.CreateArrow(core.ArrowCut, "P2")
	require.True(t, ok)

	require.True(t, s.DeleteArrow(id))
	p := s.Play()
	assert.Empty(t, p.ArrowsByID)
	assert.Empty(t, p.Frames[0].Arrows)

	assert.False(t, s.DeleteArrow(id))
}

func TestArrowPath_FollowsPassTarget(t *testing.T) {
	s := newPlayStore(t)
	s.SetSnap(false)
	p2 := currentFrame(t, s).Tokens["P2"]

	id, ok := s.CreateArrow(core.ArrowPass, "P1")
	require.True(t, ok)
	require.True(t, s.UpdateArrowEndpoint(id, p2))

	moved := core.Point{X: 300, Y: 600}
	require.True(t, s.SetTokenPosition("P2", moved))

	path, ok := s.ArrowPath(id)
	require.True(t, ok)
	assert.Equal(t, moved, path[len(path)-1])
	assert.Equal(t, currentFrame(t, s).Tokens["P1"], path[0])

	_, ok = s.ArrowPath("missing")
	assert.False(t, ok)
}

func TestDraft_PassMustLandOnToken(t *testing.T) {
	s := newPlayStore(t)
	frame := currentFrame(t, s)

	assert.IsType(t, arrows.Idle{}, s.Draft())
	require.True(t, s.BeginArrow(core.ArrowPass, "P1"))
	d, ok := s.Draft().(arrows.Drawing)
	require.True(t, ok)
	assert.Equal(t, frame.Tokens["P1"], d.Start)

	require.True(t, s.UpdateArrowPreview(core.Point{X: 50, Y: 50}))
	_, ok = s.CommitArrowToPoint(core.Point{X: 60, Y: 60})
	assert.False(t, ok)
	d, ok = s.Draft().(arrows.Drawing)
	require.True(t, ok)
	assert.Equal(t, core.Point{X: 60, Y: 60}, d.Preview)
	assert.Empty(t, s.Play().ArrowsByID)

	id, ok := s.CommitArrowToPoint(frame.Tokens["P2"])
	require.True(t, ok)
	assert.Equal(t, "P2", s.Play().ArrowsByID[id].ToTokenID)
	assert.IsType(t, arrows.Idle{}, s.Draft())
}

func TestDraft_CommitToToken(t *testing.T) {
	s := newPlayStore(t)
	frame := currentFrame(t, s)

	require.True(t, s.BeginArrow(core.ArrowPass, "P1"))
	_, ok := s.CommitArrowToToken("P1")
	assert.False(t, ok)
	_, ok = s.CommitArrowToToken("P9")
	assert.False(t, ok)

	id, ok := s.CommitArrowToToken("P5")
	require.True(t, ok)
	a := s.Play().ArrowsByID[id]
	assert.Equal(t, "P5", a.ToTokenID)
	assert.Nil(t, a.ToPoint)
	assert.Equal(t, frame.Tokens["P5"], a.Points[len(a.Points)-1])

	// P1 already has an arrow on this frame
	assert.False(t, s.BeginArrow(core.ArrowCut, "P1"))
}

func TestDraft_CutToPoint(t *testing.T) {
	s := newPlayStore(t)

	require.True(t, s.BeginArrow(core.ArrowCut, "P3"))
	id, ok := s.CommitArrowToPoint(core.Point{X: 212, Y: 588})
	require.True(t, ok)
	a := s.Play().ArrowsByID[id]
	require.NotNil(t, a.ToPoint)
	assert.Equal(t, core.Point{X: 210, Y: 590}, *a.ToPoint)
}

func TestDraft_CancelAndNavigationReset(t *testing.T) {
	s := newPlayStore(t)

	assert.False(t, s.CancelArrow())
	assert.False(t, s.UpdateArrowPreview(core.Point{}))
	_, ok := s.CommitArrowToPoint(core.Point{})
	assert.False(t, ok)

	require.True(t, s.BeginArrow(core.ArrowScreen, "P4"))
	require.True(t, s.CancelArrow())
	assert.IsType(t, arrows.Idle{}, s.Draft())

	require.True(t, s.BeginArrow(core.ArrowScreen, "P4"))
	_, ok = s.AdvanceFrame()
	require.True(t, ok)
	assert.IsType(t, arrows.Idle{}, s.Draft())

	assert.False(t, s.BeginArrow("hook", "P4"))
	assert.False(t, s.BeginArrow(core.ArrowCut, "nobody"))
}
