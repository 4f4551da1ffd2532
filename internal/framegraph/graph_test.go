package framegraph

import (
	"testing"

	"github.com/nebrenner/basketball-play-author/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(id, parent string, next ...string) *core.Frame {
	return &core.Frame{
		ID:           id,
		ParentID:     parent,
		NextFrameIDs: next,
		Tokens:       map[string]core.Point{"P1": {X: 1, Y: 1}},
	}
}

func playOf(frames ...*core.Frame) *core.Play {
	return &core.Play{ID: "play", Frames: frames, ArrowsByID: map[string]core.Arrow{}}
}

func assertConsistent(t *testing.T, p *core.Play) {
	t.Helper()
	roots := 0
	byID := map[string]*core.Frame{}
	for _, f := range p.Frames {
		byID[f.ID] = f
		if f.IsRoot() {
			roots++
		}
	}
	assert.Equal(t, 1, roots, "exactly one root")
	for _, f := range p.Frames {
		if f.IsRoot() {
			continue
		}
		parent, ok := byID[f.ParentID]
		require.True(t, ok, "parent of %s exists", f.ID)
		assert.Contains(t, parent.NextFrameIDs, f.ID)
	}
	for _, f := range p.Frames {
		for _, id := range f.NextFrameIDs {
			assert.Equal(t, f.ID, byID[id].ParentID)
		}
	}
}

func TestNormalize_RepairsMissingLinks(t *testing.T) {
	in := playOf(
		&core.Frame{ID: "a", ParentID: "ghost"},
		&core.Frame{ID: "b"},
		&core.Frame{ID: "c", ParentID: "c"},
		&core.Frame{ID: "d", ParentID: "a", NextFrameIDs: []string{"zzz"}},
	)

	out := Normalize(in)

	assertConsistent(t, out)
	assert.Equal(t, "", out.Frames[0].ParentID)
	assert.Equal(t, "a", out.Frames[1].ParentID)
	assert.Equal(t, "b", out.Frames[2].ParentID)
	assert.Equal(t, []string{"b", "d"}, out.Frames[0].NextFrameIDs)
	assert.Empty(t, out.Frames[3].NextFrameIDs)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := playOf(frame("a", "x"), frame("b", ""))
	_ = Normalize(in)
	assert.Equal(t, "x", in.Frames[0].ParentID)
	assert.Equal(t, "", in.Frames[1].ParentID)
	assert.Nil(t, in.Frames[0].NextFrameIDs)
}

func TestNormalize_RebuildsChildrenInListOrder(t *testing.T) {
	in := playOf(frame("r", "", "b", "a", "ghost"), frame("a", "r"), frame("b", "r"))
	out := Normalize(in)
	assert.Equal(t, []string{"a", "b"}, out.Frames[0].NextFrameIDs)
	assert.Equal(t, []string{"b", "a", "ghost"}, in.Frames[0].NextFrameIDs)

	// the tree view of the raw document still follows the stored order
	tree := BuildTree(in)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "b", tree[0].Children[0].Frame.ID)
}

func TestNormalize_DeduplicatesChildren(t *testing.T) {
	in := playOf(frame("r", "", "a", "a"), frame("a", "r"))
	out := Normalize(in)
	assert.Equal(t, []string{"a"}, out.Frames[0].NextFrameIDs)
}

func TestPathTo(t *testing.T) {
	p := Normalize(playOf(frame("r", ""), frame("a", "r"), frame("b", "a"), frame("c", "r")))

	assert.Equal(t, []string{"r", "a", "b"}, PathTo(p, "b"))
	assert.Equal(t, []string{"r", "c"}, PathTo(p, "c"))
	assert.Equal(t, []string{"r"}, PathTo(p, "r"))
	assert.Nil(t, PathTo(p, "missing"))
	assert.Equal(t, 2, Depth(p, "b"))
	assert.Equal(t, -1, Depth(p, "missing"))
}

func TestPathTo_CycleReturnsPartialPath(t *testing.T) {
	p := playOf(frame("a", "b"), frame("b", "a"))
	path := PathTo(p, "a")
	assert.Equal(t, []string{"b", "a"}, path)
}

func TestBuildTree_OrdersChildren(t *testing.T) {
	p := playOf(frame("r", "", "b"), frame("a", "r"), frame("b", "r"))
	tree := BuildTree(p)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "b", tree[0].Children[0].Frame.ID)
	assert.Equal(t, "a", tree[0].Children[1].Frame.ID)
}

func TestBuildTree_CycleDoesNotRecurse(t *testing.T) {
	p := playOf(frame("r", ""), frame("a", "b"), frame("b", "a"))
	tree := BuildTree(p)

	count := 0
	Walk(tree, func(n *Node, depth int) { count++ })
	assert.Equal(t, 3, count)
	assert.Equal(t, "r", tree[0].Frame.ID)
}

func TestBuildTree_MultipleRoots(t *testing.T) {
	p := playOf(frame("r1", ""), frame("x", "r1"), frame("r2", ""))
	tree := BuildTree(p)
	require.Len(t, tree, 2)
	assert.Equal(t, "r1", tree[0].Frame.ID)
	assert.Equal(t, "r2", tree[1].Frame.ID)
}

func TestPlaybackOrder_LinearChain(t *testing.T) {
	p := playOf(frame("r", ""), frame("a", "r"), frame("b", "a"))
	assert.Equal(t, []string{"r", "a", "b"}, PlaybackOrder(p))
}

func TestPlaybackOrder_ReturnsToBranchPoint(t *testing.T) {
	p := playOf(
		frame("r", ""),
		frame("a", "r"),
		frame("b", "r"),
		frame("a1", "a"),
		frame("a2", "a"),
	)
	assert.Equal(t, []string{"r", "a", "a1", "a", "a2", "r", "b"}, PlaybackOrder(p))
}

func TestPlaybackOrder_DoesNotMutateInput(t *testing.T) {
	in := playOf(frame("r", ""), frame("a", "missing"))
	order := PlaybackOrder(in)
	assert.Equal(t, []string{"r", "a"}, order)
	assert.Equal(t, "missing", in.Frames[1].ParentID)
}

func TestPlaybackOrder_Empty(t *testing.T) {
	assert.Nil(t, PlaybackOrder(playOf()))
}
