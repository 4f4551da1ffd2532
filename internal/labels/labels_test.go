package labels

import (
	"testing"

	"github.com/nebrenner/basketball-play-author/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(id, parent string, next ...string) *core.Frame {
	return &core.Frame{ID: id, ParentID: parent, NextFrameIDs: next, Tokens: map[string]core.Point{}}
}

func TestComputeStepLabels_LinearChain(t *testing.T) {
	p := &core.Play{Frames: []*core.Frame{
		frame("f1", "", "f2"),
		frame("f2", "f1", "f3"),
		frame("f3", "f2"),
	}}
	assert.Equal(t, map[string]string{"f1": "1", "f2": "2", "f3": "3"}, ComputeStepLabels(p))
}

func TestComputeStepLabels_NestedBranches(t *testing.T) {
	p := &core.Play{Frames: []*core.Frame{
		frame("f1", "", "f2"),
		frame("f2", "f1", "f3", "f4"),
		frame("f3", "f2", "f5"),
		frame("f4", "f2"),
		frame("f5", "f3", "f6", "f7"),
		frame("f6", "f5"),
		frame("f7", "f5"),
	}}

	assert.Equal(t, map[string]string{
		"f1": "1",
		"f2": "2",
		"f3": "2a",
		"f4": "2b",
		"f5": "2a1",
		"f6": "2a1a",
		"f7": "2a1b",
	}, ComputeStepLabels(p))
}

func TestComputeStepLabels_BranchFromRoot(t *testing.T) {
	p := &core.Play{Frames: []*core.Frame{
		frame("root", "", "a", "b"),
		frame("a", "root", "a1", "a2"),
		frame("b", "root"),
		frame("a1", "a"),
		frame("a2", "a"),
	}}
	got := ComputeStepLabels(p)
	assert.Equal(t, "1", got["root"])
	assert.Equal(t, "1a", got["a"])
	assert.Equal(t, "1b", got["b"])
	assert.Equal(t, "1a1", got["a1"])
	assert.Equal(t, "1a2", got["a2"])
}

func TestComputeStepLabels_Deterministic(t *testing.T) {
	p := &core.Play{Frames: []*core.Frame{
		frame("r", "", "x", "y"),
		frame("x", "r"),
		frame("y", "r"),
	}}
	first := ComputeStepLabels(p)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ComputeStepLabels(p))
	}
}

func TestComputeStepLabels_MultipleRoots(t *testing.T) {
	p := &core.Play{Frames: []*core.Frame{frame("a", ""), frame("b", "")}}
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, ComputeStepLabels(p))
}

func TestComputeStepLabels_RootsContinueAfterChain(t *testing.T) {
	p := &core.Play{Frames: []*core.Frame{
		frame("a", "", "a2"),
		frame("a2", "a", "a3"),
		frame("a3", "a2"),
		frame("b", ""),
		frame("c", "", "c1", "c2"),
		frame("c1", "c"),
		frame("c2", "c"),
		frame("d", ""),
	}}
	assert.Equal(t, map[string]string{
		"a":  "1",
		"a2": "2",
		"a3": "3",
		"b":  "4",
		"c":  "5",
		"c1": "5a",
		"c2": "5b",
		"d":  "6",
	}, ComputeStepLabels(p))
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "1", Segment(0, 0))
	assert.Equal(t, "3", Segment(2, 2))
	assert.Equal(t, "a", Segment(1, 0))
	assert.Equal(t, "z", Segment(1, 25))
	assert.Equal(t, "aa", Segment(1, 26))
	assert.Equal(t, "ab", Segment(3, 27))
	assert.Equal(t, "ba", Segment(1, 52))
}

func TestFormatStepTitle(t *testing.T) {
	f := &core.Frame{}
	assert.Equal(t, "Step 2a", FormatStepTitle(f, "2a"))
	f.Title = "  "
	assert.Equal(t, "Step 2a", FormatStepTitle(f, "2a"))
	f.Title = "Opening Alignment"
	assert.Equal(t, "Opening Alignment", FormatStepTitle(f, "2a"))
	assert.Equal(t, "Step 3", FormatStepTitle(nil, "3"))
}

func TestFormatOptionTitle(t *testing.T) {
	assert.Equal(t, "Step 1b", DefaultStepTitle("1b"))
	assert.Equal(t, "Option 2", DefaultOptionTitle(2))

	f := &core.Frame{OptionLabel: " "}
	assert.Equal(t, "Option 1", FormatOptionTitle(f, 1))
	f.OptionLabel = "Flare"
	assert.Equal(t, "Flare", FormatOptionTitle(f, 1))
	assert.Equal(t, "Option 3", FormatOptionTitle(nil, 3))
}

func TestBranchOptions(t *testing.T) {
	b := frame("b", "r")
	b.OptionLabel = "Weak side"
	p := &core.Play{Frames: []*core.Frame{frame("r", "", "a", "b"), frame("a", "r"), b}}

	opts := BranchOptions(p, "r")
	require.Len(t, opts, 2)
	assert.Equal(t, Option{FrameID: "a", Label: "1a", Title: "Option 1"}, opts[0])
	assert.Equal(t, Option{FrameID: "b", Label: "1b", Title: "Weak side"}, opts[1])
	assert.Nil(t, BranchOptions(p, "a"))
}
