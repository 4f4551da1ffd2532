// Package labels assigns hierarchical step labels ("1", "2a", "2a1b") to the
// frames of a play.
//
// Roots are numbered in list order, each starting after the last number the
// previous root's chain used. A frame at the root segment level with a
// single child hands the next number to that child, so a plain chain reads
// 1, 2, 3. Every other child appends one segment chosen by sibling index;
// segments alternate numeric (even segment depth) and alphabetic (odd
// segment depth) starting with the root number at depth 0.
package labels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nebrenner/basketball-play-author/internal/framegraph"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

type cursor struct {
	label string
	depth int
	count int
}

// ComputeStepLabels returns the step label of every reachable frame keyed
// by frame id.
func ComputeStepLabels(play *core.Play) map[string]string {
	out := make(map[string]string)
	if play == nil {
		return out
	}

	last := 0
	var visit func(n *framegraph.Node, c cursor)
	visit = func(n *framegraph.Node, c cursor) {
		if _, done := out[n.Frame.ID]; done {
			return
		}
		out[n.Frame.ID] = c.label

		if len(n.Children) == 1 && c.depth == 0 {
			next := c.count + 1
			last = max(last, next)
			visit(n.Children[0], cursor{label: strconv.Itoa(next), count: next})
			return
		}
		for i, child := range n.Children {
			depth := c.depth + 1
			visit(child, cursor{label: c.label + Segment(depth, i), depth: depth})
		}
	}

	for _, root := range framegraph.BuildTree(play) {
		last++
		visit(root, cursor{label: strconv.Itoa(last), count: last})
	}
	return out
}

// Segment renders the index-th sibling at the given segment depth: numbers
// at even depth, bijective base-26 letters at odd depth.
func Segment(depth, index int) string {
	if depth%2 == 0 {
		return strconv.Itoa(index + 1)
	}
	return letters(index)
}

func letters(index int) string {
	var b []byte
	for n := index + 1; n > 0; {
		n--
		b = append([]byte{byte('a' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// DefaultStepTitle is the display title used when a frame has none.
func DefaultStepTitle(label string) string {
	return fmt.Sprintf("Step %s", label)
}

// FormatStepTitle returns the frame's own title when it is non-blank,
// otherwise the default title for label.
func FormatStepTitle(f *core.Frame, label string) string {
	if f != nil {
		if title := strings.TrimSpace(f.Title); title != "" {
			return title
		}
	}
	return DefaultStepTitle(label)
}

// DefaultOptionTitle names the n-th (1-based) branch option.
func DefaultOptionTitle(n int) string {
	return fmt.Sprintf("Option %d", n)
}

// FormatOptionTitle returns the frame's option label when set, otherwise the
// default option title.
func FormatOptionTitle(f *core.Frame, n int) string {
	if f != nil {
		if label := strings.TrimSpace(f.OptionLabel); label != "" {
			return label
		}
	}
	return DefaultOptionTitle(n)
}

// Option describes one continuation of a branching frame.
type Option struct {
	FrameID string `json:"frameId"`
	Label   string `json:"label"`
	Title   string `json:"title"`
}

// BranchOptions lists the children of frameID with their computed labels.
// It returns nil when the frame has fewer than two children.
func BranchOptions(play *core.Play, frameID string) []Option {
	f, ok := play.Frame(frameID)
	if !ok || len(f.NextFrameIDs) < 2 {
		return nil
	}
	computed := ComputeStepLabels(play)
	opts := make([]Option, 0, len(f.NextFrameIDs))
	for i, id := range f.NextFrameIDs {
		child, ok := play.Frame(id)
		if !ok {
			continue
		}
		opts = append(opts, Option{
			FrameID: id,
			Label:   computed[id],
			Title:   FormatOptionTitle(child, i+1),
		})
	}
	return opts
}
