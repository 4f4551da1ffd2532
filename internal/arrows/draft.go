package arrows

import "github.com/nebrenner/basketball-play-author/pkg/core"

// Draft is the state of an arrow being drawn. It is either Idle or
// Drawing.
type Draft interface {
	isDraft()
}

// Idle means no arrow is being drawn.
type Idle struct{}

// Drawing is an arrow in progress from a token toward the pointer.
type Drawing struct {
	Kind    core.ArrowKind
	From    string
	Start   core.Point
	Preview core.Point
}

func (Idle) isDraft()    {}
func (Drawing) isDraft() {}

// Begin starts drawing an arrow of kind from the token at start.
func Begin(kind core.ArrowKind, from string, start core.Point) Drawing {
	return Drawing{Kind: kind, From: from, Start: start, Preview: start}
}

// WithPreview moves the pointer end of the draft.
func (d Drawing) WithPreview(p core.Point) Drawing {
	d.Preview = p
	return d
}

// Points returns the straight preview segment.
func (d Drawing) Points() []core.Point {
	return []core.Point{d.Start, d.Preview}
}
