// pkg/core/play.go
package core

import "time"

// CourtType selects the default roster layout.
type CourtType string

const (
	CourtHalf CourtType = "half"
	CourtFull CourtType = "full"
)

// TokenKind is one of the five player slots.
type TokenKind string

const (
	P1 TokenKind = "P1"
	P2 TokenKind = "P2"
	P3 TokenKind = "P3"
	P4 TokenKind = "P4"
	P5 TokenKind = "P5"
)

// TokenKinds lists the roster slots in display order.
var TokenKinds = []TokenKind{P1, P2, P3, P4, P5}

// ArrowKind is the motion annotation drawn on a frame.
type ArrowKind string

const (
	ArrowCut     ArrowKind = "cut"
	ArrowDribble ArrowKind = "dribble"
	ArrowScreen  ArrowKind = "screen"
	ArrowPass    ArrowKind = "pass"
)

// Valid reports whether k is a known arrow kind.
func (k ArrowKind) Valid() bool {
	switch k {
	case ArrowCut, ArrowDribble, ArrowScreen, ArrowPass:
		return true
	}
	return false
}

// Token is a roster entry. Created once per play.
type Token struct {
	ID    string    `json:"id" validate:"required"`
	Kind  TokenKind `json:"kind" validate:"oneof=P1 P2 P3 P4 P5"`
	Label string    `json:"label" validate:"required"`
}

// Arrow is an authored motion annotation owned by the play.
// Exactly one of ToPoint and ToTokenID describes the endpoint.
type Arrow struct {
	ID        string    `json:"id" validate:"required"`
	From      string    `json:"from" validate:"required"`
	Kind      ArrowKind `json:"kind" validate:"oneof=cut dribble screen pass"`
	Points    []Point   `json:"points" validate:"max=3"`
	ToPoint   *Point    `json:"toPoint,omitempty"`
	ToTokenID string    `json:"toTokenId,omitempty"`
}

// Frame is one diagram state in the branching history.
// An empty ParentID marks the root.
type Frame struct {
	ID           string           `json:"id" validate:"required"`
	Tokens       map[string]Point `json:"tokens" validate:"required"`
	Arrows       []string         `json:"arrows"`
	Note         string           `json:"note,omitempty"`
	Title        string           `json:"title,omitempty"`
	OptionLabel  string           `json:"optionLabel,omitempty"`
	Possession   string           `json:"possession,omitempty"`
	ParentID     string           `json:"parentId,omitempty"`
	NextFrameIDs []string         `json:"nextFrameIds"`
}

// IsRoot reports whether the frame has no parent.
func (f *Frame) IsRoot() bool {
	return f.ParentID == ""
}

// HasArrow reports whether id is in the frame's arrow list.
func (f *Frame) HasArrow(id string) bool {
	for _, a := range f.Arrows {
		if a == id {
			return true
		}
	}
	return false
}

// Meta carries the play's name and timestamps.
type Meta struct {
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Play is the aggregate root of the editor.
type Play struct {
	ID         string           `json:"id" validate:"required"`
	Meta       Meta             `json:"meta"`
	Tokens     []Token          `json:"tokens" validate:"dive"`
	Frames     []*Frame         `json:"frames" validate:"min=1,dive,required"`
	ArrowsByID map[string]Arrow `json:"arrowsById" validate:"dive"`
	Possession string           `json:"possession,omitempty"`
	CourtType  CourtType        `json:"courtType,omitempty" validate:"omitempty,oneof=half full"`
}

// PlaySummary is the listing view of a saved play.
type PlaySummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CourtType  CourtType `json:"courtType"`
	FrameCount int       `json:"frameCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summary builds the listing view of p.
func (p *Play) Summary() PlaySummary {
	return PlaySummary{
		ID:         p.ID,
		Name:       p.Meta.Name,
		CourtType:  p.CourtType,
		FrameCount: len(p.Frames),
		CreatedAt:  p.Meta.CreatedAt,
		UpdatedAt:  p.Meta.UpdatedAt,
	}
}

// Frame returns the frame with the given id.
func (p *Play) Frame(id string) (*Frame, bool) {
	if id == "" {
		return nil, false
	}
	for _, f := range p.Frames {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// FrameIndex returns the position of id in the flat frame list, or -1.
func (p *Play) FrameIndex(id string) int {
	for i, f := range p.Frames {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// TokenOrder returns the roster token ids in roster order.
func (p *Play) TokenOrder() []string {
	ids := make([]string, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		ids = append(ids, t.ID)
	}
	return ids
}

// FrameArrows resolves the frame's arrow ids against the play, skipping
// dangling references.
func (p *Play) FrameArrows(f *Frame) []Arrow {
	out := make([]Arrow, 0, len(f.Arrows))
	for _, id := range f.Arrows {
		if a, ok := p.ArrowsByID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}
