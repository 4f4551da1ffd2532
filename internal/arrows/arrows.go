// Package arrows holds the authoring rules for motion arrows: default
// placement, pass capture and endpoint/control edits.
package arrows

import (
	"math"
	"sort"

	"github.com/nebrenner/basketball-play-author/internal/geo"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// Geometry carries the stage measurements authoring depends on.
type Geometry struct {
	StageWidth    float64
	StageHeight   float64
	TokenRadius   float64
	DefaultLength float64
	CaptureFactor float64
	GridStep      float64
	SnapToGrid    bool
}

// DefaultGeometry matches the editor's stock stage.
func DefaultGeometry() Geometry {
	return Geometry{
		StageWidth:    1200,
		StageHeight:   760,
		TokenRadius:   18,
		DefaultLength: 200,
		CaptureFactor: 1.2,
		GridStep:      10,
		SnapToGrid:    true,
	}
}

// Snap applies grid snapping when enabled.
func (g Geometry) Snap(p core.Point) core.Point {
	if !g.SnapToGrid {
		return p
	}
	return geo.Snap(p, g.GridStep)
}

// CaptureRadius is the distance within which a pass end snaps onto a token.
func (g Geometry) CaptureRadius() float64 {
	return g.TokenRadius * g.CaptureFactor
}

// DefaultEnd places a new arrow's end DefaultLength units to the right of
// start, or to the left when the right side lacks room.
func (g Geometry) DefaultEnd(start core.Point) core.Point {
	if start.X+g.DefaultLength <= g.StageWidth-g.TokenRadius {
		return core.Point{X: start.X + g.DefaultLength, Y: start.Y}
	}
	return core.Point{X: math.Max(start.X-g.DefaultLength, g.TokenRadius), Y: start.Y}
}

// New builds an arrow of kind from the token at start with a default end.
func (g Geometry) New(id string, kind core.ArrowKind, from string, start core.Point) core.Arrow {
	end := g.Snap(g.DefaultEnd(start))
	return core.Arrow{
		ID:      id,
		From:    from,
		Kind:    kind,
		Points:  []core.Point{start, geo.Midpoint(start, end), end},
		ToPoint: end.Ptr(),
	}
}

// Capture returns the first token other than from whose position lies
// within radius of p. Tokens are scanned in roster order, then any others in
// id order.
func Capture(tokens map[string]core.Point, roster []string, from string, p core.Point, radius float64) (string, core.Point, bool) {
	for _, id := range scanOrder(tokens, roster) {
		if id == from {
			continue
		}
		pos := tokens[id]
		if pos.DistanceTo(p) <= radius {
			return id, pos, true
		}
	}
	return "", core.Point{}, false
}

func scanOrder(tokens map[string]core.Point, roster []string) []string {
	order := make([]string, 0, len(tokens))
	listed := make(map[string]struct{}, len(roster))
	for _, id := range roster {
		if _, ok := tokens[id]; ok {
			order = append(order, id)
			listed[id] = struct{}{}
		}
	}
	var rest []string
	for id := range tokens {
		if _, ok := listed[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// End returns the live end of an arrow in a frame: the target token when it
// is present, otherwise the explicit end point, otherwise the last authored
// point.
func End(a core.Arrow, tokens map[string]core.Point) (core.Point, bool) {
	if a.ToTokenID != "" {
		if pos, ok := tokens[a.ToTokenID]; ok {
			return pos, true
		}
	}
	if a.ToPoint != nil {
		return *a.ToPoint, true
	}
	if len(a.Points) > 0 {
		return a.Points[len(a.Points)-1], true
	}
	return core.Point{}, false
}

// Resolve returns the arrow path against the live token positions of a
// frame.
func Resolve(a core.Arrow, tokens map[string]core.Point) []core.Point {
	var live geo.Endpoints
	if pos, ok := tokens[a.From]; ok {
		live.Start = pos.Ptr()
	}
	if end, ok := End(a, tokens); ok {
		live.End = end.Ptr()
	}
	return geo.ResolvePath(a.Points, live)
}

// WithEndpoint moves the arrow's end to p. Pass arrows capture the nearest
// qualifying token and point at it by id; every other arrow keeps an
// explicit end point.
func (g Geometry) WithEndpoint(a core.Arrow, p core.Point, tokens map[string]core.Point, roster []string) core.Arrow {
	out := a.Clone()
	end := g.Snap(p)

	out.ToTokenID = ""
	out.ToPoint = nil
	if a.Kind == core.ArrowPass {
		if id, pos, ok := Capture(tokens, roster, a.From, end, g.CaptureRadius()); ok {
			out.ToTokenID = id
			end = pos
		}
	}
	if out.ToTokenID == "" {
		out.ToPoint = end.Ptr()
	}

	start, ok := tokens[a.From]
	if !ok {
		if len(a.Points) > 0 {
			start = a.Points[0]
		} else {
			start = end
		}
	}
	out.Points = geo.ResolvePath(a.Points, geo.Endpoints{Start: start.Ptr(), End: end.Ptr()})
	return out
}

// WithControl bends the arrow through c.
func (g Geometry) WithControl(a core.Arrow, c core.Point, tokens map[string]core.Point) core.Arrow {
	out := a.Clone()
	out.Points = geo.WithControlPoint(Resolve(a, tokens), g.Snap(c))
	return out
}
