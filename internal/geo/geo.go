package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ControlEpsilon is the distance under which a control point still counts as
// the straight-line midpoint.
const ControlEpsilon = 0.5

// PointFromString parses "x,y" into a core.Point.
func PointFromString(coords string) (core.Point, error) {
	coordsSplit := strings.Split(strings.TrimSpace(coords), ",")
	if len(coordsSplit) != 2 {
		return core.Point{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Point{}, ErrInvalidCoordinates
	}
	return core.Point{X: x, Y: y}, nil
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b core.Point) core.Point {
	return core.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b core.Point, t float64) core.Point {
	return core.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Snap rounds p to the nearest multiple of step. A non-positive step
// returns p unchanged.
func Snap(p core.Point, step float64) core.Point {
	if step <= 0 {
		return p
	}
	return core.Point{
		X: math.Round(p.X/step) * step,
		Y: math.Round(p.Y/step) * step,
	}
}

// Clamp keeps v inside [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Offset translates every point of path by d and returns a new slice.
func Offset(path []core.Point, d core.Point) []core.Point {
	out := make([]core.Point, len(path))
	for i, p := range path {
		out[i] = p.Add(d)
	}
	return out
}

// IsControlPointCustomized reports whether control has been dragged away
// from the midpoint of start and end.
func IsControlPointCustomized(start, control, end core.Point) bool {
	return control.DistanceTo(Midpoint(start, end)) > ControlEpsilon
}
