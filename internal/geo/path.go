package geo

import "github.com/nebrenner/basketball-play-author/pkg/core"

// Endpoints carries the live start and end of an arrow. Nil means the
// authored value is kept.
type Endpoints struct {
	Start *core.Point
	End   *core.Point
}

// ResolvePath rebuilds an arrow path against live endpoints. The result
// carries a control point whenever two or more points are known so that
// the curve can be bent later.
func ResolvePath(points []core.Point, live Endpoints) []core.Point {
	if len(points) == 0 {
		switch {
		case live.Start != nil && live.End != nil:
			return []core.Point{*live.Start, Midpoint(*live.Start, *live.End), *live.End}
		case live.Start != nil:
			return []core.Point{*live.Start}
		case live.End != nil:
			return []core.Point{*live.End}
		default:
			return nil
		}
	}

	if len(points) == 1 {
		first, last := points[0], points[0]
		if live.Start != nil {
			first = *live.Start
		}
		if live.End != nil {
			last = *live.End
		}
		if live.Start == nil && live.End == nil {
			return []core.Point{points[0]}
		}
		return []core.Point{first, Midpoint(first, last), last}
	}

	out := append([]core.Point(nil), points...)
	if live.Start != nil {
		out[0] = *live.Start
	}
	if live.End != nil {
		out[len(out)-1] = *live.End
	}

	switch len(out) {
	case 2:
		return []core.Point{out[0], Midpoint(out[0], out[1]), out[1]}
	case 3:
		if !IsControlPointCustomized(points[0], points[1], points[2]) {
			out[1] = Midpoint(out[0], out[2])
		}
	}
	return out
}

// Straight collapses a resolved path to its two endpoints for straight
// rendering. The stored path is not modified.
func Straight(path []core.Point) []core.Point {
	if len(path) < 2 {
		return append([]core.Point(nil), path...)
	}
	return []core.Point{path[0], path[len(path)-1]}
}

// WithControlPoint returns path with its control point set to c, inserting
// one when the path has only endpoints.
func WithControlPoint(path []core.Point, c core.Point) []core.Point {
	switch len(path) {
	case 0, 1:
		return append([]core.Point(nil), path...)
	case 2:
		return []core.Point{path[0], c, path[1]}
	default:
		out := append([]core.Point(nil), path...)
		out[1] = c
		return out
	}
}
