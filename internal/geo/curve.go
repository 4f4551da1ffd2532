package geo

import (
	"math"

	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// SanitizePath pins path to from and to, inserting a midpoint control when
// only the endpoints are known. A nil or single-point path yields a
// straight three point path.
func SanitizePath(path []core.Point, from, to core.Point) []core.Point {
	if len(path) < 2 {
		return []core.Point{from, Midpoint(from, to), to}
	}
	out := append([]core.Point(nil), path...)
	out[0] = from
	out[len(out)-1] = to
	if len(out) == 2 {
		return []core.Point{out[0], Midpoint(out[0], out[1]), out[1]}
	}
	return out
}

// PointAt evaluates the Bezier curve with the given control polygon at t
// using de Casteljau's algorithm.
func PointAt(path []core.Point, t float64) core.Point {
	switch len(path) {
	case 0:
		return core.Point{}
	case 1:
		return path[0]
	}
	t = Clamp(t, 0, 1)
	work := append([]core.Point(nil), path...)
	for n := len(work) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			work[i] = Lerp(work[i], work[i+1], t)
		}
	}
	return work[0]
}

// EaseInOut is the cubic ease used for tweens.
func EaseInOut(t float64) float64 {
	t = Clamp(t, 0, 1)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Sample flattens a curve into n+1 points including both ends.
func Sample(path []core.Point, n int) []core.Point {
	if n < 1 || len(path) == 0 {
		return append([]core.Point(nil), path...)
	}
	out := make([]core.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, PointAt(path, float64(i)/float64(n)))
	}
	return out
}
