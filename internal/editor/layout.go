package editor

import (
	"github.com/nebrenner/basketball-play-author/internal/geo"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

const (
	courtPadding       = 40
	legacyCourtPadding = 10
)

// ratio is a roster position expressed as a fraction of the stage.
type ratio struct{ x, y float64 }

var (
	halfCourtLayout = map[core.TokenKind]ratio{
		core.P1: {0.48, 0.5},
		core.P2: {0.4, 0.32},
		core.P3: {0.4, 0.68},
		core.P4: {0.64, 0.42},
		core.P5: {0.72, 0.58},
	}
	fullCourtLayout = map[core.TokenKind]ratio{
		core.P1: {0.18, 0.5},
		core.P2: {0.35, 0.32},
		core.P3: {0.35, 0.68},
		core.P4: {0.6, 0.4},
		core.P5: {0.78, 0.62},
	}
)

// DefaultTokens is the five-player roster every new play starts with.
func DefaultTokens() []core.Token {
	out := make([]core.Token, 0, len(core.TokenKinds))
	for i, k := range core.TokenKinds {
		out = append(out, core.Token{ID: string(k), Kind: k, Label: string(rune('1' + i))})
	}
	return out
}

// DefaultPositions places the roster for a court type on a w by h stage.
// The layout ratios were tuned against a 10 unit court border and are
// rescaled onto the current padding.
func DefaultPositions(w, h float64, court core.CourtType) map[string]core.Point {
	layout := halfCourtLayout
	if court == core.CourtFull {
		layout = fullCourtLayout
	}
	out := make(map[string]core.Point, len(layout))
	for kind, r := range layout {
		out[string(kind)] = core.Point{
			X: rescale(w*r.x, w),
			Y: rescale(h*r.y, h),
		}
	}
	return out
}

func rescale(value, total float64) float64 {
	legacy := total - legacyCourtPadding*2
	if legacy <= 0 {
		return value
	}
	n := geo.Clamp((value-legacyCourtPadding)/legacy, 0, 1)
	return courtPadding + n*(total-courtPadding*2)
}
