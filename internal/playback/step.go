// Package playback turns pairs of frames into position-only move lists and
// drives them through an injected set of animatable handles.
package playback

import (
	"sort"
	"time"

	"github.com/nebrenner/basketball-play-author/internal/arrows"
	"github.com/nebrenner/basketball-play-author/internal/geo"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// BallID is the move id used for the ball marker.
const BallID = "ball"

const (
	MinSpeed    = 0.25
	MaxSpeed    = 4.0
	MinDuration = 10 * time.Millisecond

	// ballOffsetFactor places the ball up and to the right of its holder,
	// as a fraction of the token radius.
	ballOffsetFactor = 0.85
)

// Move is one interpolation: the handle registered under ID travels from
// From to To, along Path when set.
type Move struct {
	ID   string       `json:"id"`
	From core.Point   `json:"from"`
	To   core.Point   `json:"to"`
	Path []core.Point `json:"path,omitempty"`
}

// Step is the bundle of moves that animate one frame transition. All moves
// share the same start time and duration.
type Step struct {
	FromFrameID string        `json:"fromFrameId"`
	ToFrameID   string        `json:"toFrameId"`
	Duration    time.Duration `json:"duration"`
	Moves       []Move        `json:"moves"`
}

// ClampSpeed keeps a playback speed multiplier inside the supported range.
func ClampSpeed(speed float64) float64 {
	return geo.Clamp(speed, MinSpeed, MaxSpeed)
}

// StepDuration scales base by speed with a floor of MinDuration.
func StepDuration(base time.Duration, speed float64) time.Duration {
	d := time.Duration(float64(base) / ClampSpeed(speed))
	if d < MinDuration {
		return MinDuration
	}
	return d
}

// BallOffset is the ball's position relative to its holder.
func BallOffset(tokenRadius float64) core.Point {
	return core.Point{X: tokenRadius * ballOffsetFactor, Y: -tokenRadius * ballOffsetFactor}
}

// Sequencer builds steps for a stage with the given token radius.
type Sequencer struct {
	TokenRadius float64
}

// Step computes the moves that take the stage from one frame to the next.
// Tokens whose position does not change are left out. A token with a
// non-pass arrow on from follows that arrow's curve, and the ball follows
// the holder's pass arrow when there is one.
func (s Sequencer) Step(play *core.Play, from, to *core.Frame, d time.Duration) Step {
	step := Step{FromFrameID: from.ID, ToFrameID: to.ID, Duration: d}

	fromArrows := play.FrameArrows(from)
	for _, id := range tokenOrder(play, to.Tokens) {
		end := to.Tokens[id]
		start, ok := from.Tokens[id]
		if !ok || start == end {
			continue
		}
		m := Move{ID: id, From: start, To: end}
		for _, a := range fromArrows {
			if a.From == id && a.Kind != core.ArrowPass {
				m.Path = geo.ResolvePath(a.Points, geo.Endpoints{Start: start.Ptr(), End: end.Ptr()})
				break
			}
		}
		step.Moves = append(step.Moves, m)
	}

	if ball, ok := s.ballMove(from, to, fromArrows); ok {
		step.Moves = append(step.Moves, ball)
	}
	return step
}

func (s Sequencer) ballMove(from, to *core.Frame, fromArrows []core.Arrow) (Move, bool) {
	offset := BallOffset(s.TokenRadius)

	holder, ok := from.Tokens[from.Possession]
	if from.Possession == "" || !ok {
		return Move{}, false
	}
	start := holder.Add(offset)

	var pass *core.Arrow
	for i := range fromArrows {
		if fromArrows[i].Kind == core.ArrowPass && fromArrows[i].From == from.Possession {
			pass = &fromArrows[i]
			break
		}
	}

	if pass != nil {
		target, ok := to.Tokens[pass.ToTokenID]
		if !ok {
			target, ok = arrows.End(*pass, from.Tokens)
		}
		if !ok {
			return Move{}, false
		}
		path := geo.Offset(geo.ResolvePath(pass.Points, geo.Endpoints{Start: holder.Ptr(), End: target.Ptr()}), offset)
		end := path[len(path)-1]
		if next, ok := to.Tokens[to.Possession]; ok && to.Possession != "" {
			end = next.Add(offset)
			path[len(path)-1] = end
		}
		return Move{ID: BallID, From: start, To: end, Path: path}, true
	}

	next, ok := to.Tokens[to.Possession]
	if to.Possession == "" || !ok {
		return Move{}, false
	}
	end := next.Add(offset)
	if end == start {
		return Move{}, false
	}
	return Move{ID: BallID, From: start, To: end}, true
}

// tokenOrder lists the ids of tokens in roster order followed by any extra
// ids sorted.
func tokenOrder(play *core.Play, tokens map[string]core.Point) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, id := range play.TokenOrder() {
		if _, ok := tokens[id]; ok {
			out = append(out, id)
			seen[id] = struct{}{}
		}
	}
	var extra []string
	for id := range tokens {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
