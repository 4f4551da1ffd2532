package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nebrenner/basketball-play-author/internal/dispatcher"
	"github.com/nebrenner/basketball-play-author/internal/geo"
	"github.com/nebrenner/basketball-play-author/internal/util"
	"github.com/nebrenner/basketball-play-author/pkg/core"
)

// arg returns the i-th argument with surrounding quotes removed.
func arg(e dispatcher.Event, i int) string {
	return util.FixEscapeQuotes(util.TrimQuotes(e.Arg(i)))
}

// joined returns every argument from i on as one space separated string.
// It lets free text such as notes be passed without quoting.
func joined(e dispatcher.Event, i int) string {
	if i >= len(e.Args) {
		return ""
	}
	parts := make([]string, 0, len(e.Args)-i)
	for j := i; j < len(e.Args); j++ {
		parts = append(parts, arg(e, j))
	}
	return strings.Join(parts, " ")
}

func requireArgs(e dispatcher.Event, n int) error {
	if len(e.Args) < n {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrBadArgs, e.Command, n, len(e.Args))
	}
	return nil
}

// parseIntFromFloat accepts "2" as well as "2.00".
func parseIntFromFloat(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadArgs, s)
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrBadArgs, s)
	}
	return int(f), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadArgs, s)
	}
	return f, nil
}

// parsePoint accepts "x,y" in one argument or x and y as two arguments
// starting at i.
func parsePoint(e dispatcher.Event, i int) (core.Point, error) {
	raw := arg(e, i)
	if !strings.Contains(raw, ",") && i+1 < len(e.Args) {
		raw = raw + "," + arg(e, i+1)
	}
	p, err := geo.PointFromString(raw)
	if err != nil {
		return core.Point{}, fmt.Errorf("%w: %w", ErrBadArgs, err)
	}
	return p, nil
}

// parseControl reads the control point of :ARROW:CONTROL:, given either as
// a point or as a polyline whose middle vertex is the control.
func parseControl(e dispatcher.Event, i int) (core.Point, error) {
	raw := joined(e, i)
	if !strings.HasPrefix(raw, "[") {
		return parsePoint(e, i)
	}
	poly, err := geo.ParsePolyline(raw)
	if err != nil {
		return core.Point{}, fmt.Errorf("%w: %w", ErrBadArgs, err)
	}
	if len(poly) != 3 {
		return core.Point{}, fmt.Errorf("%w: polyline needs a middle point", ErrBadArgs)
	}
	return poly[1], nil
}

func parseKind(s string) (core.ArrowKind, error) {
	k := core.ArrowKind(strings.ToLower(s))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown arrow kind %q", ErrBadArgs, s)
	}
	return k, nil
}

func parseCourt(s string) (core.CourtType, error) {
	switch c := core.CourtType(strings.ToLower(s)); c {
	case core.CourtHalf, core.CourtFull:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown court type %q", ErrBadArgs, s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", ErrBadArgs, s)
	}
	return b, nil
}
