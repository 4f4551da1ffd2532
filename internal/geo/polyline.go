package geo

import (
	"encoding/json"
	"fmt"

	"github.com/nebrenner/basketball-play-author/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// curveSamples is the flattening resolution used for length measurement.
const curveSamples = 32

// ToLineString converts points into a geom.LineString. A path without two
// distinct points becomes an empty LineString.
func ToLineString(points []core.Point) geom.LineString {
	if len(points) < 2 {
		return geom.LineString{}
	}
	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.X, p.Y)
	}
	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq, geom.OmitInvalid)
	if err != nil {
		return geom.LineString{}
	}
	return ls
}

// PathLength returns the arc length of the curve described by path. Three
// point paths are flattened before measuring.
func PathLength(path []core.Point) float64 {
	if len(path) < 2 {
		return 0
	}
	pts := path
	if len(path) > 2 {
		pts = Sample(path, curveSamples)
	}
	return ToLineString(pts).Length()
}

// ParsePolyline parses a JSON array of coordinates into points.
// Input format: "[[x1,y1],[x2,y2],...]"
func ParsePolyline(input string) ([]core.Point, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	if len(coords) < 2 || len(coords) > 3 {
		return nil, fmt.Errorf("polyline must have 2 or 3 points, got %d", len(coords))
	}

	points := make([]core.Point, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		points[i] = core.Point{X: coord[0], Y: coord[1]}
	}

	return points, nil
}
