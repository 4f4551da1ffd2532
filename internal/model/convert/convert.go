// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/nebrenner/basketball-play-author/internal/arrows"
	"github.com/nebrenner/basketball-play-author/internal/geo"
	"github.com/nebrenner/basketball-play-author/internal/model"
	"github.com/nebrenner/basketball-play-author/internal/schema"
	"github.com/nebrenner/basketball-play-author/pkg/core"
	"gorm.io/datatypes"
)

// PlayToRecord converts a core.Play to a GORM model.PlayRecord.
func PlayToRecord(p *core.Play) (model.PlayRecord, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return model.PlayRecord{}, fmt.Errorf("marshal play %s: %w", p.ID, err)
	}
	return model.PlayRecord{
		ID:            p.ID,
		Name:          p.Meta.Name,
		CourtType:     string(p.CourtType),
		FrameCount:    len(p.Frames),
		ArrowCount:    len(p.ArrowsByID),
		MetaCreatedAt: p.Meta.CreatedAt,
		MetaUpdatedAt: p.Meta.UpdatedAt,
		Document:      datatypes.JSON(doc),
	}, nil
}

// RecordToPlay decodes and validates the stored document.
func RecordToPlay(r model.PlayRecord) (*core.Play, error) {
	p, err := schema.Parse(r.Document)
	if err != nil {
		return nil, fmt.Errorf("decode play %s: %w", r.ID, err)
	}
	return p, nil
}

// RecordToSummary converts a GORM model.PlayRecord to a core.PlaySummary
// without decoding the document.
func RecordToSummary(r model.PlayRecord) core.PlaySummary {
	return core.PlaySummary{
		ID:         r.ID,
		Name:       r.Name,
		CourtType:  core.CourtType(r.CourtType),
		FrameCount: r.FrameCount,
		CreatedAt:  r.MetaCreatedAt,
		UpdatedAt:  r.MetaUpdatedAt,
	}
}

// PlayToArrowPaths resolves every arrow against the frame it is authored on.
// Arrows not referenced by any frame are skipped.
func PlayToArrowPaths(p *core.Play) []model.ArrowPath {
	var out []model.ArrowPath
	for _, f := range p.Frames {
		for _, a := range p.FrameArrows(f) {
			path := arrows.Resolve(a, f.Tokens)
			if len(path) < 2 {
				continue
			}
			out = append(out, model.ArrowPath{
				PlayID:      p.ID,
				FrameID:     f.ID,
				ArrowID:     a.ID,
				Kind:        string(a.Kind),
				FromTokenID: a.From,
				ToTokenID:   a.ToTokenID,
				Path:        geo.ToLineString(path),
				Length:      geo.PathLength(path),
			})
		}
	}
	return out
}

// ArrowPathPoints converts a stored path back to points.
func ArrowPathPoints(a model.ArrowPath) []core.Point {
	seq := a.Path.Coordinates()
	out := make([]core.Point, seq.Length())
	for i := range out {
		xy := seq.GetXY(i)
		out[i] = core.Point{X: xy.X, Y: xy.Y}
	}
	return out
}
