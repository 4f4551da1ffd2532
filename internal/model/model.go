package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&PlayRecord{},
	&ArrowPath{},
}

// PlayRecord is a saved play. The whole document lives in Document; the
// remaining columns exist for listing without decoding it.
//
// The timestamps are copied from the play's meta rather than being managed
// by gorm so that a loaded play round-trips unchanged.
type PlayRecord struct {
	ID            string         `json:"id" gorm:"primaryKey;size:64"`
	Name          string         `json:"name" gorm:"size:255;index:idx_plays_name"`
	CourtType     string         `json:"courtType" gorm:"size:8"`
	FrameCount    int            `json:"frameCount"`
	ArrowCount    int            `json:"arrowCount"`
	MetaCreatedAt time.Time      `json:"createdAt"`
	MetaUpdatedAt time.Time      `json:"updatedAt" gorm:"index:idx_plays_updated_at"`
	Document      datatypes.JSON `json:"document"`
}

func (*PlayRecord) TableName() string {
	return "plays"
}

// ArrowPath is the resolved path of one authored arrow in the frame that
// owns it. Rows are rewritten every time the play is saved.
type ArrowPath struct {
	ID          uint            `json:"-" gorm:"primarykey;autoIncrement"`
	PlayID      string          `json:"playId" gorm:"size:64;index:idx_arrow_paths_play_id"`
	FrameID     string          `json:"frameId" gorm:"size:64"`
	ArrowID     string          `json:"arrowId" gorm:"size:64"`
	Kind        string          `json:"kind" gorm:"size:16"`
	FromTokenID string          `json:"fromTokenId" gorm:"size:64"`
	ToTokenID   string          `json:"toTokenId" gorm:"size:64"`
	Path        geom.LineString `json:"path"`
	Length      float64         `json:"length"`
}

func (*ArrowPath) TableName() string {
	return "arrow_paths"
}
