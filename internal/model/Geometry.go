package model

import "github.com/paulmach/orb"

type Geometry struct {
	BaseModel
	DatasetID string `gorm:"type:text;not null;uniqueIndex:idx_dataset_geometry_id_kurz" json:"datasetId" form:"datasetId"`
	IDKurz    string `gorm:"type:varchar(255);not null;uniqueIndex:idx_dataset_geometry_id_kurz" json:"idKurz" form:"idKurz" binding:"required"`
	Address   string `gorm:"type:varchar(500);not null" json:"address" form:"address"`

	// WGS84 coordinates.
	Longitude float64 `gorm:"type:double precision;not null" json:"longitude" form:"longitude"`
	Latitude  float64 `gorm:"type:double precision;not null" json:"latitude" form:"latitude"`

	CreatedByID string `gorm:"type:text;not null;index" json:"createdById"`
	CreatedBy   User   `json:"createdBy"`

	Entries []Entry `json:"entries,omitempty"`
}

func (g Geometry) TableName() string {
	return "geometries"
}

func (g Geometry) Point() orb.Point {
	return orb.Point{g.Longitude, g.Latitude}
}
