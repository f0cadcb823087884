package model

import (
	"encoding/json"
	"fmt"

	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/datatypes"
)

type MappingArea struct {
	BaseModel
	DatasetID   string `gorm:"type:text;not null;index" json:"datasetId" form:"datasetId"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" form:"name" binding:"required"`
	Description string `gorm:"type:text" json:"description" form:"description"`

	// GeoJSON polygon, first ring only.
	Polygon datatypes.JSON `gorm:"type:jsonb;not null" json:"polygon" form:"polygon"`
}

func (ma MappingArea) TableName() string {
	return "mapping_areas"
}

// Ring parses the stored polygon into its validated form.
func (ma MappingArea) Ring() (*fieldset.Polygon, error) {
	var p fieldset.Polygon
	if err := json.Unmarshal(ma.Polygon, &p); err != nil {
		return nil, fmt.Errorf("mapping area %s has an invalid polygon: %w", ma.ID, err)
	}
	return &p, nil
}

// DatasetUserMappingArea allocates a mapping area to a user for one dataset.
type DatasetUserMappingArea struct {
	BaseModel
	DatasetID     string      `gorm:"type:text;not null;uniqueIndex:idx_dataset_user_area" json:"datasetId" form:"datasetId"`
	UserID        string      `gorm:"type:text;not null;uniqueIndex:idx_dataset_user_area" json:"userId" form:"userId" binding:"required"`
	MappingAreaID string      `gorm:"type:text;not null;uniqueIndex:idx_dataset_user_area" json:"mappingAreaId" form:"mappingAreaId" binding:"required"`
	MappingArea   MappingArea `json:"mappingArea"`
}

func (a DatasetUserMappingArea) TableName() string {
	return "dataset_user_mapping_areas"
}

// DatasetGroupMappingArea allocates a mapping area to a group for one dataset.
type DatasetGroupMappingArea struct {
	BaseModel
	DatasetID     string      `gorm:"type:text;not null;uniqueIndex:idx_dataset_group_area" json:"datasetId" form:"datasetId"`
	GroupID       string      `gorm:"type:text;not null;uniqueIndex:idx_dataset_group_area" json:"groupId" form:"groupId" binding:"required"`
	MappingAreaID string      `gorm:"type:text;not null;uniqueIndex:idx_dataset_group_area" json:"mappingAreaId" form:"mappingAreaId" binding:"required"`
	MappingArea   MappingArea `json:"mappingArea"`
}

func (a DatasetGroupMappingArea) TableName() string {
	return "dataset_group_mapping_areas"
}
