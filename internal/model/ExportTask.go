package model

import (
	"time"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"gorm.io/datatypes"
)

type ExportTask struct {
	BaseModel
	DatasetID string  `gorm:"type:text;not null;index" json:"datasetId" form:"datasetId"`
	Dataset   Dataset `json:"dataset"`

	RequestedByID string `gorm:"type:text;not null;index" json:"requestedById"`
	RequestedBy   User   `json:"requestedBy"`

	Status constant.ExportTaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// Requested file type filters as a JSON string array, empty means all.
	FileTypes       datatypes.JSON      `gorm:"type:jsonb" json:"fileTypes" form:"fileTypes"`
	DateFrom        *time.Time          `json:"dateFrom" form:"dateFrom"`
	DateTo          *time.Time          `json:"dateTo" form:"dateTo"`
	OrganizeBy      constant.OrganizeBy `gorm:"type:varchar(20);not null;default:'geometry'" json:"organizeBy" form:"organizeBy"`
	IncludeMetadata bool                `gorm:"type:boolean;not null" json:"includeMetadata" form:"includeMetadata"`

	ResultPath   string     `gorm:"type:text;not null;default:''" json:"resultPath"`
	ResultSize   int64      `gorm:"type:bigint;not null;default:0" json:"resultSize"`
	ErrorMessage string     `gorm:"type:text;not null;default:''" json:"errorMessage"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (et ExportTask) TableName() string {
	return "export_tasks"
}

// IsTerminal reports whether the task already reached a final status.
// Terminal tasks never transition again.
func (et ExportTask) IsTerminal() bool {
	return et.Status == constant.ExportTaskStatusCompleted || et.Status == constant.ExportTaskStatusFailed
}
