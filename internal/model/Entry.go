package model

import "github.com/silvioheinze/isr-field-sub000/pkg/fieldset"

type Entry struct {
	BaseModel
	GeometryID string `gorm:"type:text;not null;index" json:"geometryId" form:"geometryId"`
	Name       string `gorm:"type:varchar(255);not null" json:"name" form:"name"`
	Year       *int   `gorm:"type:integer" json:"year" form:"year"`

	CreatedByID string `gorm:"type:text;not null;index" json:"createdById"`
	CreatedBy   User   `json:"createdBy"`

	Values []EntryFieldValue `json:"values,omitempty"`
	Files  []EntryFile       `json:"files,omitempty"`
}

func (e Entry) TableName() string {
	return "entries"
}

type EntryFieldValue struct {
	BaseModel
	EntryID   string `gorm:"type:text;not null;uniqueIndex:idx_entry_field_value_name" json:"entryId" form:"entryId"`
	FieldName string `gorm:"type:varchar(255);not null;uniqueIndex:idx_entry_field_value_name" json:"fieldName" form:"fieldName" binding:"required"`

	// Snapshot of the field type at write time. TypedValue decodes with this
	// copy, so rows written before a field type change keep their old reading.
	FieldType fieldset.FieldType `gorm:"type:varchar(20);not null;default:'text'" json:"fieldType" form:"fieldType"`
	Value     string             `gorm:"type:text;not null;default:''" json:"value" form:"value"`
}

func (efv EntryFieldValue) TableName() string {
	return "entry_field_values"
}

func (efv EntryFieldValue) TypedValue() any {
	return fieldset.Decode(efv.Value, efv.FieldType)
}
