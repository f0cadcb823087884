package model

import (
	"sort"
	"strconv"

	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

type DatasetField struct {
	BaseModel
	DatasetID   string             `gorm:"type:text;not null;uniqueIndex:idx_dataset_field_name" json:"datasetId" form:"datasetId"`
	FieldName   string             `gorm:"type:varchar(255);not null;uniqueIndex:idx_dataset_field_name" json:"fieldName" form:"fieldName" binding:"required"`
	FieldLabel  string             `gorm:"type:varchar(255);not null" json:"fieldLabel" form:"fieldLabel" binding:"required"`
	FieldType   fieldset.FieldType `gorm:"type:varchar(20);not null;default:'text'" json:"fieldType" form:"fieldType"`
	Required    bool               `gorm:"type:boolean;default:false" json:"required" form:"required"`
	// No default tag: gorm skips zero values that carry one, and a field
	// created with Enabled false must stay disabled.
	Enabled     bool               `gorm:"type:boolean;not null" json:"enabled" form:"enabled"`
	NonEditable bool               `gorm:"type:boolean;default:false" json:"nonEditable" form:"nonEditable"`
	HelpText    string             `gorm:"type:text" json:"helpText" form:"helpText"`
	Order       int                `gorm:"type:integer;default:0" json:"order" form:"order"`

	// Role markers set during CSV import column selection.
	IsIDField         bool `gorm:"type:boolean;default:false" json:"isIdField"`
	IsCoordinateField bool `gorm:"type:boolean;default:false" json:"isCoordinateField"`
	IsAddressField    bool `gorm:"type:boolean;default:false" json:"isAddressField"`

	// Manual comma-separated choice list. Ignored when a typology is bound.
	Choices string `gorm:"type:text" json:"choices" form:"choices"`

	TypologyID       *string   `gorm:"type:text;index" json:"typologyId" form:"typologyId"`
	Typology         *Typology `json:"typology,omitempty"`
	TypologyCategory string    `gorm:"type:varchar(255)" json:"typologyCategory" form:"typologyCategory"`
}

func (df DatasetField) TableName() string {
	return "dataset_fields"
}

// ChoiceList resolves the effective selectable options for the field.
// A bound typology always wins over manual choices, regardless of the
// declared field type: entries are filtered by TypologyCategory when set,
// ordered by code, and labeled "code - name". Without a typology the manual
// Choices text is parsed; with neither, the list is empty.
// Typology.Entries must be preloaded when TypologyID is set.
func (df DatasetField) ChoiceList() []fieldset.ChoiceOption {
	if df.TypologyID != nil && df.Typology != nil {
		entries := make([]TypologyEntry, 0, len(df.Typology.Entries))
		for _, e := range df.Typology.Entries {
			if df.TypologyCategory != "" && e.Category != df.TypologyCategory {
				continue
			}
			entries = append(entries, e)
		}

		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Code < entries[j].Code
		})

		options := make([]fieldset.ChoiceOption, 0, len(entries))
		for _, e := range entries {
			options = append(options, fieldset.ChoiceOption{
				Value: strconv.Itoa(e.Code),
				Label: e.Label(),
			})
		}
		return options
	}

	return fieldset.SplitChoices(df.Choices)
}
