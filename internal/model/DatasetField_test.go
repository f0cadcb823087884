package model

import (
	"reflect"
	"testing"

	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

func TestDatasetFieldChoiceList(t *testing.T) {
	typologyID := "typ-1"
	typology := &Typology{
		BaseModel: BaseModel{ID: typologyID},
		Name:      "Building use",
		Entries: []TypologyEntry{
			{Code: 10, Category: "commercial", Name: "Office"},
			{Code: 2, Category: "residential", Name: "Single family"},
			{Code: 3, Category: "commercial", Name: "Retail"},
		},
	}

	tests := []struct {
		name  string
		field DatasetField
		want  []fieldset.ChoiceOption
	}{
		{
			// Numeric ordering: 10 sorts after 2 and 3.
			name: "typology wins over manual choices and sorts by code",
			field: DatasetField{
				FieldType:  fieldset.FieldTypeText,
				Choices:    "ignored",
				TypologyID: &typologyID,
				Typology:   typology,
			},
			want: []fieldset.ChoiceOption{
				{Value: "2", Label: "2 - Single family"},
				{Value: "3", Label: "3 - Retail"},
				{Value: "10", Label: "10 - Office"},
			},
		},
		{
			name: "category filter",
			field: DatasetField{
				TypologyID:       &typologyID,
				Typology:         typology,
				TypologyCategory: "commercial",
			},
			want: []fieldset.ChoiceOption{
				{Value: "3", Label: "3 - Retail"},
				{Value: "10", Label: "10 - Office"},
			},
		},
		{
			name:  "manual choices without typology",
			field: DatasetField{Choices: "vacant, occupied"},
			want: []fieldset.ChoiceOption{
				{Value: "vacant", Label: "vacant"},
				{Value: "occupied", Label: "occupied"},
			},
		},
		{
			name:  "no source yields an empty list",
			field: DatasetField{},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.field.ChoiceList()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChoiceList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntryFieldValueTypedValue(t *testing.T) {
	value := EntryFieldValue{FieldType: fieldset.FieldTypeInteger, Value: "42"}
	if got := value.TypedValue(); got != int64(42) {
		t.Errorf("TypedValue() = %v (%T), want 42 (int64)", got, got)
	}

	// The snapshot type decides the reading, not the current field definition.
	stale := EntryFieldValue{FieldType: fieldset.FieldTypeText, Value: "42"}
	if got := stale.TypedValue(); got != "42" {
		t.Errorf("TypedValue() = %v (%T), want the string form", got, got)
	}
}
