package exporter

import (
	"strings"
	"testing"

	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

func TestBuildCSV(t *testing.T) {
	year := 2024
	worker := model.User{Username: "worker"}

	geometries := []model.Geometry{
		{
			IDKurz:    "A1",
			Address:   "Hauptstrasse 1",
			Longitude: 16.37,
			Latitude:  48.21,
			Entries: []model.Entry{
				{
					Name:      "A1",
					Year:      &year,
					CreatedBy: worker,
					Values: []model.EntryFieldValue{
						{FieldName: "nutzung", FieldType: fieldset.FieldTypeText, Value: "wohnen"},
						{FieldName: "baujahr", FieldType: fieldset.FieldTypeInteger, Value: "1912"},
					},
				},
				{
					Name:      "A1 revisit",
					CreatedBy: worker,
					Values: []model.EntryFieldValue{
						{FieldName: "nutzung", FieldType: fieldset.FieldTypeText, Value: "gewerbe"},
					},
				},
			},
		},
		{
			IDKurz:    "B2",
			Address:   "Ring 5",
			Longitude: 16.38,
			Latitude:  48.22,
		},
	}

	out, err := BuildCSV(geometries)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus three rows:\n%s", len(lines), out)
	}

	// Union of observed field names, sorted, after the fixed columns.
	if lines[0] != "ID,Address,X,Y,User,Entry_Name,Year,baujahr,nutzung" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "A1,Hauptstrasse 1,16.37,48.21,worker,A1,2024,1912,wohnen" {
		t.Errorf("first entry row = %q", lines[1])
	}
	// Second entry of the same geometry repeats the geometry columns and
	// leaves the absent field blank.
	if lines[2] != "A1,Hauptstrasse 1,16.37,48.21,worker,A1 revisit,,,gewerbe" {
		t.Errorf("second entry row = %q", lines[2])
	}
	// A geometry without entries still exports one row.
	if lines[3] != "B2,Ring 5,16.38,48.22,,,,," {
		t.Errorf("entryless geometry row = %q", lines[3])
	}
}

func TestBuildCSVEmpty(t *testing.T) {
	out, err := BuildCSV(nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimRight(out, "\n") != strings.Join(csvFixedHeader, ",") {
		t.Errorf("empty export = %q, want only the fixed header", out)
	}
}
