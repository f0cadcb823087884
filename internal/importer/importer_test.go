package importer

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func TestConflictPass(t *testing.T) {
	table := fieldset.Table{
		Headers: []string{"ID", "X", "Y"},
		Rows: []map[string]string{
			{"ID": "A1", "X": "16.3", "Y": "48.2"},
			{"ID": "B2", "X": "16.4", "Y": "48.3"},
			{"ID": "A1", "X": "16.5", "Y": "48.4"},
			{"ID": "C3", "X": "16.6", "Y": "48.5"},
		},
	}
	existing := map[string]string{"B2": "geom-b2"}

	valid, errs := ConflictPass(table, "ID", existing)

	wantValid := map[string]bool{"A1": true, "C3": true}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Errorf("valid IDs = %v, want %v", valid, wantValid)
	}

	wantErrs := []string{
		`Row 3: ID "B2" already exists in this dataset`,
		`Row 4: duplicate ID "A1", first used in row 2`,
	}
	if !reflect.DeepEqual(errs, wantErrs) {
		t.Errorf("errors = %v, want %v", errs, wantErrs)
	}
}

func TestErrorSummary(t *testing.T) {
	result := Result{Errors: []string{"a", "b", "c", "d"}}

	if got := result.ErrorSummary(10); !reflect.DeepEqual(got, result.Errors) {
		t.Errorf("ErrorSummary(10) = %v, want all errors", got)
	}

	want := []string{"a", "b", "+2 more"}
	if got := result.ErrorSummary(2); !reflect.DeepEqual(got, want) {
		t.Errorf("ErrorSummary(2) = %v, want %v", got, want)
	}
}

func newTestImporter(t *testing.T) (*Importer, *repository.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "import_test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.Dataset{},
		&model.DatasetField{},
		&model.Geometry{},
		&model.Entry{},
		&model.EntryFieldValue{},
		&model.EntryFile{},
	); err != nil {
		t.Fatal(err)
	}

	logger := util.NewLogger("test")
	repo := repository.NewRepository(db, logger, nil, nil)
	return NewImporter(repo, logger), repo
}

func seedDataset(t *testing.T, repo *repository.Repository) (*model.Dataset, *model.User) {
	t.Helper()

	ctx := context.Background()
	user := &model.User{Email: "worker@example.com", Username: "worker"}
	if err := repo.User.Create(ctx, nil, user); err != nil {
		t.Fatal(err)
	}

	dataset, err := repo.Dataset.Create(ctx, nil, &model.Dataset{Name: "Survey", OwnerID: user.ID})
	if err != nil {
		t.Fatal(err)
	}
	return dataset, user
}

func TestImportMaterializesSchemaAndRows(t *testing.T) {
	im, repo := newTestImporter(t)
	dataset, user := seedDataset(t, repo)
	ctx := context.Background()

	content := strings.Join([]string{
		"ID;X;Y;Adresse;Nutzung",
		"A1;16.37;48.21;Hauptstrasse 1;wohnen",
		"B2;16.38;48.22;;gewerbe",
		"C3;bogus;48.23;Ring 5;",
	}, "\n")

	result, err := im.Import(ctx, Params{
		DatasetID:     dataset.ID,
		Content:       content,
		IDColumn:      "ID",
		XColumn:       "X",
		YColumn:       "Y",
		AddressColumn: "Adresse",
		EPSG:          "auto",
		CreatedByID:   user.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Row 4") {
		t.Errorf("Errors = %v, want one error naming row 4", result.Errors)
	}
	if result.Delimiter != ";" {
		t.Errorf("Delimiter = %q, want \";\"", result.Delimiter)
	}

	fields, err := repo.Field.ListEnabled(ctx, nil, dataset.ID)
	if err != nil {
		t.Fatal(err)
	}
	fieldNames := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldNames = append(fieldNames, f.FieldName)
	}
	if !reflect.DeepEqual(fieldNames, []string{"Adresse", "Nutzung"}) {
		t.Errorf("materialized fields = %v, want [Adresse Nutzung]", fieldNames)
	}

	existing, err := repo.Geometry.ExistingIDs(ctx, nil, dataset.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(existing) != 2 {
		t.Fatalf("geometries = %d, want 2", len(existing))
	}

	// Blank address defaults to the placeholder.
	geometry, err := repo.Geometry.GetById(ctx, nil, existing["B2"])
	if err != nil {
		t.Fatal(err)
	}
	if geometry.Address != repository.DefaultAddress("B2") {
		t.Errorf("Address = %q, want the unknown-address placeholder", geometry.Address)
	}
	if len(geometry.Entries) != 1 || geometry.Entries[0].Name != "B2" {
		t.Fatalf("entries = %v, want one entry named B2", geometry.Entries)
	}

	// Blank cells do not produce value rows.
	values := geometry.Entries[0].Values
	if len(values) != 1 || values[0].FieldName != "Nutzung" || values[0].Value != "gewerbe" {
		t.Errorf("values = %v, want only Nutzung=gewerbe", values)
	}
}

func TestImportReportsConflicts(t *testing.T) {
	im, repo := newTestImporter(t)
	dataset, user := seedDataset(t, repo)
	ctx := context.Background()

	if _, err := repo.Geometry.Create(ctx, nil, &model.Geometry{
		DatasetID:   dataset.ID,
		IDKurz:      "A1",
		Longitude:   16.3,
		Latitude:    48.2,
		CreatedByID: user.ID,
	}); err != nil {
		t.Fatal(err)
	}

	content := "ID,X,Y\nA1,16.37,48.21\nB2,16.38,48.22\nB2,16.39,48.23\n"
	result, err := im.Import(ctx, Params{
		DatasetID:   dataset.ID,
		Content:     content,
		IDColumn:    "ID",
		XColumn:     "X",
		YColumn:     "Y",
		CreatedByID: user.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Imported != 1 {
		t.Errorf("Imported = %d, want only the fresh B2 row", result.Imported)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors = %v, want the existing-ID and in-file duplicate errors", result.Errors)
	}

	// The first B2 occurrence wins, the duplicate row is skipped.
	existing, err := repo.Geometry.ExistingIDs(ctx, nil, dataset.ID)
	if err != nil {
		t.Fatal(err)
	}
	geometry, err := repo.Geometry.GetById(ctx, nil, existing["B2"])
	if err != nil {
		t.Fatal(err)
	}
	if geometry.Longitude != 16.38 || geometry.Latitude != 48.22 {
		t.Errorf("B2 = %v/%v, want the coordinates of the first occurrence", geometry.Longitude, geometry.Latitude)
	}
}

func TestImportClearExisting(t *testing.T) {
	im, repo := newTestImporter(t)
	dataset, user := seedDataset(t, repo)
	ctx := context.Background()

	if _, err := repo.Geometry.Create(ctx, nil, &model.Geometry{
		DatasetID:   dataset.ID,
		IDKurz:      "A1",
		Longitude:   16.3,
		Latitude:    48.2,
		CreatedByID: user.ID,
	}); err != nil {
		t.Fatal(err)
	}

	content := "ID,X,Y\nA1,16.37,48.21\n"
	result, err := im.Import(ctx, Params{
		DatasetID:     dataset.ID,
		Content:       content,
		IDColumn:      "ID",
		XColumn:       "X",
		YColumn:       "Y",
		ClearExisting: true,
		CreatedByID:   user.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Imported != 1 || len(result.Errors) != 0 {
		t.Errorf("result = %+v, want a clean single-row import after clearing", result)
	}
}
