package repository

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "repo_test.db")), &gorm.Config{
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
		&model.Typology{},
		&model.TypologyEntry{},
		&model.Geometry{},
		&model.Entry{},
		&model.EntryFieldValue{},
		&model.ExportTask{},
	); err != nil {
		t.Fatal(err)
	}

	return NewRepository(db, util.NewLogger("test"), nil, nil)
}

func seedDatasetWithOwner(t *testing.T, repo *Repository) (*model.Dataset, *model.User) {
	t.Helper()

	ctx := context.Background()
	user := &model.User{Email: "owner@example.com", Username: "owner"}
	if err := repo.User.Create(ctx, nil, user); err != nil {
		t.Fatal(err)
	}

	dataset, err := repo.Dataset.Create(ctx, nil, &model.Dataset{Name: "Survey", OwnerID: user.ID})
	if err != nil {
		t.Fatal(err)
	}
	return dataset, user
}

func TestFieldGetOrCreate(t *testing.T) {
	repo := newTestRepository(t)
	dataset, _ := seedDatasetWithOwner(t, repo)
	ctx := context.Background()

	field, created, err := repo.Field.GetOrCreate(ctx, nil, dataset.ID, "Nutzung 2024")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("created = false, want true for a fresh field")
	}
	if field.FieldName != "Nutzung 2024" || field.FieldLabel != "Nutzung 2024" {
		t.Errorf("field name/label = %q/%q, want the column name kept verbatim", field.FieldName, field.FieldLabel)
	}
	if field.FieldType != fieldset.FieldTypeText || !field.Enabled {
		t.Errorf("field = %+v, want an enabled text field", field)
	}

	again, created, err := repo.Field.GetOrCreate(ctx, nil, dataset.ID, "Nutzung 2024")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("created = true, want false on the second call")
	}
	if again.ID != field.ID {
		t.Errorf("second call returned %s, want the existing field %s", again.ID, field.ID)
	}
}

func TestFieldEnableAll(t *testing.T) {
	repo := newTestRepository(t)
	dataset, _ := seedDatasetWithOwner(t, repo)
	ctx := context.Background()

	for _, f := range []model.DatasetField{
		{DatasetID: dataset.ID, FieldName: "a", FieldLabel: "A", FieldType: fieldset.FieldTypeText, Enabled: false},
		{DatasetID: dataset.ID, FieldName: "b", FieldLabel: "B", FieldType: fieldset.FieldTypeText, Enabled: false},
		{DatasetID: dataset.ID, FieldName: "c", FieldLabel: "C", FieldType: fieldset.FieldTypeText, Enabled: true},
	} {
		if _, err := repo.Field.Create(ctx, nil, &f); err != nil {
			t.Fatal(err)
		}
	}

	flipped, err := repo.Field.EnableAll(ctx, nil, dataset.ID)
	if err != nil {
		t.Fatal(err)
	}
	if flipped != 2 {
		t.Errorf("EnableAll flipped %d fields, want 2", flipped)
	}

	fields, err := repo.Field.ListEnabled(ctx, nil, dataset.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 3 {
		t.Errorf("enabled fields = %d, want 3", len(fields))
	}

	// Nothing left to flip.
	flipped, err = repo.Field.EnableAll(ctx, nil, dataset.ID)
	if err != nil {
		t.Fatal(err)
	}
	if flipped != 0 {
		t.Errorf("second EnableAll flipped %d fields, want 0", flipped)
	}
}

func TestExportTaskLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	dataset, user := seedDatasetWithOwner(t, repo)
	ctx := context.Background()

	task, err := repo.ExportTask.Create(ctx, nil, &model.ExportTask{
		DatasetID:     dataset.ID,
		RequestedByID: user.ID,
		// Create always starts pending, whatever the caller passed.
		Status:     constant.ExportTaskStatusCompleted,
		OrganizeBy: constant.OrganizeByGeometry,
	})
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != constant.ExportTaskStatusPending {
		t.Fatalf("Status = %q, want pending after create", task.Status)
	}

	if err := repo.ExportTask.MarkProcessing(ctx, nil, task.ID); err != nil {
		t.Fatal(err)
	}

	if err := repo.ExportTask.MarkCompleted(ctx, nil, task.ID, "survey.zip", 1024); err != nil {
		t.Fatal(err)
	}

	task, err = repo.ExportTask.GetById(ctx, nil, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != constant.ExportTaskStatusCompleted {
		t.Errorf("Status = %q, want completed", task.Status)
	}
	if task.ResultPath != "survey.zip" || task.ResultSize != 1024 {
		t.Errorf("result = %q/%d, want survey.zip/1024", task.ResultPath, task.ResultSize)
	}
	if task.CompletedAt == nil {
		t.Error("CompletedAt = nil, want a completion timestamp")
	}

	// Terminal tasks reject further transitions.
	if err := repo.ExportTask.MarkFailed(ctx, nil, task.ID, "boom"); !errors.Is(err, ErrExportTaskTerminal) {
		t.Errorf("MarkFailed on a completed task = %v, want ErrExportTaskTerminal", err)
	}

	task, err = repo.ExportTask.GetById(ctx, nil, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != constant.ExportTaskStatusCompleted || task.ErrorMessage != "" {
		t.Errorf("task = %q/%q, terminal state must not change", task.Status, task.ErrorMessage)
	}
}

func TestGeometryGetForUserScopedToDataset(t *testing.T) {
	repo := newTestRepository(t)
	dataset, user := seedDatasetWithOwner(t, repo)
	ctx := context.Background()

	other := &model.User{Email: "other@example.com", Username: "other"}
	if err := repo.User.Create(ctx, nil, other); err != nil {
		t.Fatal(err)
	}
	otherDataset, err := repo.Dataset.Create(ctx, nil, &model.Dataset{Name: "Other survey", OwnerID: other.ID})
	if err != nil {
		t.Fatal(err)
	}

	geometry, err := repo.Geometry.Create(ctx, nil, &model.Geometry{
		DatasetID:   dataset.ID,
		IDKurz:      "A1",
		Longitude:   16.37,
		Latitude:    48.21,
		CreatedByID: user.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// A foreign geometry id under another dataset reads as not found, even
	// for that dataset's owner.
	if _, err := repo.Geometry.GetForUser(ctx, nil, otherDataset, *other, geometry.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetForUser across datasets = %v, want gorm.ErrRecordNotFound", err)
	}

	got, err := repo.Geometry.GetForUser(ctx, nil, dataset, *user, geometry.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != geometry.ID {
		t.Errorf("GetForUser returned %s, want %s", got.ID, geometry.ID)
	}
}

func TestTypologyEntriesImportCSV(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	typology, err := repo.Typology.Create(ctx, nil, &model.Typology{Name: "Building use"})
	if err != nil {
		t.Fatal(err)
	}

	content := "code,category,name\n10,commercial,Office\n2,residential,Single family\nx2,commercial,Retail\n"
	result, err := repo.Typology.ImportEntriesCSV(ctx, nil, typology.ID, content)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 2 || result.Updated != 0 {
		t.Errorf("result = %+v, want 2 created", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "not an integer") {
		t.Errorf("Errors = %v, want one non-integer code error", result.Errors)
	}

	// Codes order numerically, 10 after 2.
	typology, err = repo.Typology.GetById(ctx, nil, typology.ID)
	if err != nil {
		t.Fatal(err)
	}
	codes := make([]int, 0, len(typology.Entries))
	for _, e := range typology.Entries {
		codes = append(codes, e.Code)
	}
	if !reflect.DeepEqual(codes, []int{2, 10}) {
		t.Errorf("entry codes = %v, want [2 10]", codes)
	}

	// Re-importing updates in place instead of duplicating codes.
	result, err = repo.Typology.ImportEntriesCSV(ctx, nil, typology.ID, "code,category,name\n2,residential,Detached house\n")
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Errorf("result = %+v, want 1 updated", result)
	}

	csvOut, err := repo.Typology.ExportEntriesCSV(ctx, nil, typology.ID)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "2,") || !strings.HasPrefix(lines[2], "10,") {
		t.Errorf("exported CSV = %q, want rows ordered 2 then 10", csvOut)
	}
}

func TestEntryCreateSingleEntryRule(t *testing.T) {
	repo := newTestRepository(t)
	dataset, user := seedDatasetWithOwner(t, repo)
	ctx := context.Background()

	geometry, err := repo.Geometry.Create(ctx, nil, &model.Geometry{
		DatasetID:   dataset.ID,
		IDKurz:      "A1",
		Longitude:   16.37,
		Latitude:    48.21,
		CreatedByID: user.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Entry.Create(ctx, nil, dataset, &model.Entry{
		GeometryID:  geometry.ID,
		Name:        "A1",
		CreatedByID: user.ID,
	}); err != nil {
		t.Fatal(err)
	}

	_, err = repo.Entry.Create(ctx, nil, dataset, &model.Entry{
		GeometryID:  geometry.ID,
		Name:        "A1 again",
		CreatedByID: user.ID,
	})
	if !errors.Is(err, ErrSingleEntryDataset) {
		t.Fatalf("second entry error = %v, want ErrSingleEntryDataset", err)
	}

	dataset.AllowMultipleEntries = true
	if err := repo.Dataset.Update(ctx, nil, dataset); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Entry.Create(ctx, nil, dataset, &model.Entry{
		GeometryID:  geometry.ID,
		Name:        "A1 again",
		CreatedByID: user.ID,
	}); err != nil {
		t.Errorf("second entry with multiple entries allowed = %v, want success", err)
	}
}
