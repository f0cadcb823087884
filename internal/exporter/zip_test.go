package exporter

import (
	"reflect"
	"testing"
	"time"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"gorm.io/datatypes"
)

func exportFile(name, contentType, idKurz, entryName, uploader string, size int64, created time.Time) repository.ExportFile {
	return repository.ExportFile{
		EntryFile: model.EntryFile{
			BaseModel:   model.BaseModel{CreatedAt: &created},
			FileName:    name,
			ContentType: contentType,
			Size:        size,
		},
		IDKurz:        idKurz,
		EntryName:     entryName,
		UploaderEmail: uploader,
	}
}

func TestParseFileTypes(t *testing.T) {
	tests := []struct {
		name string
		raw  datatypes.JSON
		want int
	}{
		{name: "empty means no filter", raw: nil, want: 0},
		{name: "all disables the filter", raw: datatypes.JSON(`["image","all"]`), want: 0},
		{name: "specific types kept", raw: datatypes.JSON(`["image"]`), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types, err := parseFileTypes(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if len(types) != tt.want {
				t.Errorf("parseFileTypes() = %v, want %d types", types, tt.want)
			}
		})
	}

	if _, err := parseFileTypes(datatypes.JSON(`not json`)); err == nil {
		t.Error("expected an error for malformed filter")
	}
}

func TestFilterFiles(t *testing.T) {
	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	photo := exportFile("site.jpg", "image/jpeg", "A1", "A1", "a@example.com", 100, jan)
	report := exportFile("report.pdf", "application/pdf", "B2", "B2", "b@example.com", 200, jun)
	files := []repository.ExportFile{photo, report}

	images := FilterFiles(files, []constant.ExportFileType{constant.ExportFileTypeImage}, nil, nil)
	if len(images) != 1 || images[0].FileName != "site.jpg" {
		t.Errorf("image filter kept %v", images)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	late := FilterFiles(files, nil, &from, nil)
	if len(late) != 1 || late[0].FileName != "report.pdf" {
		t.Errorf("date filter kept %v", late)
	}

	if got := FilterFiles(files, nil, nil, nil); len(got) != 2 {
		t.Errorf("no filter kept %d files, want 2", len(got))
	}
}

func TestArchivePath(t *testing.T) {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	photo := exportFile("site.jpg", "image/jpeg", "A1", "first visit", "a@example.com", 100, created)

	tests := []struct {
		organizeBy constant.OrganizeBy
		want       string
	}{
		{constant.OrganizeByGeometry, "A1/site.jpg"},
		{constant.OrganizeByEntry, "A1_first_visit/site.jpg"},
		{constant.OrganizeByDate, "2024-03-10/site.jpg"},
		{constant.OrganizeByUser, "a@example.com/site.jpg"},
		{constant.OrganizeByType, "images/site.jpg"},
	}

	for _, tt := range tests {
		t.Run(string(tt.organizeBy), func(t *testing.T) {
			if got := ArchivePath(photo, tt.organizeBy); got != tt.want {
				t.Errorf("ArchivePath(%s) = %q, want %q", tt.organizeBy, got, tt.want)
			}
		})
	}
}

func TestArchivePathsDeduplicate(t *testing.T) {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	files := []repository.ExportFile{
		exportFile("site.jpg", "image/jpeg", "A1", "A1", "a@example.com", 100, created),
		exportFile("site.jpg", "image/jpeg", "A1", "A1", "a@example.com", 120, created),
		exportFile("site.jpg", "image/jpeg", "B2", "B2", "a@example.com", 140, created),
	}

	got := archivePaths(files, constant.OrganizeByGeometry)
	want := []string{"A1/site.jpg", "A1/site_1.jpg", "B2/site.jpg"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("archivePaths() = %v, want %v", got, want)
	}
}

func TestBuildStats(t *testing.T) {
	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	files := []repository.ExportFile{
		exportFile("site.jpg", "image/jpeg", "A1", "A1", "a@example.com", 100, jun),
		exportFile("report.pdf", "application/pdf", "A1", "A1", "a@example.com", 200, jan),
		exportFile("other.png", "image/png", "B2", "B2", "b@example.com", 50, jun),
	}

	stats := BuildStats(files)

	if stats.TotalFiles != 3 || stats.TotalSize != 350 {
		t.Errorf("totals = %d files / %d bytes, want 3 / 350", stats.TotalFiles, stats.TotalSize)
	}
	if stats.ByType["image"] != 2 || stats.ByType["document"] != 1 {
		t.Errorf("ByType = %v", stats.ByType)
	}
	if stats.ByGeometry["A1"] != 2 || stats.ByGeometry["B2"] != 1 {
		t.Errorf("ByGeometry = %v", stats.ByGeometry)
	}
	if stats.OldestFile == nil || !stats.OldestFile.Equal(jan) {
		t.Errorf("OldestFile = %v, want %v", stats.OldestFile, jan)
	}
	if stats.NewestFile == nil || !stats.NewestFile.Equal(jun) {
		t.Errorf("NewestFile = %v, want %v", stats.NewestFile, jun)
	}
}
