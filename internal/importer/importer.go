package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Importer ingests CSV files into a dataset: it detects the delimiter,
// validates row identifiers, materializes the dataset schema from the
// column set and writes geometries, entries and field values.
type Importer struct {
	repo   *repository.Repository
	logger *zap.SugaredLogger
}

func NewImporter(repo *repository.Repository, logger *zap.SugaredLogger) *Importer {
	return &Importer{repo: repo, logger: logger}
}

// Params describes one import request. Delimiter zero means auto-detect.
// EPSG is recorded as given; "auto" and "" are treated as WGS84 and no
// coordinate transformation is performed either way.
type Params struct {
	DatasetID     string
	Content       string
	Delimiter     rune
	IDColumn      string
	XColumn       string
	YColumn       string
	AddressColumn string
	EPSG          string
	ClearExisting bool
	CreatedByID   string
}

// Result reports the outcome of an import run. Errors holds every row
// problem in file order; Imported counts the geometry rows written.
type Result struct {
	Imported  int      `json:"imported"`
	Errors    []string `json:"errors"`
	Delimiter string   `json:"delimiter"`
}

// ErrorSummary returns the first limit errors plus a trailing "+K more"
// line when the list is longer.
func (r Result) ErrorSummary(limit int) []string {
	if len(r.Errors) <= limit {
		return r.Errors
	}

	summary := make([]string, 0, limit+1)
	summary = append(summary, r.Errors[:limit]...)
	summary = append(summary, fmt.Sprintf("+%d more", len(r.Errors)-limit))
	return summary
}

// ConflictPass scans the ID column before any writes. Duplicate IDs within
// the file are reported against the row of their first occurrence, and IDs
// already present in the dataset are excluded. The returned set holds the
// IDs eligible for ingestion. Row numbers are 1-based file rows, so the
// first data row is row 2.
func ConflictPass(table fieldset.Table, idColumn string, existing map[string]string) (map[string]bool, []string) {
	valid := make(map[string]bool)
	firstSeen := make(map[string]int)
	var errs []string

	for i, row := range table.Rows {
		rowNum := i + 2
		id := strings.TrimSpace(row[idColumn])
		if id == "" {
			continue
		}

		if first, dup := firstSeen[id]; dup {
			errs = append(errs, fmt.Sprintf("Row %d: duplicate ID %q, first used in row %d", rowNum, id, first))
			continue
		}
		firstSeen[id] = rowNum

		if _, exists := existing[id]; exists {
			errs = append(errs, fmt.Sprintf("Row %d: ID %q already exists in this dataset", rowNum, id))
			continue
		}

		valid[id] = true
	}

	return valid, errs
}

// Import runs the full pipeline. Validation problems accumulate in the
// result; only database failures return an error, and those roll back the
// whole ingestion pass.
func (im *Importer) Import(ctx context.Context, params Params) (*Result, error) {
	im.logger.Infof("Import CSV into dataset %s (clearExisting=%v)", params.DatasetID, params.ClearExisting)

	delimiter := params.Delimiter
	if delimiter == 0 {
		delimiter = fieldset.DetectDelimiter(params.Content, fieldset.DefaultDelimiterSampleSize)
	}

	table, err := fieldset.ParseCSV(params.Content, delimiter)
	if err != nil {
		return nil, err
	}

	for _, required := range []string{params.IDColumn, params.XColumn, params.YColumn} {
		if !table.HasColumn(required) {
			return nil, fmt.Errorf("column %q not found in the uploaded file", required)
		}
	}

	if params.ClearExisting {
		if err := im.repo.Dataset.ClearData(ctx, nil, params.DatasetID); err != nil {
			return nil, err
		}
	}

	existing, err := im.repo.Geometry.ExistingIDs(ctx, nil, params.DatasetID)
	if err != nil {
		return nil, err
	}

	valid, conflictErrs := ConflictPass(table, params.IDColumn, existing)

	result := &Result{Errors: conflictErrs, Delimiter: string(delimiter)}

	if err := im.materializeSchema(ctx, params, table); err != nil {
		return nil, err
	}

	txErr := im.repo.DB.Transaction(func(tx *gorm.DB) error {
		return im.ingestRows(ctx, tx, params, table, valid, result)
	})
	if txErr != nil {
		return nil, txErr
	}

	im.logger.Infof("Import into dataset %s finished: %d rows, %d errors", params.DatasetID, result.Imported, len(result.Errors))
	return result, nil
}

// materializeSchema ensures a field exists for every column that is not a
// role column. Column names become field names verbatim.
func (im *Importer) materializeSchema(ctx context.Context, params Params, table fieldset.Table) error {
	for _, header := range table.Headers {
		if header == params.IDColumn || header == params.XColumn || header == params.YColumn {
			continue
		}

		field, created, err := im.repo.Field.GetOrCreate(ctx, nil, params.DatasetID, header)
		if err != nil {
			return err
		}

		if created && header == params.AddressColumn && !field.IsAddressField {
			field.IsAddressField = true
			if err := im.repo.DB.Model(&model.DatasetField{}).Where("id = ?", field.ID).
				Update("is_address_field", true).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func (im *Importer) ingestRows(ctx context.Context, tx *gorm.DB, params Params, table fieldset.Table, valid map[string]bool, result *Result) error {
	for i, row := range table.Rows {
		rowNum := i + 2

		id := strings.TrimSpace(row[params.IDColumn])
		xRaw := strings.TrimSpace(row[params.XColumn])
		yRaw := strings.TrimSpace(row[params.YColumn])

		if id == "" || xRaw == "" || yRaw == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: ID, X and Y are required", rowNum))
			continue
		}

		// Conflicting IDs were already reported in the pre-pass. Consume
		// the ID so a later duplicate row cannot insert it again.
		if !valid[id] {
			continue
		}
		delete(valid, id)

		x, errX := strconv.ParseFloat(xRaw, 64)
		y, errY := strconv.ParseFloat(yRaw, 64)
		if errX != nil || errY != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid coordinates %q, %q", rowNum, xRaw, yRaw))
			continue
		}

		address := ""
		if params.AddressColumn != "" {
			address = strings.TrimSpace(row[params.AddressColumn])
		}

		geometry := &model.Geometry{
			DatasetID:   params.DatasetID,
			IDKurz:      id,
			Address:     address,
			Longitude:   x,
			Latitude:    y,
			CreatedByID: params.CreatedByID,
		}
		if _, err := im.repo.Geometry.Create(ctx, tx, geometry); err != nil {
			return err
		}

		entry := &model.Entry{
			GeometryID:  geometry.ID,
			Name:        id,
			CreatedByID: params.CreatedByID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		for _, header := range table.Headers {
			if header == params.IDColumn || header == params.XColumn || header == params.YColumn {
				continue
			}
			value := strings.TrimSpace(row[header])
			if value == "" {
				continue
			}

			fieldValue := &model.EntryFieldValue{
				EntryID:   entry.ID,
				FieldName: header,
				FieldType: fieldset.FieldTypeText,
				Value:     value,
			}
			if err := tx.Create(fieldValue).Error; err != nil {
				return err
			}
		}

		result.Imported++
	}

	return nil
}
