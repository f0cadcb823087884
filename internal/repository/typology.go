package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/gorm"
)

type TypologyRepository struct {
	*baseRepository
}

func (tr TypologyRepository) Create(ctx context.Context, tx *gorm.DB, typology *model.Typology) (*model.Typology, error) {
	tr.logger.Debugf("Create typology with data: %v \n", typology)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Typology{}).Create(typology).Error; err != nil {
		return typology, err
	}

	return typology, nil
}

func (tr TypologyRepository) GetById(ctx context.Context, tx *gorm.DB, typologyId string) (*model.Typology, error) {
	tr.logger.Debugf("Get typology by id: %s \n", typologyId)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var typology *model.Typology
	if err := db.WithContext(ctx).Model(&model.Typology{}).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("typology_entries.code")
		}).
		Where("id = ?", typologyId).
		First(&typology).Error; err != nil {
		return typology, err
	}

	return typology, nil
}

func (tr TypologyRepository) List(ctx context.Context, tx *gorm.DB) ([]model.Typology, error) {
	tr.logger.Debug("List typologies \n")

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var typologies []model.Typology
	if err := db.WithContext(ctx).Model(&model.Typology{}).Order("name").Find(&typologies).Error; err != nil {
		return nil, err
	}

	return typologies, nil
}

func (tr TypologyRepository) Update(ctx context.Context, tx *gorm.DB, typology *model.Typology) error {
	tr.logger.Debugf("Update typology with id: %s \n", typology.ID)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Typology{}).Where("id = ?", typology.ID).
		Select("Name", "Description").
		Updates(typology).Error
}

func (tr TypologyRepository) Delete(ctx context.Context, tx *gorm.DB, typologyId string) error {
	tr.logger.Debugf("Delete typology with id: %s \n", typologyId)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return tr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("typology_id = ?", typologyId).Delete(&model.TypologyEntry{}).Error; err != nil {
			return err
		}
		// Fields bound to the typology fall back to manual choices.
		if err := tx.Model(&model.DatasetField{}).Where("typology_id = ?", typologyId).
			Updates(map[string]any{"typology_id": nil, "typology_category": ""}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", typologyId).Delete(&model.Typology{}).Error
	})
}

func (tr TypologyRepository) CreateEntry(ctx context.Context, tx *gorm.DB, entry *model.TypologyEntry) (*model.TypologyEntry, error) {
	tr.logger.Debugf("Create typology entry with data: %v \n", entry)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.TypologyEntry{}).Create(entry).Error; err != nil {
		return entry, err
	}

	return entry, nil
}

func (tr TypologyRepository) UpdateEntry(ctx context.Context, tx *gorm.DB, entry *model.TypologyEntry) error {
	tr.logger.Debugf("Update typology entry with id: %s \n", entry.ID)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.TypologyEntry{}).Where("id = ?", entry.ID).
		Select("Code", "Category", "Name", "Description").
		Updates(entry).Error
}

func (tr TypologyRepository) DeleteEntry(ctx context.Context, tx *gorm.DB, entryId string) error {
	tr.logger.Debugf("Delete typology entry with id: %s \n", entryId)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Where("id = ?", entryId).Delete(&model.TypologyEntry{}).Error
}

// EntryImportResult accumulates the outcome of a typology CSV import.
type EntryImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

var typologyEntryRequiredColumns = []string{"code", "category", "name"}

// ImportEntriesCSV ingests typology entries from CSV content. The header
// must contain code, category and name columns, matched case-insensitively.
// Rows with a blank required cell are recorded as errors and skipped;
// existing codes are updated in place.
func (tr TypologyRepository) ImportEntriesCSV(ctx context.Context, tx *gorm.DB, typologyId string, content string) (*EntryImportResult, error) {
	tr.logger.Debugf("Import typology entries from CSV for typology: %s \n", typologyId)

	delimiter := fieldset.DetectDelimiter(content, fieldset.DefaultDelimiterSampleSize)
	table, err := fieldset.ParseCSV(content, delimiter)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]string, len(table.Headers))
	for _, h := range table.Headers {
		columns[strings.ToLower(strings.TrimSpace(h))] = h
	}
	for _, required := range typologyEntryRequiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := &EntryImportResult{}
	txErr := tr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		for i, row := range table.Rows {
			codeRaw := strings.TrimSpace(row[columns["code"]])
			category := strings.TrimSpace(row[columns["category"]])
			name := strings.TrimSpace(row[columns["name"]])
			if codeRaw == "" || category == "" || name == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: code, category and name are required", i+2))
				continue
			}

			code, convErr := strconv.Atoi(codeRaw)
			if convErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: code %q is not an integer", i+2, codeRaw))
				continue
			}

			description := ""
			if col, ok := columns["description"]; ok {
				description = strings.TrimSpace(row[col])
			}

			var existing model.TypologyEntry
			err := tx.Model(&model.TypologyEntry{}).
				Where("typology_id = ? AND code = ?", typologyId, code).
				First(&existing).Error
			switch {
			case err == nil:
				existing.Category = category
				existing.Name = name
				existing.Description = description
				if err := tx.Model(&model.TypologyEntry{}).Where("id = ?", existing.ID).
					Select("Category", "Name", "Description").
					Updates(&existing).Error; err != nil {
					return err
				}
				result.Updated++
			case errors.Is(err, gorm.ErrRecordNotFound):
				entry := model.TypologyEntry{
					TypologyID:  typologyId,
					Code:        code,
					Category:    category,
					Name:        name,
					Description: description,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				result.Created++
			default:
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return result, nil
}

// ExportEntriesCSV renders all entries of the typology as comma-separated
// CSV ordered by code.
func (tr TypologyRepository) ExportEntriesCSV(ctx context.Context, tx *gorm.DB, typologyId string) (string, error) {
	tr.logger.Debugf("Export typology entries as CSV for typology: %s \n", typologyId)

	typology, err := tr.GetById(ctx, tx, typologyId)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"code", "category", "name", "description"}); err != nil {
		return "", err
	}
	for _, entry := range typology.Entries {
		if err := writer.Write([]string{strconv.Itoa(entry.Code), entry.Category, entry.Name, entry.Description}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
