package repository

import (
	"context"
	"errors"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/gorm"
)

type FieldRepository struct {
	*baseRepository
}

func (fr FieldRepository) Create(ctx context.Context, tx *gorm.DB, field *model.DatasetField) (*model.DatasetField, error) {
	fr.logger.Debugf("Create dataset field with data: %v \n", field)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.DatasetField{}).Create(field).Error; err != nil {
		return field, err
	}

	return field, nil
}

func (fr FieldRepository) GetById(ctx context.Context, tx *gorm.DB, fieldId string) (*model.DatasetField, error) {
	fr.logger.Debugf("Get dataset field by id: %s \n", fieldId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var field *model.DatasetField
	if err := db.WithContext(ctx).Model(&model.DatasetField{}).
		Preload("Typology.Entries").
		Where("id = ?", fieldId).
		First(&field).Error; err != nil {
		return field, err
	}

	return field, nil
}

// ListEnabled returns the enabled fields of the dataset ordered by their
// display order and then by name.
func (fr FieldRepository) ListEnabled(ctx context.Context, tx *gorm.DB, datasetId string) ([]model.DatasetField, error) {
	fr.logger.Debugf("List enabled fields of dataset: %s \n", datasetId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var fields []model.DatasetField
	if err := db.WithContext(ctx).Model(&model.DatasetField{}).
		Preload("Typology.Entries").
		Where("dataset_id = ? AND enabled = ?", datasetId, true).
		Order("\"order\", field_name").
		Find(&fields).Error; err != nil {
		return nil, err
	}

	return fields, nil
}

func (fr FieldRepository) ListAll(ctx context.Context, tx *gorm.DB, datasetId string) ([]model.DatasetField, error) {
	fr.logger.Debugf("List all fields of dataset: %s \n", datasetId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var fields []model.DatasetField
	if err := db.WithContext(ctx).Model(&model.DatasetField{}).
		Preload("Typology.Entries").
		Where("dataset_id = ?", datasetId).
		Order("\"order\", field_name").
		Find(&fields).Error; err != nil {
		return nil, err
	}

	return fields, nil
}

// GetOrCreate returns the field with the given name, creating it as an
// enabled text field when missing. CSV import materializes columns through
// this: the column name is stored verbatim as both name and label.
func (fr FieldRepository) GetOrCreate(ctx context.Context, tx *gorm.DB, datasetId, fieldName string) (*model.DatasetField, bool, error) {
	fr.logger.Debugf("Get or create field %q of dataset: %s \n", fieldName, datasetId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var field model.DatasetField
	err := db.WithContext(ctx).Model(&model.DatasetField{}).
		Where("dataset_id = ? AND field_name = ?", datasetId, fieldName).
		First(&field).Error
	if err == nil {
		return &field, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	field = model.DatasetField{
		DatasetID:  datasetId,
		FieldName:  fieldName,
		FieldLabel: fieldName,
		FieldType:  fieldset.FieldTypeText,
		Enabled:    true,
	}
	if err := db.WithContext(ctx).Create(&field).Error; err != nil {
		return nil, false, err
	}

	return &field, true, nil
}

func (fr FieldRepository) Update(ctx context.Context, tx *gorm.DB, field *model.DatasetField) error {
	fr.logger.Debugf("Update dataset field with id: %s \n", field.ID)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.DatasetField{}).Where("id = ?", field.ID).
		Select("FieldLabel", "FieldType", "Required", "Enabled", "NonEditable", "HelpText", "Order", "Choices", "TypologyID", "TypologyCategory").
		Updates(field).Error
}

func (fr FieldRepository) Delete(ctx context.Context, tx *gorm.DB, fieldId string) error {
	fr.logger.Debugf("Delete dataset field with id: %s \n", fieldId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Where("id = ?", fieldId).Delete(&model.DatasetField{}).Error
}

// EnableAll re-enables every field of the dataset. Idempotent repair for
// datasets whose fields were disabled in bulk; returns the number of rows
// that flipped.
func (fr FieldRepository) EnableAll(ctx context.Context, tx *gorm.DB, datasetId string) (int64, error) {
	fr.logger.Debugf("Enable all fields of dataset: %s \n", datasetId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Model(&model.DatasetField{}).
		Where("dataset_id = ? AND enabled = ?", datasetId, false).
		Update("enabled", true)

	return result.RowsAffected, result.Error
}
