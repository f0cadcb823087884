package repository

import (
	"context"
	"errors"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/gorm"
)

// ErrSingleEntryDataset marks an attempt to add a second entry to a
// geometry in a dataset that does not allow multiple entries.
var ErrSingleEntryDataset = errors.New("dataset allows only one entry per geometry")

type EntryRepository struct {
	*baseRepository
}

// Create adds an entry to the geometry. When the dataset forbids multiple
// entries and the geometry already has one, ErrSingleEntryDataset is
// returned.
func (er EntryRepository) Create(ctx context.Context, tx *gorm.DB, dataset *model.Dataset, entry *model.Entry) (*model.Entry, error) {
	er.logger.Debugf("Create entry with data: %v \n", entry)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	txErr := er.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if !dataset.AllowMultipleEntries {
			var count int64
			if err := tx.Model(&model.Entry{}).Where("geometry_id = ?", entry.GeometryID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrSingleEntryDataset
			}
		}
		return tx.Create(entry).Error
	})
	if txErr != nil {
		return entry, txErr
	}

	return entry, nil
}

func (er EntryRepository) GetById(ctx context.Context, tx *gorm.DB, entryId string) (*model.Entry, error) {
	er.logger.Debugf("Get entry by id: %s \n", entryId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var entry *model.Entry
	if err := db.WithContext(ctx).Model(&model.Entry{}).
		Preload("Values").
		Preload("Files").
		Preload("CreatedBy").
		Where("id = ?", entryId).
		First(&entry).Error; err != nil {
		return entry, err
	}

	return entry, nil
}

func (er EntryRepository) ListByGeometry(ctx context.Context, tx *gorm.DB, geometryId string) ([]model.Entry, error) {
	er.logger.Debugf("List entries of geometry: %s \n", geometryId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var entries []model.Entry
	if err := db.WithContext(ctx).Model(&model.Entry{}).
		Preload("Values").
		Preload("Files").
		Preload("CreatedBy").
		Where("geometry_id = ?", geometryId).
		Order("created_at").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (er EntryRepository) Update(ctx context.Context, tx *gorm.DB, entry *model.Entry) error {
	er.logger.Debugf("Update entry with id: %s \n", entry.ID)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Entry{}).Where("id = ?", entry.ID).
		Select("Name", "Year").
		Updates(entry).Error
}

func (er EntryRepository) Delete(ctx context.Context, tx *gorm.DB, entryId string) error {
	er.logger.Debugf("Delete entry with id: %s \n", entryId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return er.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", entryId).Delete(&model.EntryFieldValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", entryId).Delete(&model.EntryFile{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", entryId).Delete(&model.Entry{}).Error
	})
}

// UpsertFieldValue stores one field value of the entry, creating the row on
// first write and updating it afterwards. The field type is snapshotted on
// the value row.
func (er EntryRepository) UpsertFieldValue(ctx context.Context, tx *gorm.DB, entryId, fieldName string, fieldType fieldset.FieldType, value string) (*model.EntryFieldValue, error) {
	er.logger.Debugf("Upsert field value %q of entry: %s \n", fieldName, entryId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var existing model.EntryFieldValue
	err := db.WithContext(ctx).Model(&model.EntryFieldValue{}).
		Where("entry_id = ? AND field_name = ?", entryId, fieldName).
		First(&existing).Error
	switch {
	case err == nil:
		existing.FieldType = fieldType
		existing.Value = value
		if err := db.WithContext(ctx).Model(&model.EntryFieldValue{}).Where("id = ?", existing.ID).
			Select("FieldType", "Value").
			Updates(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		created := model.EntryFieldValue{
			EntryID:   entryId,
			FieldName: fieldName,
			FieldType: fieldType,
			Value:     value,
		}
		if err := db.WithContext(ctx).Create(&created).Error; err != nil {
			return nil, err
		}
		return &created, nil
	default:
		return nil, err
	}
}
