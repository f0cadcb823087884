package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/silvioheinze/isr-field-sub000/internal/access"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/gorm"
)

// ErrGeometryNotVisible marks a geometry that exists but lies outside the
// user's allocated mapping areas.
var ErrGeometryNotVisible = errors.New("geometry is outside the allocated mapping areas")

type GeometryRepository struct {
	*baseRepository
}

// DefaultAddress is used when a geometry is created without an address.
func DefaultAddress(idKurz string) string {
	return fmt.Sprintf("Unknown Address (%s)", idKurz)
}

func (gr GeometryRepository) Create(ctx context.Context, tx *gorm.DB, geometry *model.Geometry) (*model.Geometry, error) {
	gr.logger.Debugf("Create geometry with data: %v \n", geometry)

	if geometry.Address == "" {
		geometry.Address = DefaultAddress(geometry.IDKurz)
	}

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Geometry{}).Create(geometry).Error; err != nil {
		return geometry, err
	}

	return geometry, nil
}

func (gr GeometryRepository) GetById(ctx context.Context, tx *gorm.DB, geometryId string) (*model.Geometry, error) {
	gr.logger.Debugf("Get geometry by id: %s \n", geometryId)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var geometry *model.Geometry
	if err := db.WithContext(ctx).Model(&model.Geometry{}).
		Preload("CreatedBy").
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("entries.created_at")
		}).
		Preload("Entries.Values").
		Preload("Entries.Files").
		Preload("Entries.CreatedBy").
		Where("id = ?", geometryId).
		First(&geometry).Error; err != nil {
		return geometry, err
	}

	return geometry, nil
}

// GetForUser loads a geometry scoped to the dataset and enforces the
// mapping-area restriction for the user. A geometry of another dataset
// reads as not found; one outside the allocation returns
// ErrGeometryNotVisible.
func (gr GeometryRepository) GetForUser(ctx context.Context, tx *gorm.DB, dataset *model.Dataset, user model.User, geometryId string) (*model.Geometry, error) {
	geometry, err := gr.GetById(ctx, tx, geometryId)
	if err != nil {
		return nil, err
	}

	if geometry.DatasetID != dataset.ID {
		return nil, gorm.ErrRecordNotFound
	}

	rings, err := gr.allowedRings(ctx, tx, dataset, user)
	if err != nil {
		return nil, err
	}

	if !access.UserHasGeometryAccess(*dataset, user, *geometry, rings) {
		return nil, ErrGeometryNotVisible
	}

	return geometry, nil
}

// ListForUser returns the dataset's geometries the user may see, applying
// the mapping-area filter.
func (gr GeometryRepository) ListForUser(ctx context.Context, tx *gorm.DB, dataset *model.Dataset, user model.User) ([]model.Geometry, error) {
	gr.logger.Debugf("List geometries of dataset %s for user %s \n", dataset.ID, user.ID)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var geometries []model.Geometry
	if err := db.WithContext(ctx).Model(&model.Geometry{}).
		Where("dataset_id = ?", dataset.ID).
		Order("id_kurz").
		Find(&geometries).Error; err != nil {
		return nil, err
	}

	rings, err := gr.allowedRings(ctx, tx, dataset, user)
	if err != nil {
		return nil, err
	}

	return access.FilterGeometries(*dataset, user, geometries, rings), nil
}

func (gr GeometryRepository) allowedRings(ctx context.Context, tx *gorm.DB, dataset *model.Dataset, user model.User) ([]*fieldset.Polygon, error) {
	if !dataset.EnableMappingAreas || user.IsSuperuser || dataset.OwnerID == user.ID {
		return nil, nil
	}

	areaRepo := MappingAreaRepository{baseRepository: gr.baseRepository}
	areas, err := areaRepo.AllowedAreasForUser(ctx, tx, dataset.ID, user.ID)
	if err != nil {
		return nil, err
	}

	return access.AllowedRings(areas, gr.logger), nil
}

// ExistingIDs returns the id_kurz values already present in the dataset,
// mapped to their geometry ids.
func (gr GeometryRepository) ExistingIDs(ctx context.Context, tx *gorm.DB, datasetId string) (map[string]string, error) {
	gr.logger.Debugf("Get existing geometry ids of dataset: %s \n", datasetId)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var geometries []model.Geometry
	if err := db.WithContext(ctx).Model(&model.Geometry{}).
		Select("id", "id_kurz").
		Where("dataset_id = ?", datasetId).
		Find(&geometries).Error; err != nil {
		return nil, err
	}

	existing := make(map[string]string, len(geometries))
	for _, g := range geometries {
		existing[g.IDKurz] = g.ID
	}

	return existing, nil
}

func (gr GeometryRepository) Update(ctx context.Context, tx *gorm.DB, geometry *model.Geometry) error {
	gr.logger.Debugf("Update geometry with id: %s \n", geometry.ID)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Geometry{}).Where("id = ?", geometry.ID).
		Select("Address", "Longitude", "Latitude").
		Updates(geometry).Error
}

func (gr GeometryRepository) Delete(ctx context.Context, tx *gorm.DB, geometryId string) error {
	gr.logger.Debugf("Delete geometry with id: %s \n", geometryId)

	db := gr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return gr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		entryIDs := tx.Model(&model.Entry{}).Select("id").Where("geometry_id = ?", geometryId)
		if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&model.EntryFieldValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&model.EntryFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("geometry_id = ?", geometryId).Delete(&model.Entry{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", geometryId).Delete(&model.Geometry{}).Error
	})
}
