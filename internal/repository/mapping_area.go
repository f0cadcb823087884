package repository

import (
	"context"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"gorm.io/gorm"
)

type MappingAreaRepository struct {
	*baseRepository
}

func (mr MappingAreaRepository) Create(ctx context.Context, tx *gorm.DB, area *model.MappingArea) (*model.MappingArea, error) {
	mr.logger.Debugf("Create mapping area with data: %v \n", area)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.MappingArea{}).Create(area).Error; err != nil {
		return area, err
	}

	return area, nil
}

func (mr MappingAreaRepository) GetById(ctx context.Context, tx *gorm.DB, areaId string) (*model.MappingArea, error) {
	mr.logger.Debugf("Get mapping area by id: %s \n", areaId)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var area *model.MappingArea
	if err := db.WithContext(ctx).Model(&model.MappingArea{}).Where("id = ?", areaId).First(&area).Error; err != nil {
		return area, err
	}

	return area, nil
}

func (mr MappingAreaRepository) ListByDataset(ctx context.Context, tx *gorm.DB, datasetId string) ([]model.MappingArea, error) {
	mr.logger.Debugf("List mapping areas of dataset: %s \n", datasetId)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var areas []model.MappingArea
	if err := db.WithContext(ctx).Model(&model.MappingArea{}).
		Where("dataset_id = ?", datasetId).
		Order("name").
		Find(&areas).Error; err != nil {
		return nil, err
	}

	return areas, nil
}

func (mr MappingAreaRepository) Update(ctx context.Context, tx *gorm.DB, area *model.MappingArea) error {
	mr.logger.Debugf("Update mapping area with id: %s \n", area.ID)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.MappingArea{}).Where("id = ?", area.ID).
		Select("Name", "Description", "Polygon").
		Updates(area).Error
}

func (mr MappingAreaRepository) Delete(ctx context.Context, tx *gorm.DB, areaId string) error {
	mr.logger.Debugf("Delete mapping area with id: %s \n", areaId)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return mr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("mapping_area_id = ?", areaId).Delete(&model.DatasetUserMappingArea{}).Error; err != nil {
			return err
		}
		if err := tx.Where("mapping_area_id = ?", areaId).Delete(&model.DatasetGroupMappingArea{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", areaId).Delete(&model.MappingArea{}).Error
	})
}

// AllocateUser assigns a mapping area to a user for the dataset. Duplicate
// allocations surface the unique index violation.
func (mr MappingAreaRepository) AllocateUser(ctx context.Context, tx *gorm.DB, allocation *model.DatasetUserMappingArea) error {
	mr.logger.Debugf("Allocate mapping area %s to user %s \n", allocation.MappingAreaID, allocation.UserID)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.DatasetUserMappingArea{}).Create(allocation).Error
}

func (mr MappingAreaRepository) AllocateGroup(ctx context.Context, tx *gorm.DB, allocation *model.DatasetGroupMappingArea) error {
	mr.logger.Debugf("Allocate mapping area %s to group %s \n", allocation.MappingAreaID, allocation.GroupID)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.DatasetGroupMappingArea{}).Create(allocation).Error
}

func (mr MappingAreaRepository) DeallocateUser(ctx context.Context, tx *gorm.DB, datasetId, userId, areaId string) error {
	mr.logger.Debugf("Deallocate mapping area %s from user %s \n", areaId, userId)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).
		Where("dataset_id = ? AND user_id = ? AND mapping_area_id = ?", datasetId, userId, areaId).
		Delete(&model.DatasetUserMappingArea{}).Error
}

func (mr MappingAreaRepository) DeallocateGroup(ctx context.Context, tx *gorm.DB, datasetId, groupId, areaId string) error {
	mr.logger.Debugf("Deallocate mapping area %s from group %s \n", areaId, groupId)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).
		Where("dataset_id = ? AND group_id = ? AND mapping_area_id = ?", datasetId, groupId, areaId).
		Delete(&model.DatasetGroupMappingArea{}).Error
}

// AllowedAreasForUser returns the union of the user's direct allocations and
// the allocations of their groups, scoped to the dataset.
func (mr MappingAreaRepository) AllowedAreasForUser(ctx context.Context, tx *gorm.DB, datasetId, userId string) ([]model.MappingArea, error) {
	mr.logger.Debugf("Get allowed mapping areas for user %s in dataset %s \n", userId, datasetId)

	db := mr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var areas []model.MappingArea
	if err := db.WithContext(ctx).Model(&model.MappingArea{}).
		Joins("LEFT JOIN dataset_user_mapping_areas duma ON duma.mapping_area_id = mapping_areas.id AND duma.user_id = ?", userId).
		Joins("LEFT JOIN dataset_group_mapping_areas dgma ON dgma.mapping_area_id = mapping_areas.id").
		Joins("LEFT JOIN user_groups ug ON ug.group_id = dgma.group_id AND ug.user_id = ?", userId).
		Where("mapping_areas.dataset_id = ?", datasetId).
		Where("duma.user_id IS NOT NULL OR ug.user_id IS NOT NULL").
		Distinct("mapping_areas.*").
		Find(&areas).Error; err != nil {
		return nil, err
	}

	return areas, nil
}
