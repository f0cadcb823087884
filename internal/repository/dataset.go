package repository

import (
	"context"

	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"gorm.io/gorm"
)

type DatasetRepository struct {
	*baseRepository
}

func (dr DatasetRepository) Create(ctx context.Context, tx *gorm.DB, dataset *model.Dataset) (*model.Dataset, error) {
	dr.logger.Debugf("Create dataset with data: %v \n", dataset)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Dataset{}).Create(dataset).Error; err != nil {
		return dataset, err
	}

	return dataset, nil
}

func (dr DatasetRepository) GetById(ctx context.Context, tx *gorm.DB, datasetId string) (*model.Dataset, error) {
	dr.logger.Debugf("Get dataset by id: %s \n", datasetId)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var dataset *model.Dataset
	if err := db.WithContext(ctx).Model(&model.Dataset{}).
		Preload("Owner").
		Preload("SharedWith").
		Preload("SharedWithGroups").
		Where("id = ?", datasetId).
		First(&dataset).Error; err != nil {
		return dataset, err
	}

	return dataset, nil
}

// GetRoleOfDataset resolves what the authenticated user may do with the
// dataset. Denied access yields DatasetRoleNone with a nil error so the
// caller can respond with a clean forbidden instead of a server error.
func (dr DatasetRepository) GetRoleOfDataset(ctx context.Context, tx *gorm.DB, datasetId string, authUser *auth.JWTPayload) (constant.DatasetRole, *model.Dataset, error) {
	dr.logger.Debugf("Get role of dataset with datasetId: %s and userID: %s \n", datasetId, authUser.ID)

	dataset, err := dr.GetById(ctx, tx, datasetId)
	if err != nil {
		return constant.DatasetRoleNone, nil, err
	}

	if authUser.IsSuperuser || dataset.OwnerID == authUser.ID {
		return constant.DatasetRoleOwner, dataset, nil
	}

	groupIDs, err := UserRepository{baseRepository: dr.baseRepository}.GroupIDs(ctx, tx, authUser.ID)
	if err != nil {
		return constant.DatasetRoleNone, nil, err
	}

	user := model.User{BaseModel: model.BaseModel{ID: authUser.ID}}
	if dataset.CanAccess(user, groupIDs) {
		if dataset.IsPublic && !dr.isShared(*dataset, authUser.ID, groupIDs) {
			return constant.DatasetRoleViewer, dataset, nil
		}
		return constant.DatasetRoleEditor, dataset, nil
	}

	return constant.DatasetRoleNone, dataset, nil
}

func (dr DatasetRepository) isShared(dataset model.Dataset, userId string, groupIDs []string) bool {
	for _, u := range dataset.SharedWith {
		if u.ID == userId {
			return true
		}
	}
	for _, g := range dataset.SharedWithGroups {
		for _, id := range groupIDs {
			if g.ID == id {
				return true
			}
		}
	}
	return false
}

// ListAccessible returns every dataset the user may read. Superusers see
// all datasets.
func (dr DatasetRepository) ListAccessible(ctx context.Context, tx *gorm.DB, authUser *auth.JWTPayload) ([]model.Dataset, error) {
	dr.logger.Debugf("List accessible datasets for userID: %s \n", authUser.ID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.Dataset{}).Preload("Owner").Order("datasets.name")

	if !authUser.IsSuperuser {
		query = query.
			Joins("LEFT JOIN dataset_shared_users dsu ON dsu.dataset_id = datasets.id AND dsu.user_id = ?", authUser.ID).
			Joins("LEFT JOIN dataset_shared_groups dsg ON dsg.dataset_id = datasets.id").
			Joins("LEFT JOIN user_groups ug ON ug.group_id = dsg.group_id AND ug.user_id = ?", authUser.ID).
			Where("datasets.is_public = TRUE OR datasets.owner_id = ? OR dsu.user_id IS NOT NULL OR ug.user_id IS NOT NULL", authUser.ID).
			Distinct()
	}

	var datasets []model.Dataset
	if err := query.Find(&datasets).Error; err != nil {
		return nil, err
	}

	return datasets, nil
}

func (dr DatasetRepository) Update(ctx context.Context, tx *gorm.DB, dataset *model.Dataset) error {
	dr.logger.Debugf("Update dataset with id: %s \n", dataset.ID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.Dataset{}).Where("id = ?", dataset.ID).
		Select("Name", "Description", "IsPublic", "AllowMultipleEntries", "EnableMappingAreas").
		Updates(dataset).Error
}

// UpdateSharing replaces the shared user and group lists.
func (dr DatasetRepository) UpdateSharing(ctx context.Context, tx *gorm.DB, dataset *model.Dataset, users []model.User, groups []model.Group) error {
	dr.logger.Debugf("Update sharing of dataset with id: %s \n", dataset.ID)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return dr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Model(dataset).Association("SharedWith").Replace(users); err != nil {
			return err
		}
		return tx.Model(dataset).Association("SharedWithGroups").Replace(groups)
	})
}

func (dr DatasetRepository) Delete(ctx context.Context, tx *gorm.DB, datasetId string) error {
	dr.logger.Debugf("Delete dataset with id: %s \n", datasetId)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return dr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := dr.clearData(tx, datasetId); err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", datasetId).Delete(&model.DatasetField{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", datasetId).Delete(&model.MappingArea{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", datasetId).Delete(&model.DatasetUserMappingArea{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", datasetId).Delete(&model.DatasetGroupMappingArea{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", datasetId).Delete(&model.Dataset{}).Error
	})
}

// ClearData removes all geometries of the dataset together with their
// entries, field values and file rows. Field definitions survive.
func (dr DatasetRepository) ClearData(ctx context.Context, tx *gorm.DB, datasetId string) error {
	dr.logger.Debugf("Clear data of dataset with id: %s \n", datasetId)

	db := dr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return dr.withTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		return dr.clearData(tx, datasetId)
	})
}

func (dr DatasetRepository) clearData(tx *gorm.DB, datasetId string) error {
	geometryIDs := tx.Model(&model.Geometry{}).Select("id").Where("dataset_id = ?", datasetId)
	entryIDs := tx.Model(&model.Entry{}).Select("id").Where("geometry_id IN (?)", geometryIDs)

	if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&model.EntryFieldValue{}).Error; err != nil {
		return err
	}
	if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&model.EntryFile{}).Error; err != nil {
		return err
	}
	if err := tx.Where("geometry_id IN (?)", geometryIDs).Delete(&model.Entry{}).Error; err != nil {
		return err
	}
	return tx.Where("dataset_id = ?", datasetId).Delete(&model.Geometry{}).Error
}
