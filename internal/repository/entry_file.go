package repository

import (
	"context"
	"mime/multipart"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"gorm.io/gorm"
)

type EntryFileRepository struct {
	*baseRepository
}

// Upload stores the file in object storage and records an attachment row
// for the entry. The object row is removed again if the insert fails.
func (fr EntryFileRepository) Upload(ctx context.Context, tx *gorm.DB, datasetId string, entryId string, fileHeader *multipart.FileHeader, bucket string) (*model.EntryFile, error) {
	fr.logger.Debugf("Upload file %q for entry: %s \n", fileHeader.Filename, entryId)

	info, err := util.UploadFileToS3ByFileHeader(fileHeader, &util.FileUploadOptions{
		DirectoryPath: util.GetEntryFileDirectoryPath(datasetId, entryId),
		UniquePrefix:  true,
		Bucket:        bucket,
		S3:            fr.s3,
	})
	if err != nil {
		return nil, err
	}

	file := &model.EntryFile{
		EntryID:        entryId,
		FileName:       fileHeader.Filename,
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		Size:           info.Size,
	}

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.EntryFile{}).Create(file).Error; err != nil {
		if removeErr := file.Delete(ctx, fr.s3); removeErr != nil {
			fr.logger.Errorf("Failed to remove orphaned object %s: %v", file.UniqueFileName, removeErr)
		}
		return nil, err
	}

	return file, nil
}

func (fr EntryFileRepository) GetById(ctx context.Context, tx *gorm.DB, fileId string) (*model.EntryFile, error) {
	fr.logger.Debugf("Get entry file by id: %s \n", fileId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var file *model.EntryFile
	if err := db.WithContext(ctx).Model(&model.EntryFile{}).Where("id = ?", fileId).First(&file).Error; err != nil {
		return file, err
	}

	return file, nil
}

func (fr EntryFileRepository) ListByEntry(ctx context.Context, tx *gorm.DB, entryId string) ([]model.EntryFile, error) {
	fr.logger.Debugf("List files of entry: %s \n", entryId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var files []model.EntryFile
	if err := db.WithContext(ctx).Model(&model.EntryFile{}).
		Where("entry_id = ?", entryId).
		Order("created_at").
		Find(&files).Error; err != nil {
		return nil, err
	}

	return files, nil
}

// ExportFile is one attachment joined with its entry and geometry context,
// as needed by ZIP export file naming.
type ExportFile struct {
	model.EntryFile
	EntryName     string `json:"entryName"`
	GeometryID    string `json:"geometryId"`
	IDKurz        string `json:"idKurz"`
	UploaderEmail string `json:"uploaderEmail"`
}

// ListByDataset returns every attachment of the dataset together with the
// entry and geometry it belongs to.
func (fr EntryFileRepository) ListByDataset(ctx context.Context, tx *gorm.DB, datasetId string) ([]ExportFile, error) {
	fr.logger.Debugf("List files of dataset: %s \n", datasetId)

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var files []ExportFile
	if err := db.WithContext(ctx).Model(&model.EntryFile{}).
		Select("entry_files.*, entries.name AS entry_name, geometries.id AS geometry_id, geometries.id_kurz, users.email AS uploader_email").
		Joins("JOIN entries ON entries.id = entry_files.entry_id").
		Joins("JOIN geometries ON geometries.id = entries.geometry_id").
		Joins("JOIN users ON users.id = entries.created_by_id").
		Where("geometries.dataset_id = ?", datasetId).
		Order("geometries.id_kurz, entries.created_at, entry_files.created_at").
		Scan(&files).Error; err != nil {
		return nil, err
	}

	return files, nil
}

// Delete removes the attachment row and its object.
func (fr EntryFileRepository) Delete(ctx context.Context, tx *gorm.DB, fileId string) error {
	fr.logger.Debugf("Delete entry file with id: %s \n", fileId)

	file, err := fr.GetById(ctx, tx, fileId)
	if err != nil {
		return err
	}

	db := fr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Where("id = ?", fileId).Delete(&model.EntryFile{}).Error; err != nil {
		return err
	}

	if err := file.Delete(ctx, fr.s3); err != nil {
		fr.logger.Errorf("Failed to remove object %s: %v", file.UniqueFileName, err)
	}

	return nil
}
