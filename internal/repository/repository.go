package repository

import (
	"github.com/minio/minio-go/v7"
	"github.com/silvioheinze/isr-field-sub000/internal/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type baseRepository struct {
	db         *gorm.DB
	logger     *zap.SugaredLogger
	jwtService auth.JWTInterface
	s3         *minio.Client
}

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB          *gorm.DB
	User        *UserRepository
	Dataset     *DatasetRepository
	Field       *FieldRepository
	Typology    *TypologyRepository
	Geometry    *GeometryRepository
	Entry       *EntryRepository
	EntryFile   *EntryFileRepository
	MappingArea *MappingAreaRepository
	ExportTask  *ExportTaskRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger, jwtService auth.JWTInterface, s3 *minio.Client) *baseRepository {
	return &baseRepository{db: db, logger: logger, jwtService: jwtService, s3: s3}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger, jwtService auth.JWTInterface, s3 *minio.Client) *Repository {
	br := newBaseRepository(db, logger, jwtService, s3)

	return &Repository{
		DB:          db,
		User:        &UserRepository{baseRepository: br},
		Dataset:     &DatasetRepository{baseRepository: br},
		Field:       &FieldRepository{baseRepository: br},
		Typology:    &TypologyRepository{baseRepository: br},
		Geometry:    &GeometryRepository{baseRepository: br},
		Entry:       &EntryRepository{baseRepository: br},
		EntryFile:   &EntryFileRepository{baseRepository: br},
		MappingArea: &MappingAreaRepository{baseRepository: br},
		ExportTask:  &ExportTaskRepository{baseRepository: br},
	}
}

func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Errorf("withTx Transaction error: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}
