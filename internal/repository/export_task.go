package repository

import (
	"context"
	"errors"
	"time"

	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"gorm.io/gorm"
)

// ErrExportTaskTerminal marks a status transition attempted on a task that
// already completed or failed.
var ErrExportTaskTerminal = errors.New("export task already reached a terminal status")

type ExportTaskRepository struct {
	*baseRepository
}

func (er ExportTaskRepository) Create(ctx context.Context, tx *gorm.DB, task *model.ExportTask) (*model.ExportTask, error) {
	er.logger.Debugf("Create export task with data: %v \n", task)

	task.Status = constant.ExportTaskStatusPending

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.ExportTask{}).Create(task).Error; err != nil {
		return task, err
	}

	return task, nil
}

func (er ExportTaskRepository) GetById(ctx context.Context, tx *gorm.DB, taskId string) (*model.ExportTask, error) {
	er.logger.Debugf("Get export task by id: %s \n", taskId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var task *model.ExportTask
	if err := db.WithContext(ctx).Model(&model.ExportTask{}).
		Preload("Dataset").
		Preload("RequestedBy").
		Where("id = ?", taskId).
		First(&task).Error; err != nil {
		return task, err
	}

	return task, nil
}

func (er ExportTaskRepository) ListByDataset(ctx context.Context, tx *gorm.DB, datasetId string) ([]model.ExportTask, error) {
	er.logger.Debugf("List export tasks of dataset: %s \n", datasetId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var tasks []model.ExportTask
	if err := db.WithContext(ctx).Model(&model.ExportTask{}).
		Preload("RequestedBy").
		Where("dataset_id = ?", datasetId).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (er ExportTaskRepository) MarkProcessing(ctx context.Context, tx *gorm.DB, taskId string) error {
	er.logger.Debugf("Mark export task %s as processing \n", taskId)

	return er.transition(ctx, tx, taskId, map[string]any{
		"status": constant.ExportTaskStatusProcessing,
	})
}

func (er ExportTaskRepository) MarkCompleted(ctx context.Context, tx *gorm.DB, taskId, resultPath string, resultSize int64) error {
	er.logger.Debugf("Mark export task %s as completed \n", taskId)

	now := time.Now()
	return er.transition(ctx, tx, taskId, map[string]any{
		"status":       constant.ExportTaskStatusCompleted,
		"result_path":  resultPath,
		"result_size":  resultSize,
		"completed_at": &now,
	})
}

func (er ExportTaskRepository) MarkFailed(ctx context.Context, tx *gorm.DB, taskId, errorMessage string) error {
	er.logger.Debugf("Mark export task %s as failed \n", taskId)

	now := time.Now()
	return er.transition(ctx, tx, taskId, map[string]any{
		"status":        constant.ExportTaskStatusFailed,
		"error_message": errorMessage,
		"completed_at":  &now,
	})
}

// transition applies the update only while the task is still in a
// non-terminal status.
func (er ExportTaskRepository) transition(ctx context.Context, tx *gorm.DB, taskId string, updates map[string]any) error {
	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Model(&model.ExportTask{}).
		Where("id = ? AND status IN (?)", taskId, []constant.ExportTaskStatus{
			constant.ExportTaskStatusPending,
			constant.ExportTaskStatusProcessing,
		}).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExportTaskTerminal
	}

	return nil
}
