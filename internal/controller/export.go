package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/exporter"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"gorm.io/datatypes"
)

type ExportController struct {
	*baseController
}

const (
	ErrExportTaskIdRequired = "export task ID is required"
	ErrExportTaskNotFound   = "export task not found"
	ErrExportQueueDown      = "export queue is not available"
	ErrInvalidOrganizeBy    = "invalid organizeBy value"
	ErrInvalidFileType      = "invalid file type filter"
	ErrInvalidDateRange     = "dateFrom must not be after dateTo"
	ErrExportNotReady       = "export is not completed yet"
)

// ExportCSV streams the flattened dataset as a CSV download. Mapping area
// restrictions apply, the user only exports what they may see.
func (ec ExportController) ExportCSV(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	user, role, dataset, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	geometries, err := ec.app.Repository.Geometry.ListForUser(ctx, nil, dataset, asModelUser(user))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to load dataset data", util.GenerateErrorMessages(err), nil)
		return
	}

	content, err := exporter.BuildCSV(geometries)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to build CSV", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dataset.Name+".csv"))
	ctx.Data(http.StatusOK, "text/csv", []byte(content))
}

// CreateExportTask queues a background ZIP export of the dataset files.
func (ec ExportController) CreateExportTask(ctx *gin.Context) {
	type Request struct {
		FileTypes       []string   `json:"fileTypes" form:"fileTypes" binding:"omitempty"`
		DateFrom        *time.Time `json:"dateFrom" form:"dateFrom" binding:"omitempty"`
		DateTo          *time.Time `json:"dateTo" form:"dateTo" binding:"omitempty"`
		OrganizeBy      string     `json:"organizeBy" form:"organizeBy" binding:"omitempty"`
		IncludeMetadata *bool      `json:"includeMetadata" form:"includeMetadata" binding:"omitempty"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	user, role, _, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	if ec.app.Queue == nil {
		util.ResponseFailed(ctx, http.StatusServiceUnavailable, "Export unavailable", util.GenerateErrorMessages(errors.New(ErrExportQueueDown)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	organizeBy := constant.OrganizeBy(body.OrganizeBy)
	if body.OrganizeBy == "" {
		organizeBy = constant.OrganizeByGeometry
	}
	if !organizeBy.Valid() {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New(ErrInvalidOrganizeBy), "organizeBy"), nil)
		return
	}

	for _, ft := range body.FileTypes {
		switch constant.ExportFileType(ft) {
		case constant.ExportFileTypeAll, constant.ExportFileTypeImage, constant.ExportFileTypeDocument:
		default:
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New(ErrInvalidFileType), "fileTypes"), nil)
			return
		}
	}

	if body.DateFrom != nil && body.DateTo != nil && body.DateFrom.After(*body.DateTo) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New(ErrInvalidDateRange), "dateFrom"), nil)
		return
	}

	fileTypes := datatypes.JSON("[]")
	if len(body.FileTypes) > 0 {
		raw, err := json.Marshal(body.FileTypes)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err, "fileTypes"), nil)
			return
		}
		fileTypes = datatypes.JSON(raw)
	}

	includeMetadata := true
	if body.IncludeMetadata != nil {
		includeMetadata = *body.IncludeMetadata
	}

	task, err := ec.app.Repository.ExportTask.Create(ctx, nil, &model.ExportTask{
		DatasetID:       datasetId,
		RequestedByID:   user.ID,
		FileTypes:       fileTypes,
		DateFrom:        body.DateFrom,
		DateTo:          body.DateTo,
		OrganizeBy:      organizeBy,
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create export task", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ec.app.Queue.PublishExportJob(task.ID); err != nil {
		ec.app.Logger.Errorf("Failed to publish export job for task %s: %v", task.ID, err)
		if markErr := ec.app.Repository.ExportTask.MarkFailed(ctx, nil, task.ID, ErrExportQueueDown); markErr != nil {
			ec.app.Logger.Errorf("Failed to mark export task %s failed: %v", task.ID, markErr)
		}
		util.ResponseFailed(ctx, http.StatusServiceUnavailable, "Export unavailable", util.GenerateErrorMessages(errors.New(ErrExportQueueDown)), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"taskId": task.ID,
		"status": task.Status,
	})
}

func (ec ExportController) GetExportTask(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	taskId := ctx.Params.ByName("taskId")
	if datasetId == "" || taskId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and task id are required", util.GenerateErrorMessages(errors.New(ErrExportTaskIdRequired), "taskId"), nil)
		return
	}

	_, role, _, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	task, err := ec.app.Repository.ExportTask.GetById(ctx, nil, taskId)
	if err != nil || task.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Export task not found", util.GenerateErrorMessages(errors.New(ErrExportTaskNotFound)), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"task": task,
	})
}

func (ec ExportController) GetExportTaskList(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, _, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	tasks, err := ec.app.Repository.ExportTask.ListByDataset(ctx, nil, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get export tasks", util.GenerateErrorMessages(err), nil)
		return
	}

	if len(tasks) == 0 {
		tasks = []model.ExportTask{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"tasks": tasks,
	})
}

// DownloadExportResult serves the finished ZIP archive from the export
// work directory.
func (ec ExportController) DownloadExportResult(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	taskId := ctx.Params.ByName("taskId")
	if datasetId == "" || taskId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and task id are required", util.GenerateErrorMessages(errors.New(ErrExportTaskIdRequired), "taskId"), nil)
		return
	}

	_, role, _, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	task, err := ec.app.Repository.ExportTask.GetById(ctx, nil, taskId)
	if err != nil || task.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Export task not found", util.GenerateErrorMessages(errors.New(ErrExportTaskNotFound)), nil)
		return
	}

	if task.Status != constant.ExportTaskStatusCompleted || task.ResultPath == "" {
		util.ResponseFailed(ctx, http.StatusConflict, "Export not ready", util.GenerateErrorMessages(errors.New(ErrExportNotReady)), nil)
		return
	}

	// ResultPath is a bare archive name, never a client controlled path.
	archive := filepath.Join(ec.app.Config.Export.WorkDir, filepath.Base(task.ResultPath))
	ctx.FileAttachment(archive, filepath.Base(task.ResultPath))
}
