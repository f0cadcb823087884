package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
)

type FileController struct {
	*baseController
}

const (
	ErrFileIdRequired = "file ID is required"
	ErrFileNotFound   = "file not found"
	ErrFileRequired   = "file is required"
)

func (fc FileController) UploadEntryFile(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	entryId := ctx.Params.ByName("entryId")
	if datasetId == "" || entryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and entry id are required", util.GenerateErrorMessages(errors.New(ErrEntryIdRequired), "entryId"), nil)
		return
	}

	user, role, dataset, err := fc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner && role != constant.DatasetRoleEditor {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	entry, err := fc.app.Repository.Entry.GetById(ctx, nil, entryId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Entry not found", util.GenerateErrorMessages(errors.New(ErrEntryNotFound)), nil)
		return
	}

	if _, err := fc.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), entry.GeometryID); err != nil {
		if errors.Is(err, repository.ErrGeometryNotVisible) {
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrGeometryOutsideAreas)), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusNotFound, "Entry not found", util.GenerateErrorMessages(errors.New(ErrEntryNotFound)), nil)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No file uploaded", util.GenerateErrorMessages(errors.New(ErrFileRequired), "file"), nil)
		return
	}

	file, err := fc.app.Repository.EntryFile.Upload(ctx, nil, datasetId, entryId, fileHeader, fc.app.Config.Minio.BUCKET)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload file", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"file": file,
	})
}

// GetEntryFileUrl returns a short lived presigned download URL.
func (fc FileController) GetEntryFileUrl(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	fileId := ctx.Params.ByName("fileId")
	if datasetId == "" || fileId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and file id are required", util.GenerateErrorMessages(errors.New(ErrFileIdRequired), "fileId"), nil)
		return
	}

	user, role, dataset, err := fc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	file, err := fc.app.Repository.EntryFile.GetById(ctx, nil, fileId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound)), nil)
		return
	}

	entry, err := fc.app.Repository.Entry.GetById(ctx, nil, file.EntryID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound)), nil)
		return
	}

	if _, err := fc.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), entry.GeometryID); err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound)), nil)
		return
	}

	url, err := file.ToPresignedUrl(ctx, fc.app.S3)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get file URL", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"url":      url,
		"fileName": file.FileName,
	})
}

func (fc FileController) DeleteEntryFile(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	fileId := ctx.Params.ByName("fileId")
	if datasetId == "" || fileId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and file id are required", util.GenerateErrorMessages(errors.New(ErrFileIdRequired), "fileId"), nil)
		return
	}

	user, role, dataset, err := fc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner && role != constant.DatasetRoleEditor {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	file, err := fc.app.Repository.EntryFile.GetById(ctx, nil, fileId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound)), nil)
		return
	}

	entry, err := fc.app.Repository.Entry.GetById(ctx, nil, file.EntryID)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound)), nil)
		return
	}

	// Owners delete any file, editors only files on their own entries.
	if role != constant.DatasetRoleOwner && entry.CreatedByID != user.ID {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	if _, err := fc.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), entry.GeometryID); err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "File not found", util.GenerateErrorMessages(errors.New(ErrFileNotFound)), nil)
		return
	}

	if err := fc.app.Repository.EntryFile.Delete(ctx, nil, fileId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete file", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"fileId": fileId,
	})
}
