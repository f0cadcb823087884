package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

type FieldController struct {
	*baseController
}

const (
	ErrFieldIdRequired  = "field ID is required"
	ErrFieldNotFound    = "field not found"
	ErrInvalidFieldType = "invalid field type"
)

type fieldRequest struct {
	FieldLabel       string  `json:"fieldLabel" form:"fieldLabel" binding:"required,strNotEmpty,max=255"`
	FieldType        string  `json:"fieldType" form:"fieldType" binding:"required"`
	Required         bool    `json:"required" form:"required"`
	Enabled          *bool   `json:"enabled" form:"enabled"`
	NonEditable      bool    `json:"nonEditable" form:"nonEditable"`
	HelpText         string  `json:"helpText" form:"helpText"`
	Order            int     `json:"order" form:"order"`
	Choices          string  `json:"choices" form:"choices"`
	TypologyID       *string `json:"typologyId" form:"typologyId"`
	TypologyCategory string  `json:"typologyCategory" form:"typologyCategory"`
}

func (fc FieldController) requireOwner(ctx *gin.Context, datasetId string) bool {
	_, role, _, err := fc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return false
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return false
	}

	return true
}

func (fc FieldController) GetFieldList(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, _, err := fc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	var fields []model.DatasetField
	// Owners manage the full schema, everyone else only sees live fields.
	if role == constant.DatasetRoleOwner {
		fields, err = fc.app.Repository.Field.ListAll(ctx, nil, datasetId)
	} else {
		fields, err = fc.app.Repository.Field.ListEnabled(ctx, nil, datasetId)
	}
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get field list", util.GenerateErrorMessages(err), nil)
		return
	}

	if len(fields) == 0 {
		fields = []model.DatasetField{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"fields": fields,
	})
}

func (fc FieldController) CreateField(ctx *gin.Context) {
	type Request struct {
		fieldRequest
		FieldName string `json:"fieldName" form:"fieldName" binding:"required,strNotEmpty,max=255"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	if !fc.requireOwner(ctx, datasetId) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	fieldType := fieldset.FieldType(body.FieldType)
	if !fieldType.Valid() {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid field type", util.GenerateErrorMessages(errors.New(ErrInvalidFieldType), "fieldType"), nil)
		return
	}

	enabled := true
	if body.Enabled != nil {
		enabled = *body.Enabled
	}

	field, err := fc.app.Repository.Field.Create(ctx, nil, &model.DatasetField{
		DatasetID:        datasetId,
		FieldName:        fieldset.CleanFieldName(body.FieldName),
		FieldLabel:       body.FieldLabel,
		FieldType:        fieldType,
		Required:         body.Required,
		Enabled:          enabled,
		NonEditable:      body.NonEditable,
		HelpText:         body.HelpText,
		Order:            body.Order,
		Choices:          body.Choices,
		TypologyID:       body.TypologyID,
		TypologyCategory: body.TypologyCategory,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to create field", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"field": field,
	})
}

func (fc FieldController) UpdateField(ctx *gin.Context) {
	var body fieldRequest

	datasetId := ctx.Params.ByName("datasetId")
	fieldId := ctx.Params.ByName("fieldId")
	if datasetId == "" || fieldId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and field id are required", util.GenerateErrorMessages(errors.New(ErrFieldIdRequired), "fieldId"), nil)
		return
	}

	if !fc.requireOwner(ctx, datasetId) {
		return
	}

	field, err := fc.app.Repository.Field.GetById(ctx, nil, fieldId)
	if err != nil || field.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Field not found", util.GenerateErrorMessages(errors.New(ErrFieldNotFound)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	fieldType := fieldset.FieldType(body.FieldType)
	if !fieldType.Valid() {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid field type", util.GenerateErrorMessages(errors.New(ErrInvalidFieldType), "fieldType"), nil)
		return
	}

	field.FieldLabel = body.FieldLabel
	field.FieldType = fieldType
	field.Required = body.Required
	if body.Enabled != nil {
		field.Enabled = *body.Enabled
	}
	field.NonEditable = body.NonEditable
	field.HelpText = body.HelpText
	field.Order = body.Order
	field.Choices = body.Choices
	field.TypologyID = body.TypologyID
	field.TypologyCategory = body.TypologyCategory

	if err := fc.app.Repository.Field.Update(ctx, nil, field); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update field", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"field": field,
	})
}

func (fc FieldController) DeleteField(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	fieldId := ctx.Params.ByName("fieldId")
	if datasetId == "" || fieldId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and field id are required", util.GenerateErrorMessages(errors.New(ErrFieldIdRequired), "fieldId"), nil)
		return
	}

	if !fc.requireOwner(ctx, datasetId) {
		return
	}

	field, err := fc.app.Repository.Field.GetById(ctx, nil, fieldId)
	if err != nil || field.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Field not found", util.GenerateErrorMessages(errors.New(ErrFieldNotFound)), nil)
		return
	}

	if err := fc.app.Repository.Field.Delete(ctx, nil, fieldId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete field", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"fieldId": fieldId,
	})
}

// EnableAllFields re-enables every disabled field of the dataset. Explicit
// repair action, nothing re-enables fields automatically.
func (fc FieldController) EnableAllFields(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	if !fc.requireOwner(ctx, datasetId) {
		return
	}

	enabled, err := fc.app.Repository.Field.EnableAll(ctx, nil, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to enable fields", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"enabled": enabled,
	})
}

// ReorderFields saves a new display order for the given fields.
func (fc FieldController) ReorderFields(ctx *gin.Context) {
	type Request struct {
		FieldIDs []string `json:"fieldIds" form:"fieldIds" binding:"required,min=1"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	if !fc.requireOwner(ctx, datasetId) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	for i, fieldId := range body.FieldIDs {
		field, err := fc.app.Repository.Field.GetById(ctx, nil, fieldId)
		if err != nil || field.DatasetID != datasetId {
			util.ResponseFailed(ctx, http.StatusNotFound, "Field not found", util.GenerateErrorMessages(errors.New(ErrFieldNotFound), "fieldIds"), nil)
			return
		}

		field.Order = i
		if err := fc.app.Repository.Field.Update(ctx, nil, field); err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to reorder fields", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"datasetId": datasetId,
	})
}
