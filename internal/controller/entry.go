package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

type EntryController struct {
	*baseController
}

const (
	ErrEntryIdRequired   = "entry ID is required"
	ErrEntryNotFound     = "entry not found"
	ErrUnknownField      = "unknown or disabled field %q"
	ErrFieldNotEditable  = "field %q is not editable"
	ErrRequiredFieldGone = "field %q is required"
)

// validateValues checks the submitted values against the enabled fields and
// returns the type to snapshot per field name.
func (ec EntryController) validateValues(fields []model.DatasetField, values map[string]string) (map[string]fieldset.FieldType, error) {
	byName := make(map[string]model.DatasetField, len(fields))
	for _, f := range fields {
		byName[f.FieldName] = f
	}

	types := make(map[string]fieldset.FieldType, len(values))
	for name := range values {
		field, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf(ErrUnknownField, name)
		}
		if field.NonEditable {
			return nil, fmt.Errorf(ErrFieldNotEditable, name)
		}
		types[name] = field.FieldType
	}

	for _, f := range fields {
		if f.Required && !f.NonEditable {
			if v, ok := values[f.FieldName]; !ok || v == "" {
				return nil, fmt.Errorf(ErrRequiredFieldGone, f.FieldName)
			}
		}
	}

	return types, nil
}

func (ec EntryController) CreateEntry(ctx *gin.Context) {
	type Request struct {
		Name   string            `json:"name" form:"name" binding:"omitempty,max=255"`
		Year   *int              `json:"year" form:"year" binding:"omitempty"`
		Values map[string]string `json:"values" form:"values" binding:"omitempty"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	geometryId := ctx.Params.ByName("geometryId")
	if datasetId == "" || geometryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and geometry id are required", util.GenerateErrorMessages(errors.New(ErrGeometryIdRequired), "geometryId"), nil)
		return
	}

	user, role, dataset, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner && role != constant.DatasetRoleEditor {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	geometry, err := ec.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), geometryId)
	if err != nil {
		if errors.Is(err, repository.ErrGeometryNotVisible) {
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrGeometryOutsideAreas)), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusNotFound, "Geometry not found", util.GenerateErrorMessages(errors.New(ErrGeometryNotFound)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	fields, err := ec.app.Repository.Field.ListEnabled(ctx, nil, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get dataset fields", util.GenerateErrorMessages(err), nil)
		return
	}

	types, err := ec.validateValues(fields, body.Values)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid values", util.GenerateErrorMessages(err, "values"), nil)
		return
	}

	name := body.Name
	if name == "" {
		name = geometry.IDKurz
	}

	entry, err := ec.app.Repository.Entry.Create(ctx, nil, dataset, &model.Entry{
		GeometryID:  geometry.ID,
		Name:        name,
		Year:        body.Year,
		CreatedByID: user.ID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSingleEntryDataset) {
			util.ResponseFailed(ctx, http.StatusConflict, "Entry already exists", util.GenerateErrorMessages(err), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create entry", util.GenerateErrorMessages(err), nil)
		return
	}

	for fieldName, value := range body.Values {
		if _, err := ec.app.Repository.Entry.UpsertFieldValue(ctx, nil, entry.ID, fieldName, types[fieldName], fieldset.Encode(value, types[fieldName])); err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to save entry values", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"entryId": entry.ID,
	})
}

// SaveEntryValues upserts the submitted field values on an existing entry.
func (ec EntryController) SaveEntryValues(ctx *gin.Context) {
	type Request struct {
		Name   string            `json:"name" form:"name" binding:"omitempty,max=255"`
		Year   *int              `json:"year" form:"year" binding:"omitempty"`
		Values map[string]string `json:"values" form:"values" binding:"required"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	entryId := ctx.Params.ByName("entryId")
	if datasetId == "" || entryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and entry id are required", util.GenerateErrorMessages(errors.New(ErrEntryIdRequired), "entryId"), nil)
		return
	}

	user, role, dataset, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner && role != constant.DatasetRoleEditor {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	entry, err := ec.app.Repository.Entry.GetById(ctx, nil, entryId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Entry not found", util.GenerateErrorMessages(errors.New(ErrEntryNotFound)), nil)
		return
	}

	// The geometry lookup enforces dataset scope and mapping area access.
	if _, err := ec.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), entry.GeometryID); err != nil {
		if errors.Is(err, repository.ErrGeometryNotVisible) {
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrGeometryOutsideAreas)), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusNotFound, "Entry not found", util.GenerateErrorMessages(errors.New(ErrEntryNotFound)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	fields, err := ec.app.Repository.Field.ListEnabled(ctx, nil, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get dataset fields", util.GenerateErrorMessages(err), nil)
		return
	}

	types, err := ec.validateValues(fields, body.Values)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid values", util.GenerateErrorMessages(err, "values"), nil)
		return
	}

	if body.Name != "" {
		entry.Name = body.Name
	}
	if body.Year != nil {
		entry.Year = body.Year
	}
	if err := ec.app.Repository.Entry.Update(ctx, nil, entry); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update entry", util.GenerateErrorMessages(err), nil)
		return
	}

	for fieldName, value := range body.Values {
		if _, err := ec.app.Repository.Entry.UpsertFieldValue(ctx, nil, entry.ID, fieldName, types[fieldName], fieldset.Encode(value, types[fieldName])); err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to save entry values", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"entryId": entry.ID,
	})
}

func (ec EntryController) DeleteEntry(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	entryId := ctx.Params.ByName("entryId")
	if datasetId == "" || entryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and entry id are required", util.GenerateErrorMessages(errors.New(ErrEntryIdRequired), "entryId"), nil)
		return
	}

	user, role, dataset, err := ec.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	entry, err := ec.app.Repository.Entry.GetById(ctx, nil, entryId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Entry not found", util.GenerateErrorMessages(errors.New(ErrEntryNotFound)), nil)
		return
	}

	// Owners delete anything, editors only their own entries.
	if role != constant.DatasetRoleOwner && !(role == constant.DatasetRoleEditor && entry.CreatedByID == user.ID) {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	if _, err := ec.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), entry.GeometryID); err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Entry not found", util.GenerateErrorMessages(errors.New(ErrEntryNotFound)), nil)
		return
	}

	if err := ec.app.Repository.Entry.Delete(ctx, nil, entryId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete entry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"entryId": entryId,
	})
}
