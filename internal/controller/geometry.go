package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/access"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/repository"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

type GeometryController struct {
	*baseController
}

const (
	ErrGeometryIdRequired     = "geometry ID is required"
	ErrGeometryNotFound       = "geometry not found"
	ErrGeometryOutsideAreas   = "location is outside your allocated mapping areas"
	ErrGeometryDatasetChanged = "geometry does not belong to this dataset"
)

func (gc GeometryController) CreateGeometry(ctx *gin.Context) {
	type Request struct {
		IDKurz    string   `json:"idKurz" form:"idKurz" binding:"required,strNotEmpty,max=255"`
		Address   string   `json:"address" form:"address" binding:"omitempty,max=500"`
		Longitude *float64 `json:"longitude" form:"longitude" binding:"required"`
		Latitude  *float64 `json:"latitude" form:"latitude" binding:"required"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	user, role, dataset, err := gc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner && role != constant.DatasetRoleEditor {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	geometry := &model.Geometry{
		DatasetID:   datasetId,
		IDKurz:      body.IDKurz,
		Address:     body.Address,
		Longitude:   *body.Longitude,
		Latitude:    *body.Latitude,
		CreatedByID: user.ID,
	}

	// Editors with mapping areas allocated may only add points inside them.
	if dataset.EnableMappingAreas && role != constant.DatasetRoleOwner {
		areas, err := gc.app.Repository.MappingArea.AllowedAreasForUser(ctx, nil, datasetId, user.ID)
		if err != nil {
			util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to check mapping areas", util.GenerateErrorMessages(err), nil)
			return
		}

		rings := access.AllowedRings(areas, gc.app.Logger)
		if !access.UserHasGeometryAccess(*dataset, asModelUser(user), *geometry, rings) {
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrGeometryOutsideAreas)), nil)
			return
		}
	}

	geometry, err = gc.app.Repository.Geometry.Create(ctx, nil, geometry)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to create geometry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"geometry": geometry,
	})
}

// GetGeometryById returns the geometry with its entries, typed field values
// and the selectable options of every enabled field.
func (gc GeometryController) GetGeometryById(ctx *gin.Context) {
	type EntryValue struct {
		FieldName  string             `json:"fieldName"`
		FieldType  fieldset.FieldType `json:"fieldType"`
		Value      string             `json:"value"`
		TypedValue any                `json:"typedValue"`
	}

	type FieldInfo struct {
		model.DatasetField
		Options []fieldset.ChoiceOption `json:"options"`
	}

	datasetId := ctx.Params.ByName("datasetId")
	geometryId := ctx.Params.ByName("geometryId")
	if datasetId == "" || geometryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and geometry id are required", util.GenerateErrorMessages(errors.New(ErrGeometryIdRequired), "geometryId"), nil)
		return
	}

	user, role, dataset, err := gc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	geometry, err := gc.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), geometryId)
	if err != nil {
		if errors.Is(err, repository.ErrGeometryNotVisible) {
			util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrGeometryOutsideAreas)), nil)
			return
		}
		util.ResponseFailed(ctx, http.StatusNotFound, "Geometry not found", util.GenerateErrorMessages(errors.New(ErrGeometryNotFound)), nil)
		return
	}

	if geometry.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Geometry not found", util.GenerateErrorMessages(errors.New(ErrGeometryDatasetChanged)), nil)
		return
	}

	fields, err := gc.app.Repository.Field.ListEnabled(ctx, nil, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get dataset fields", util.GenerateErrorMessages(err), nil)
		return
	}

	fieldInfos := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		options := f.ChoiceList()
		if options == nil {
			options = []fieldset.ChoiceOption{}
		}
		fieldInfos = append(fieldInfos, FieldInfo{DatasetField: f, Options: options})
	}

	entries := make([]gin.H, 0, len(geometry.Entries))
	for _, entry := range geometry.Entries {
		values := make([]EntryValue, 0, len(entry.Values))
		for _, v := range entry.Values {
			values = append(values, EntryValue{
				FieldName:  v.FieldName,
				FieldType:  v.FieldType,
				Value:      v.Value,
				TypedValue: v.TypedValue(),
			})
		}

		entries = append(entries, gin.H{
			"id":        entry.ID,
			"name":      entry.Name,
			"year":      entry.Year,
			"createdBy": entry.CreatedBy,
			"createdAt": entry.CreatedAt,
			"values":    values,
			"files":     entry.Files,
		})
	}

	util.ResponseSuccess(ctx, gin.H{
		"geometry": gin.H{
			"id":        geometry.ID,
			"idKurz":    geometry.IDKurz,
			"address":   geometry.Address,
			"longitude": geometry.Longitude,
			"latitude":  geometry.Latitude,
			"createdBy": geometry.CreatedBy,
		},
		"entries": entries,
		"fields":  fieldInfos,
	})
}

func (gc GeometryController) UpdateGeometry(ctx *gin.Context) {
	type Request struct {
		Address   string   `json:"address" form:"address" binding:"omitempty,max=500"`
		Longitude *float64 `json:"longitude" form:"longitude" binding:"required"`
		Latitude  *float64 `json:"latitude" form:"latitude" binding:"required"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	geometryId := ctx.Params.ByName("geometryId")
	if datasetId == "" || geometryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and geometry id are required", util.GenerateErrorMessages(errors.New(ErrGeometryIdRequired), "geometryId"), nil)
		return
	}

	user, role, dataset, err := gc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner && role != constant.DatasetRoleEditor {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetReadOnly)), nil)
		return
	}

	geometry, err := gc.app.Repository.Geometry.GetForUser(ctx, nil, dataset, asModelUser(user), geometryId)
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

	geometry.Address = body.Address
	geometry.Longitude = *body.Longitude
	geometry.Latitude = *body.Latitude

	if err := gc.app.Repository.Geometry.Update(ctx, nil, geometry); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update geometry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"geometry": geometry,
	})
}

func (gc GeometryController) DeleteGeometry(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	geometryId := ctx.Params.ByName("geometryId")
	if datasetId == "" || geometryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and geometry id are required", util.GenerateErrorMessages(errors.New(ErrGeometryIdRequired), "geometryId"), nil)
		return
	}

	_, role, _, err := gc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	geometry, err := gc.app.Repository.Geometry.GetById(ctx, nil, geometryId)
	if err != nil || geometry.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Geometry not found", util.GenerateErrorMessages(errors.New(ErrGeometryNotFound)), nil)
		return
	}

	if err := gc.app.Repository.Geometry.Delete(ctx, nil, geometryId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete geometry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"geometryId": geometryId,
	})
}
