package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
	"gorm.io/datatypes"
)

type MappingAreaController struct {
	*baseController
}

const (
	ErrAreaIdRequired = "mapping area ID is required"
	ErrAreaNotFound   = "mapping area not found"
	ErrInvalidPolygon = "polygon must be a closed ring of at least four points"
	ErrAllocationIDs  = "userId or groupId is required"
)

func (mc MappingAreaController) requireOwner(ctx *gin.Context, datasetId string) bool {
	_, role, _, err := mc.getDatasetRole(ctx, datasetId)
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

// parsePolygon validates the submitted GeoJSON-style ring before it is
// stored, so every persisted area is usable for access checks.
func parsePolygon(raw json.RawMessage) (datatypes.JSON, error) {
	var p fieldset.Polygon
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.New(ErrInvalidPolygon)
	}
	return datatypes.JSON(raw), nil
}

func (mc MappingAreaController) GetMappingAreaList(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	user, role, _, err := mc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	var areas []model.MappingArea
	// Owners manage every area, everyone else only sees their allocation.
	if role == constant.DatasetRoleOwner {
		areas, err = mc.app.Repository.MappingArea.ListByDataset(ctx, nil, datasetId)
	} else {
		areas, err = mc.app.Repository.MappingArea.AllowedAreasForUser(ctx, nil, datasetId, user.ID)
	}
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get mapping areas", util.GenerateErrorMessages(err), nil)
		return
	}

	if len(areas) == 0 {
		areas = []model.MappingArea{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"areas": areas,
	})
}

func (mc MappingAreaController) CreateMappingArea(ctx *gin.Context) {
	type Request struct {
		Name        string          `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description string          `json:"description" form:"description"`
		Polygon     json.RawMessage `json:"polygon" form:"polygon" binding:"required"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	if !mc.requireOwner(ctx, datasetId) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	polygon, err := parsePolygon(body.Polygon)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid polygon", util.GenerateErrorMessages(err, "polygon"), nil)
		return
	}

	area, err := mc.app.Repository.MappingArea.Create(ctx, nil, &model.MappingArea{
		DatasetID:   datasetId,
		Name:        body.Name,
		Description: body.Description,
		Polygon:     polygon,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create mapping area", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"area": area,
	})
}

func (mc MappingAreaController) UpdateMappingArea(ctx *gin.Context) {
	type Request struct {
		Name        string          `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description string          `json:"description" form:"description"`
		Polygon     json.RawMessage `json:"polygon" form:"polygon" binding:"required"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	areaId := ctx.Params.ByName("areaId")
	if datasetId == "" || areaId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and area id are required", util.GenerateErrorMessages(errors.New(ErrAreaIdRequired), "areaId"), nil)
		return
	}

	if !mc.requireOwner(ctx, datasetId) {
		return
	}

	area, err := mc.app.Repository.MappingArea.GetById(ctx, nil, areaId)
	if err != nil || area.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Mapping area not found", util.GenerateErrorMessages(errors.New(ErrAreaNotFound)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	polygon, err := parsePolygon(body.Polygon)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid polygon", util.GenerateErrorMessages(err, "polygon"), nil)
		return
	}

	area.Name = body.Name
	area.Description = body.Description
	area.Polygon = polygon

	if err := mc.app.Repository.MappingArea.Update(ctx, nil, area); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update mapping area", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"area": area,
	})
}

func (mc MappingAreaController) DeleteMappingArea(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	areaId := ctx.Params.ByName("areaId")
	if datasetId == "" || areaId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and area id are required", util.GenerateErrorMessages(errors.New(ErrAreaIdRequired), "areaId"), nil)
		return
	}

	if !mc.requireOwner(ctx, datasetId) {
		return
	}

	area, err := mc.app.Repository.MappingArea.GetById(ctx, nil, areaId)
	if err != nil || area.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Mapping area not found", util.GenerateErrorMessages(errors.New(ErrAreaNotFound)), nil)
		return
	}

	if err := mc.app.Repository.MappingArea.Delete(ctx, nil, areaId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete mapping area", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"areaId": areaId,
	})
}

func (mc MappingAreaController) AllocateMappingArea(ctx *gin.Context) {
	type Request struct {
		UserID  string `json:"userId" form:"userId" binding:"omitempty"`
		GroupID string `json:"groupId" form:"groupId" binding:"omitempty"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	areaId := ctx.Params.ByName("areaId")
	if datasetId == "" || areaId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and area id are required", util.GenerateErrorMessages(errors.New(ErrAreaIdRequired), "areaId"), nil)
		return
	}

	if !mc.requireOwner(ctx, datasetId) {
		return
	}

	area, err := mc.app.Repository.MappingArea.GetById(ctx, nil, areaId)
	if err != nil || area.DatasetID != datasetId {
		util.ResponseFailed(ctx, http.StatusNotFound, "Mapping area not found", util.GenerateErrorMessages(errors.New(ErrAreaNotFound)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	switch {
	case body.UserID != "":
		err = mc.app.Repository.MappingArea.AllocateUser(ctx, nil, &model.DatasetUserMappingArea{
			DatasetID:     datasetId,
			UserID:        body.UserID,
			MappingAreaID: areaId,
		})
	case body.GroupID != "":
		err = mc.app.Repository.MappingArea.AllocateGroup(ctx, nil, &model.DatasetGroupMappingArea{
			DatasetID:     datasetId,
			GroupID:       body.GroupID,
			MappingAreaID: areaId,
		})
	default:
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New(ErrAllocationIDs)), nil)
		return
	}
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to allocate mapping area", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"areaId": areaId,
	})
}

func (mc MappingAreaController) DeallocateMappingArea(ctx *gin.Context) {
	type Request struct {
		UserID  string `json:"userId" form:"userId" binding:"omitempty"`
		GroupID string `json:"groupId" form:"groupId" binding:"omitempty"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	areaId := ctx.Params.ByName("areaId")
	if datasetId == "" || areaId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id and area id are required", util.GenerateErrorMessages(errors.New(ErrAreaIdRequired), "areaId"), nil)
		return
	}

	if !mc.requireOwner(ctx, datasetId) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	var err error
	switch {
	case body.UserID != "":
		err = mc.app.Repository.MappingArea.DeallocateUser(ctx, nil, datasetId, body.UserID, areaId)
	case body.GroupID != "":
		err = mc.app.Repository.MappingArea.DeallocateGroup(ctx, nil, datasetId, body.GroupID, areaId)
	default:
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New(ErrAllocationIDs)), nil)
		return
	}
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to deallocate mapping area", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"areaId": areaId,
	})
}
