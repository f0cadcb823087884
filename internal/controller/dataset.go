package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
)

type DatasetController struct {
	*baseController
}

const (
	ErrDatasetIdRequired = "dataset ID is required"
	ErrDatasetNotFound   = "dataset not found"
	ErrDatasetForbidden  = "you do not have permission to access this dataset"
	ErrDatasetNotOwner   = "only the dataset owner can do this"
	ErrDatasetReadOnly   = "you do not have permission to modify this dataset"
)

func (dc DatasetController) CreateDataset(ctx *gin.Context) {
	type Request struct {
		Name                 string `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description          string `json:"description" form:"description" binding:"omitempty"`
		IsPublic             bool   `json:"isPublic" form:"isPublic"`
		AllowMultipleEntries bool   `json:"allowMultipleEntries" form:"allowMultipleEntries"`
		EnableMappingAreas   bool   `json:"enableMappingAreas" form:"enableMappingAreas"`
	}
	var body Request

	user, err := dc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	dataset, err := dc.app.Repository.Dataset.Create(ctx, nil, &model.Dataset{
		Name:                 body.Name,
		Description:          body.Description,
		IsPublic:             body.IsPublic,
		AllowMultipleEntries: body.AllowMultipleEntries,
		EnableMappingAreas:   body.EnableMappingAreas,
		OwnerID:              user.ID,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to create dataset", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"datasetId": dataset.ID,
	})
}

func (dc DatasetController) GetDatasetList(ctx *gin.Context) {
	type Request struct {
		Page     uint `json:"page" form:"page" binding:"omitempty"`
		PageSize uint `json:"pageSize" form:"pageSize" binding:"omitempty"`
	}
	var params Request

	user, err := dc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if params.Page == 0 {
		params.Page = 1
	}
	if params.PageSize == 0 {
		params.PageSize = constant.DefaultPageSize
	}
	if params.PageSize > constant.MaxPageSize {
		params.PageSize = constant.MaxPageSize
	}

	datasets, err := dc.app.Repository.Dataset.ListAccessible(ctx, nil, user)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get dataset list", util.GenerateErrorMessages(err), nil)
		return
	}

	total := int64(len(datasets))
	start := (params.Page - 1) * params.PageSize
	if start > uint(len(datasets)) {
		start = uint(len(datasets))
	}
	end := start + params.PageSize
	if end > uint(len(datasets)) {
		end = uint(len(datasets))
	}
	datasets = datasets[start:end]

	if len(datasets) == 0 {
		datasets = []model.Dataset{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"total":     total,
		"datasets":  datasets,
		"page":      params.Page,
		"pageSize":  params.PageSize,
		"totalPage": util.CalculateTotalPage(total, params.PageSize),
	})
}

func (dc DatasetController) GetDatasetById(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, dataset, err := dc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	fields, err := dc.app.Repository.Field.ListAll(ctx, nil, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get dataset fields", util.GenerateErrorMessages(err), nil)
		return
	}

	if len(fields) == 0 {
		fields = []model.DatasetField{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"role":    role,
		"dataset": dataset,
		"fields":  fields,
	})
}

func (dc DatasetController) UpdateDataset(ctx *gin.Context) {
	type Request struct {
		Name                 string `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description          string `json:"description" form:"description" binding:"omitempty"`
		IsPublic             bool   `json:"isPublic" form:"isPublic"`
		AllowMultipleEntries bool   `json:"allowMultipleEntries" form:"allowMultipleEntries"`
		EnableMappingAreas   bool   `json:"enableMappingAreas" form:"enableMappingAreas"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, dataset, err := dc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	dataset.Name = body.Name
	dataset.Description = body.Description
	dataset.IsPublic = body.IsPublic
	dataset.AllowMultipleEntries = body.AllowMultipleEntries
	dataset.EnableMappingAreas = body.EnableMappingAreas

	if err := dc.app.Repository.Dataset.Update(ctx, nil, dataset); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update dataset", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"dataset": dataset,
	})
}

func (dc DatasetController) UpdateDatasetSharing(ctx *gin.Context) {
	type Request struct {
		UserIDs  []string `json:"userIds" form:"userIds" binding:"omitempty"`
		GroupIDs []string `json:"groupIds" form:"groupIds" binding:"omitempty"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, dataset, err := dc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	users := make([]model.User, 0, len(body.UserIDs))
	for _, id := range body.UserIDs {
		users = append(users, model.User{BaseModel: model.BaseModel{ID: id}})
	}
	groups := make([]model.Group, 0, len(body.GroupIDs))
	for _, id := range body.GroupIDs {
		groups = append(groups, model.Group{BaseModel: model.BaseModel{ID: id}})
	}

	if err := dc.app.Repository.Dataset.UpdateSharing(ctx, nil, dataset, users, groups); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update dataset sharing", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"datasetId": dataset.ID,
	})
}

func (dc DatasetController) ClearDatasetData(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, _, err := dc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	if err := dc.app.Repository.Dataset.ClearData(ctx, nil, datasetId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to clear dataset data", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"datasetId": datasetId,
	})
}

func (dc DatasetController) DeleteDataset(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, _, err := dc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	if err := dc.app.Repository.Dataset.Delete(ctx, nil, datasetId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete dataset", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"datasetId": datasetId,
	})
}

// GetDatasetMapData lists the geometries the user may see on the map,
// honoring mapping area allocations.
func (dc DatasetController) GetDatasetMapData(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	user, role, dataset, err := dc.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role == constant.DatasetRoleNone {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetForbidden)), nil)
		return
	}

	geometries, err := dc.app.Repository.Geometry.ListForUser(ctx, nil, dataset, asModelUser(user))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get map data", util.GenerateErrorMessages(err), nil)
		return
	}

	if len(geometries) == 0 {
		geometries = []model.Geometry{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"geometries": geometries,
	})
}
