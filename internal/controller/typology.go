package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/model"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
)

type TypologyController struct {
	*baseController
}

const (
	ErrTypologyIdRequired      = "typology ID is required"
	ErrTypologyNotFound        = "typology not found"
	ErrTypologySuperuserOnly   = "only superusers can manage typologies"
	ErrTypologyEntryIdRequired = "typology entry ID is required"
	ErrTypologyCSVRequired     = "CSV file is required"
)

func (tc TypologyController) requireSuperuser(ctx *gin.Context) bool {
	user, err := tc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return false
	}

	if !user.IsSuperuser {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrTypologySuperuserOnly)), nil)
		return false
	}

	return true
}

func (tc TypologyController) GetTypologyList(ctx *gin.Context) {
	typologies, err := tc.app.Repository.Typology.List(ctx, nil)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to get typology list", util.GenerateErrorMessages(err), nil)
		return
	}

	if len(typologies) == 0 {
		typologies = []model.Typology{}
	}

	util.ResponseSuccess(ctx, gin.H{
		"typologies": typologies,
	})
}

func (tc TypologyController) GetTypologyById(ctx *gin.Context) {
	typologyId := ctx.Params.ByName("typologyId")
	if typologyId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology id is required", util.GenerateErrorMessages(errors.New(ErrTypologyIdRequired), "typologyId"), nil)
		return
	}

	typology, err := tc.app.Repository.Typology.GetById(ctx, nil, typologyId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Typology not found", util.GenerateErrorMessages(errors.New(ErrTypologyNotFound)), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"typology": typology,
	})
}

func (tc TypologyController) CreateTypology(ctx *gin.Context) {
	type Request struct {
		Name        string `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description string `json:"description" form:"description"`
	}
	var body Request

	if !tc.requireSuperuser(ctx) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	typology, err := tc.app.Repository.Typology.Create(ctx, nil, &model.Typology{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to create typology", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"typology": typology,
	})
}

func (tc TypologyController) UpdateTypology(ctx *gin.Context) {
	type Request struct {
		Name        string `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description string `json:"description" form:"description"`
	}
	var body Request

	typologyId := ctx.Params.ByName("typologyId")
	if typologyId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology id is required", util.GenerateErrorMessages(errors.New(ErrTypologyIdRequired), "typologyId"), nil)
		return
	}

	if !tc.requireSuperuser(ctx) {
		return
	}

	typology, err := tc.app.Repository.Typology.GetById(ctx, nil, typologyId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Typology not found", util.GenerateErrorMessages(errors.New(ErrTypologyNotFound)), nil)
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	typology.Name = body.Name
	typology.Description = body.Description

	if err := tc.app.Repository.Typology.Update(ctx, nil, typology); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update typology", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"typology": typology,
	})
}

func (tc TypologyController) DeleteTypology(ctx *gin.Context) {
	typologyId := ctx.Params.ByName("typologyId")
	if typologyId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology id is required", util.GenerateErrorMessages(errors.New(ErrTypologyIdRequired), "typologyId"), nil)
		return
	}

	if !tc.requireSuperuser(ctx) {
		return
	}

	if err := tc.app.Repository.Typology.Delete(ctx, nil, typologyId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete typology", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"typologyId": typologyId,
	})
}

func (tc TypologyController) CreateTypologyEntry(ctx *gin.Context) {
	type Request struct {
		Code        *int   `json:"code" form:"code" binding:"required"`
		Category    string `json:"category" form:"category" binding:"required,strNotEmpty,max=255"`
		Name        string `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description string `json:"description" form:"description"`
	}
	var body Request

	typologyId := ctx.Params.ByName("typologyId")
	if typologyId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology id is required", util.GenerateErrorMessages(errors.New(ErrTypologyIdRequired), "typologyId"), nil)
		return
	}

	if !tc.requireSuperuser(ctx) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	entry, err := tc.app.Repository.Typology.CreateEntry(ctx, nil, &model.TypologyEntry{
		TypologyID:  typologyId,
		Code:        *body.Code,
		Category:    body.Category,
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to create typology entry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"entry": entry,
	})
}

func (tc TypologyController) UpdateTypologyEntry(ctx *gin.Context) {
	type Request struct {
		Code        *int   `json:"code" form:"code" binding:"required"`
		Category    string `json:"category" form:"category" binding:"required,strNotEmpty,max=255"`
		Name        string `json:"name" form:"name" binding:"required,strNotEmpty,max=255"`
		Description string `json:"description" form:"description"`
	}
	var body Request

	entryId := ctx.Params.ByName("entryId")
	if entryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology entry id is required", util.GenerateErrorMessages(errors.New(ErrTypologyEntryIdRequired), "entryId"), nil)
		return
	}

	if !tc.requireSuperuser(ctx) {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	entry := &model.TypologyEntry{
		BaseModel:   model.BaseModel{ID: entryId},
		Code:        *body.Code,
		Category:    body.Category,
		Name:        body.Name,
		Description: body.Description,
	}

	if err := tc.app.Repository.Typology.UpdateEntry(ctx, nil, entry); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to update typology entry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"entry": entry,
	})
}

func (tc TypologyController) DeleteTypologyEntry(ctx *gin.Context) {
	entryId := ctx.Params.ByName("entryId")
	if entryId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology entry id is required", util.GenerateErrorMessages(errors.New(ErrTypologyEntryIdRequired), "entryId"), nil)
		return
	}

	if !tc.requireSuperuser(ctx) {
		return
	}

	if err := tc.app.Repository.Typology.DeleteEntry(ctx, nil, entryId); err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to delete typology entry", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"entryId": entryId,
	})
}

// ImportTypologyEntries ingests a CSV of code list rows. Existing codes are
// updated, unknown codes created, invalid rows reported back per row.
func (tc TypologyController) ImportTypologyEntries(ctx *gin.Context) {
	typologyId := ctx.Params.ByName("typologyId")
	if typologyId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology id is required", util.GenerateErrorMessages(errors.New(ErrTypologyIdRequired), "typologyId"), nil)
		return
	}

	if !tc.requireSuperuser(ctx) {
		return
	}

	fileHeader, err := ctx.FormFile("csvFile")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No CSV file uploaded", util.GenerateErrorMessages(errors.New(ErrTypologyCSVRequired), "csvFile"), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to read CSV file", util.GenerateErrorMessages(err), nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to read CSV file", util.GenerateErrorMessages(err), nil)
		return
	}

	result, err := tc.app.Repository.Typology.ImportEntriesCSV(ctx, nil, typologyId, string(content))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to import typology entries", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"created": result.Created,
		"updated": result.Updated,
		"errors":  result.Errors,
	})
}

func (tc TypologyController) ExportTypologyEntries(ctx *gin.Context) {
	typologyId := ctx.Params.ByName("typologyId")
	if typologyId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Typology id is required", util.GenerateErrorMessages(errors.New(ErrTypologyIdRequired), "typologyId"), nil)
		return
	}

	typology, err := tc.app.Repository.Typology.GetById(ctx, nil, typologyId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Typology not found", util.GenerateErrorMessages(errors.New(ErrTypologyNotFound)), nil)
		return
	}

	content, err := tc.app.Repository.Typology.ExportEntriesCSV(ctx, nil, typologyId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to export typology entries", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", typology.Name+".csv"))
	ctx.Data(http.StatusOK, "text/csv", []byte(content))
}
