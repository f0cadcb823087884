package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/constant"
	"github.com/silvioheinze/isr-field-sub000/internal/importer"
	"github.com/silvioheinze/isr-field-sub000/internal/util"
	"github.com/silvioheinze/isr-field-sub000/pkg/fieldset"
)

type ImportController struct {
	*baseController
}

const (
	ErrImportCSVRequired = "CSV file is required"
	errorSummaryLimit    = 10
)

func readUploadedCSV(ctx *gin.Context) (string, error) {
	fileHeader, err := ctx.FormFile("csvFile")
	if err != nil {
		return "", errors.New(ErrImportCSVRequired)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	return string(content), nil
}

// PreviewImport detects the delimiter and reports the columns of the
// uploaded CSV so the client can pick the ID, coordinate and address
// columns before committing.
func (ic ImportController) PreviewImport(ctx *gin.Context) {
	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	_, role, _, err := ic.getDatasetRole(ctx, datasetId)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusNotFound, "Dataset not found", util.GenerateErrorMessages(errors.New(ErrDatasetNotFound)), nil)
		return
	}

	if role != constant.DatasetRoleOwner {
		util.ResponseFailed(ctx, http.StatusForbidden, "Forbidden", util.GenerateErrorMessages(errors.New(ErrDatasetNotOwner)), nil)
		return
	}

	content, err := readUploadedCSV(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No CSV file uploaded", util.GenerateErrorMessages(err, "csvFile"), nil)
		return
	}

	delimiter := fieldset.DetectDelimiter(content, 0)
	table, err := fieldset.ParseCSV(content, delimiter)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to parse CSV", util.GenerateErrorMessages(err, "csvFile"), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"delimiter": string(delimiter),
		"columns":   table.Headers,
		"rowCount":  len(table.Rows),
	})
}

// CommitImport runs the full CSV import: conflict checks, schema
// materialization and row ingestion.
func (ic ImportController) CommitImport(ctx *gin.Context) {
	type Request struct {
		Delimiter     string `json:"delimiter" form:"delimiter" binding:"omitempty,max=1"`
		IDColumn      string `json:"idColumn" form:"idColumn" binding:"required,strNotEmpty"`
		XColumn       string `json:"xColumn" form:"xColumn" binding:"required,strNotEmpty"`
		YColumn       string `json:"yColumn" form:"yColumn" binding:"required,strNotEmpty"`
		AddressColumn string `json:"addressColumn" form:"addressColumn" binding:"omitempty"`
		EPSG          string `json:"epsg" form:"epsg" binding:"omitempty"`
		ClearExisting bool   `json:"clearExisting" form:"clearExisting"`
	}
	var body Request

	datasetId := ctx.Params.ByName("datasetId")
	if datasetId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Dataset id is required", util.GenerateErrorMessages(errors.New(ErrDatasetIdRequired), "datasetId"), nil)
		return
	}

	user, role, _, err := ic.getDatasetRole(ctx, datasetId)
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

	content, err := readUploadedCSV(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No CSV file uploaded", util.GenerateErrorMessages(err, "csvFile"), nil)
		return
	}

	var delimiter rune
	if body.Delimiter != "" {
		delimiter = rune(body.Delimiter[0])
	}

	im := importer.NewImporter(ic.app.Repository, ic.app.Logger)
	result, err := im.Import(ctx, importer.Params{
		DatasetID:     datasetId,
		Content:       content,
		Delimiter:     delimiter,
		IDColumn:      body.IDColumn,
		XColumn:       body.XColumn,
		YColumn:       body.YColumn,
		AddressColumn: body.AddressColumn,
		EPSG:          body.EPSG,
		ClearExisting: body.ClearExisting,
		CreatedByID:   user.ID,
	})
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Import failed", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"imported":   result.Imported,
		"errorCount": len(result.Errors),
		"errors":     result.ErrorSummary(errorSummaryLimit),
		"delimiter":  result.Delimiter,
	})
}
