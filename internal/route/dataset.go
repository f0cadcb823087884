package route

import (
	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/controller"
	"github.com/silvioheinze/isr-field-sub000/internal/middleware"
)

func V1_Datasets(r *gin.RouterGroup, c *controller.Controller, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/datasets")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", c.Dataset.CreateDataset)
		v1.GET("", c.Dataset.GetDatasetList)
		v1.GET("/:datasetId", c.Dataset.GetDatasetById)
		v1.PATCH("/:datasetId", c.Dataset.UpdateDataset)
		v1.DELETE("/:datasetId", c.Dataset.DeleteDataset)
		v1.PUT("/:datasetId/sharing", c.Dataset.UpdateDatasetSharing)
		v1.POST("/:datasetId/clear", c.Dataset.ClearDatasetData)
		v1.GET("/:datasetId/map", c.Dataset.GetDatasetMapData)

		v1.GET("/:datasetId/fields", c.Field.GetFieldList)
		v1.POST("/:datasetId/fields", c.Field.CreateField)
		v1.PATCH("/:datasetId/fields/:fieldId", c.Field.UpdateField)
		v1.DELETE("/:datasetId/fields/:fieldId", c.Field.DeleteField)
		v1.POST("/:datasetId/fields/enable-all", c.Field.EnableAllFields)
		v1.PUT("/:datasetId/fields/order", c.Field.ReorderFields)

		v1.POST("/:datasetId/geometries", c.Geometry.CreateGeometry)
		v1.GET("/:datasetId/geometries/:geometryId", c.Geometry.GetGeometryById)
		v1.PATCH("/:datasetId/geometries/:geometryId", c.Geometry.UpdateGeometry)
		v1.DELETE("/:datasetId/geometries/:geometryId", c.Geometry.DeleteGeometry)

		v1.POST("/:datasetId/geometries/:geometryId/entries", c.Entry.CreateEntry)
		v1.PATCH("/:datasetId/entries/:entryId", c.Entry.SaveEntryValues)
		v1.DELETE("/:datasetId/entries/:entryId", c.Entry.DeleteEntry)

		v1.POST("/:datasetId/entries/:entryId/files", c.File.UploadEntryFile)
		v1.GET("/:datasetId/files/:fileId/url", c.File.GetEntryFileUrl)
		v1.DELETE("/:datasetId/files/:fileId", c.File.DeleteEntryFile)

		v1.POST("/:datasetId/import/preview", c.Import.PreviewImport)
		v1.POST("/:datasetId/import", c.Import.CommitImport)

		v1.GET("/:datasetId/export/csv", c.Export.ExportCSV)
		v1.POST("/:datasetId/export/zip", c.Export.CreateExportTask)
		v1.GET("/:datasetId/export/zip", c.Export.GetExportTaskList)
		v1.GET("/:datasetId/export/zip/:taskId", c.Export.GetExportTask)
		v1.GET("/:datasetId/export/zip/:taskId/download", c.Export.DownloadExportResult)

		v1.GET("/:datasetId/areas", c.MappingArea.GetMappingAreaList)
		v1.POST("/:datasetId/areas", c.MappingArea.CreateMappingArea)
		v1.PATCH("/:datasetId/areas/:areaId", c.MappingArea.UpdateMappingArea)
		v1.DELETE("/:datasetId/areas/:areaId", c.MappingArea.DeleteMappingArea)
		v1.POST("/:datasetId/areas/:areaId/allocations", c.MappingArea.AllocateMappingArea)
		v1.DELETE("/:datasetId/areas/:areaId/allocations", c.MappingArea.DeallocateMappingArea)
	}
}
