package route

import (
	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/controller"
	"github.com/silvioheinze/isr-field-sub000/internal/middleware"
)

func V1_Typologies(r *gin.RouterGroup, tc *controller.TypologyController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/typologies")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("", tc.GetTypologyList)
		v1.POST("", tc.CreateTypology)
		v1.GET("/:typologyId", tc.GetTypologyById)
		v1.PATCH("/:typologyId", tc.UpdateTypology)
		v1.DELETE("/:typologyId", tc.DeleteTypology)

		v1.POST("/:typologyId/entries", tc.CreateTypologyEntry)
		v1.PATCH("/:typologyId/entries/:entryId", tc.UpdateTypologyEntry)
		v1.DELETE("/:typologyId/entries/:entryId", tc.DeleteTypologyEntry)

		v1.POST("/:typologyId/import", tc.ImportTypologyEntries)
		v1.GET("/:typologyId/export", tc.ExportTypologyEntries)
	}
}
