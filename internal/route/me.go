package route

import (
	"github.com/gin-gonic/gin"
	"github.com/silvioheinze/isr-field-sub000/internal/controller"
	"github.com/silvioheinze/isr-field-sub000/internal/middleware"
)

func V1_Me(r *gin.RouterGroup, userController *controller.UserController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/me")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("", userController.GetMe)
	}
}
