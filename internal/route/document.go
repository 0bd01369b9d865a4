package route

import (
	"github.com/SeakMengs/Signfy/internal/controller"
	"github.com/SeakMengs/Signfy/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Documents(r *gin.RouterGroup, dc *controller.DocumentController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/documents")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/:documentId", dc.OpenDocument)
	}
}
