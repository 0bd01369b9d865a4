package route

import (
	"github.com/SeakMengs/Signfy/internal/controller"
	"github.com/SeakMengs/Signfy/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Signatures(r *gin.RouterGroup, fc *controller.FileController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/signatures")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/fonts", fc.GetFonts)
		v1.GET("/preview", fc.PreviewSignature)
	}
}
