package route

import (
	"github.com/SeakMengs/Signfy/internal/controller"
	"github.com/SeakMengs/Signfy/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Sessions(r *gin.RouterGroup, c *controller.Controller, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/sessions")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/:sessionId", c.Session.GetSession)

		v1.POST("/:sessionId/signature", c.Signature.PlaceSignature)
		v1.PATCH("/:sessionId/signature", c.Signature.ResizeSignature)
		v1.POST("/:sessionId/drag/start", c.Signature.DragStart)
		v1.POST("/:sessionId/drag/move", c.Signature.DragMove)
		v1.POST("/:sessionId/drag/end", c.Signature.DragEnd)
		v1.POST("/:sessionId/placement", c.Signature.MapPlacement)
		v1.POST("/:sessionId/confirm", c.Signature.ConfirmSignature)

		v1.POST("/:sessionId/signed-file/retry", c.Signature.RetrySignedFile)
		v1.GET("/:sessionId/signed-file", c.File.ServeSignedFile)

		v1.GET("/:sessionId/share", c.Share.GetShareLinks)
		v1.GET("/:sessionId/share/qr", c.Share.GetShareQRCode)
		v1.POST("/:sessionId/share/email", c.Share.EmailShareLink)
	}
}
