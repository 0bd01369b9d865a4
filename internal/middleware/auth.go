package middleware

import (
	"errors"

	"github.com/SeakMengs/Signfy/internal/constant"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and keeps the raw token in the context
// so controllers can forward it to the signing backend.
func (m Middleware) AuthMiddleware(ctx *gin.Context) {
	token, err := util.ReadBearerToken(ctx)
	if err != nil {
		m.app.Logger.Debugf("Failed to read token: %v", err)
		util.ResponseFailed(ctx, 401, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		ctx.Abort()
		return
	}

	claim, err := m.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		m.app.Logger.Debugf("Failed to verify token: %v", err)
		util.ResponseFailed(ctx, 401, "Invalid token", util.GenerateErrorMessages(err, "unauthorized"), nil)
		ctx.Abort()
		return
	}

	if claim.Type != constant.JWT_TYPE_ACCESS {
		m.app.Logger.Debugf("Invalid token type: %s", claim.Type)
		util.ResponseFailed(ctx, 401, "Invalid access token type", util.GenerateErrorMessages(errors.New("invalid token type"), "unauthorized"), nil)
		ctx.Abort()
		return
	}

	ctx.Set(constant.CTX_USER_KEY, claim.User)
	ctx.Set(constant.CTX_TOKEN_KEY, token)
	ctx.Next()
}
