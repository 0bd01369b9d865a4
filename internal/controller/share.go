package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SeakMengs/Signfy/internal/mailer"
	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
)

// minio caps presigned links at seven days
const SHARE_LINK_EXPIRY = 7 * 24 * time.Hour

type ShareController struct {
	*baseController
}

// signedFileURL is the address handed out for a signed session: a presigned archive link
// when the copy was archived, the backend url otherwise.
func (b *baseController) signedFileURL(ctx *gin.Context, row *model.SigningSession, expiry time.Duration) (string, error) {
	if row.SignedURL == "" {
		return "", errNoSignedFile
	}

	if b.app.S3 != nil && row.SignedFile != nil {
		presigned, err := row.SignedFile.ToPresignedUrl(ctx, b.app.S3, expiry)
		if err == nil {
			return presigned, nil
		}
		b.app.Logger.Errorf("Failed to presign archived file %s, falling back to backend url: %v", row.SignedFile.UniqueFileName, err)
	}

	return row.SignedURL, nil
}

func (sc ShareController) GetShareLinks(ctx *gin.Context) {
	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	fileURL, err := sc.signedFileURL(ctx, row, SHARE_LINK_EXPIRY)
	if err != nil {
		sc.respondError(ctx, "Failed to get share links", err, "signedFile", nil)
		return
	}

	links, err := signfy.ShareLinks(fileURL)
	if err != nil {
		sc.respondError(ctx, "Failed to get share links", err, "signedFile", nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"fileUrl":  fileURL,
		"fileName": row.SignedFileName,
		"links":    links,
	})
}

func (sc ShareController) GetShareQRCode(ctx *gin.Context) {
	type Request struct {
		Format string `form:"format" binding:"omitempty,oneof=png svg"`
		Size   int    `form:"size" binding:"omitempty,gte=64,lte=1024"`
	}
	var params Request

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	fileURL, err := sc.signedFileURL(ctx, row, SHARE_LINK_EXPIRY)
	if err != nil {
		sc.respondError(ctx, "Failed to create QR code", err, "signedFile", nil)
		return
	}

	if params.Format == "svg" {
		svg, err := signfy.QRCodeSVG(fileURL)
		if err != nil {
			sc.respondError(ctx, "Failed to create QR code", err, "qrCode", nil)
			return
		}
		ctx.Data(http.StatusOK, "image/svg+xml", []byte(svg))
		return
	}

	png, err := signfy.QRCodePNG(fileURL, params.Size)
	if err != nil {
		sc.respondError(ctx, "Failed to create QR code", err, "qrCode", nil)
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}

func (sc ShareController) EmailShareLink(ctx *gin.Context) {
	type Request struct {
		Email   string `json:"email" form:"email" binding:"required,email"`
		Name    string `json:"name" form:"name" binding:"omitempty,cmax=100"`
		Message string `json:"message" form:"message" binding:"omitempty,cmax=500"`
	}
	var body Request

	user, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	fileURL, err := sc.signedFileURL(ctx, row, SHARE_LINK_EXPIRY)
	if err != nil {
		sc.respondError(ctx, "Failed to share signed file", err, "signedFile", nil)
		return
	}

	toName := body.Name
	if toName == "" {
		toName = body.Email
	}

	status, err := sc.app.Mailer.Send(mailer.SIGNED_DOCUMENT_TEMPLATE, toName, body.Email, mailer.SignedDocumentData{
		Username:   toName,
		SenderName: user.Name,
		FileName:   row.SignedFileName,
		FileURL:    fileURL,
		Message:    body.Message,
	})
	if err == nil && status >= http.StatusBadRequest {
		err = fmt.Errorf("mail provider answered with status %d", status)
	}
	if err != nil {
		sc.app.Logger.Errorf("Failed to mail share link for session %s: %v", row.ID, err)
		util.ResponseFailed(ctx, http.StatusBadGateway, "Failed to send email", util.GenerateErrorMessages(err, "email"), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"sent": true,
	})
}
