package controller

import (
	"net/http"
	"time"

	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
)

const DOWNLOAD_LINK_EXPIRY = time.Hour

type FileController struct {
	*baseController
}

// ServeSignedFile redirects to the signed PDF of a session.
func (fc FileController) ServeSignedFile(ctx *gin.Context) {
	_, row, ok := fc.getSession(ctx)
	if !ok {
		return
	}

	fileURL, err := fc.signedFileURL(ctx, row, DOWNLOAD_LINK_EXPIRY)
	if err != nil {
		fc.respondError(ctx, "Failed to get signed file", err, "signedFile", nil)
		return
	}

	ctx.Redirect(http.StatusFound, fileURL)
}

type FontResponse struct {
	Name     signfy.SignatureFont `json:"name"`
	CSSClass string               `json:"cssClass"`
	// Whether a preview can be rendered in this font
	Installed bool `json:"installed"`
}

func (fc FileController) GetFonts(ctx *gin.Context) {
	fonts := make([]FontResponse, 0, len(signfy.SupportedFonts))
	for _, f := range signfy.SupportedFonts {
		fonts = append(fonts, FontResponse{
			Name:      f,
			CSSClass:  f.CSSClass(),
			Installed: fc.app.Preview != nil && fc.app.Preview.HasFont(f),
		})
	}

	util.ResponseSuccess(ctx, gin.H{
		"fonts":           fonts,
		"defaultFont":     signfy.DefaultFont,
		"defaultFontSize": signfy.DefaultFontSize,
		"minFontSize":     signfy.MinFontSize,
		"maxFontSize":     signfy.MaxFontSize,
	})
}

func (fc FileController) PreviewSignature(ctx *gin.Context) {
	type Request struct {
		Name     string `form:"name" binding:"required,strNotEmpty,cmax=100"`
		Font     string `form:"font" binding:"omitempty,signatureFont"`
		FontSize int    `form:"fontSize" binding:"omitempty"`
		Format   string `form:"format" binding:"omitempty,oneof=svg png pdf"`
	}
	var params Request

	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	if fc.app.Preview == nil {
		fc.respondError(ctx, "Failed to render preview", errPreviewDisabled, "preview", nil)
		return
	}

	font := signfy.DefaultFont
	if params.Font != "" {
		font = signfy.SignatureFont(params.Font)
	}
	fontSize := params.FontSize
	if fontSize == 0 {
		fontSize = signfy.DefaultFontSize
	}
	format := signfy.PreviewFormat(params.Format)
	if format == "" {
		format = signfy.PreviewSVG
	}

	data, err := fc.app.Preview.RenderBytes(params.Name, font, fontSize, format)
	if err != nil {
		fc.respondError(ctx, "Failed to render preview", err, "preview", nil)
		return
	}

	ctx.Data(http.StatusOK, format.ContentType(), data)
}
