package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DocumentController struct {
	*baseController
}

// OpenDocument returns the caller's signing session for a backend document, creating it
// on first open. Creating it reads the page geometry from the PDF itself.
func (dc DocumentController) OpenDocument(ctx *gin.Context) {
	user, err := dc.getAuthUser(ctx)
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	documentId := ctx.Params.ByName("documentId")
	if documentId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Document id is required", util.GenerateErrorMessages(errors.New(ErrDocumentIdRequired), "documentId"), nil)
		return
	}

	row, err := dc.app.Repository.SigningSession.GetByUserAndDocument(ctx, nil, user.ID, documentId)
	if err == nil {
		util.ResponseSuccess(ctx, gin.H{
			"session": dc.toSessionResponse(row),
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		dc.respondError(ctx, "Failed to get signing session", err, "session", nil)
		return
	}

	client := dc.signerFor(ctx)
	doc, err := client.GetDocument(ctx.Request.Context(), documentId)
	if err != nil {
		dc.respondError(ctx, "Failed to load document", err, "document", nil)
		return
	}

	fileURL := client.ResolveFileURL(doc.FilePath)
	data, err := client.Download(ctx.Request.Context(), fileURL)
	if err != nil {
		dc.respondError(ctx, "Failed to download document", fmt.Errorf("%w: %w", errBackendDownload, err), "document", nil)
		return
	}

	geometry, err := signfy.ReadPageGeometry(bytes.NewReader(data))
	if err != nil {
		dc.respondError(ctx, "Failed to read page geometry", fmt.Errorf("%w: %v", signfy.ErrInvalidGeometry, err), "document", nil)
		return
	}

	row = &model.SigningSession{
		UserID:     user.ID,
		DocumentID: documentId,
		FileURL:    fileURL,
		PageCount:  geometry.PageCount,
		PageWidth:  geometry.Size.Width,
		PageHeight: geometry.Size.Height,
		Status:     signfy.StatusIdle,
	}

	if _, err := dc.app.Repository.SigningSession.Create(ctx, nil, row); err != nil {
		// another request may have opened the same document first
		existing, getErr := dc.app.Repository.SigningSession.GetByUserAndDocument(ctx, nil, user.ID, documentId)
		if getErr != nil {
			dc.respondError(ctx, "Failed to create signing session", err, "session", nil)
			return
		}
		row = existing
	}

	util.ResponseSuccess(ctx, gin.H{
		"session": dc.toSessionResponse(row),
	})
}
