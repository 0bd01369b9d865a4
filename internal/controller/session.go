package controller

import (
	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
)

type SessionController struct {
	*baseController
}

type SessionResponse struct {
	ID         string               `json:"id"`
	DocumentID string               `json:"documentId"`
	FileURL    string               `json:"fileUrl"`
	PageCount  uint                 `json:"pageCount"`
	PageSize   signfy.Size          `json:"pageSize"`
	Status     signfy.SessionStatus `json:"status"`
	Draft      *signfy.Draft        `json:"draft"`
	Placement  *signfy.Placement    `json:"placement"`
	Signed     *signfy.SignedFile   `json:"signed"`
	Dragging   bool                 `json:"dragging"`
	CanConfirm bool                 `json:"canConfirm"`
}

func (b *baseController) toSessionResponse(row *model.SigningSession) SessionResponse {
	session := row.ToSession()
	_, submissionErr := session.Submission()

	return SessionResponse{
		ID:         row.ID,
		DocumentID: row.DocumentID,
		FileURL:    row.FileURL,
		PageCount:  session.PageCount,
		PageSize:   session.PageSize,
		Status:     session.Status,
		Draft:      session.Draft,
		Placement:  session.Placement,
		Signed:     session.Signed,
		Dragging:   b.app.Drags.IsDragging(row.DragKey()),
		CanConfirm: submissionErr == nil && session.Status == signfy.StatusDrafting,
	}
}

func (sc SessionController) GetSession(ctx *gin.Context) {
	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"session": sc.toSessionResponse(row),
	})
}
