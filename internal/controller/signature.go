package controller

import (
	"context"
	"time"

	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/signer"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SignatureController struct {
	*baseController
}

type PlaceSignatureRequest struct {
	Name     string `json:"name" form:"name" binding:"required,strNotEmpty,cmax=100"`
	Font     string `json:"font" form:"font" binding:"omitempty,signatureFont"`
	FontSize int    `json:"fontSize" form:"fontSize" binding:"omitempty"`
}

// ensureEditable rejects draft changes once a submission has started.
func ensureEditable(session *signfy.Session) error {
	switch session.Status {
	case signfy.StatusSubmitting:
		return signfy.ErrSubmissionInFlight
	case signfy.StatusApplyPending:
		return errSignatureApplied
	}
	return nil
}

func (sc SignatureController) PlaceSignature(ctx *gin.Context) {
	var body PlaceSignatureRequest

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		sc.app.Logger.Debugf("Failed to bind request: %v", err)
		util.ResponseFailed(ctx, 400, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	font := signfy.DefaultFont
	if body.Font != "" {
		font = signfy.SignatureFont(body.Font)
	}
	fontSize := body.FontSize
	if fontSize == 0 {
		fontSize = signfy.DefaultFontSize
	}

	session := row.ToSession()
	if err := ensureEditable(session); err != nil {
		sc.respondError(ctx, "Failed to place signature", err, "signature", nil)
		return
	}

	if _, err := session.Place(body.Name, font, fontSize); err != nil {
		sc.respondError(ctx, "Failed to place signature", err, "signature", nil)
		return
	}

	// a new draft is a new submission
	row.ResetSubmission()
	sc.app.Drags.Forget(row.DragKey())

	if err := sc.saveSession(ctx, row, session); err != nil {
		sc.respondError(ctx, "Failed to save signing session", err, "session", nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"session": sc.toSessionResponse(row),
	})
}

func (sc SignatureController) ResizeSignature(ctx *gin.Context) {
	type Request struct {
		FontSize int `json:"fontSize" form:"fontSize" binding:"required"`
	}
	var body Request

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBind(&body); err != nil {
		util.ResponseFailed(ctx, 400, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	session := row.ToSession()
	if err := ensureEditable(session); err != nil {
		sc.respondError(ctx, "Failed to resize signature", err, "fontSize", nil)
		return
	}
	if err := session.Resize(body.FontSize); err != nil {
		sc.respondError(ctx, "Failed to resize signature", err, "fontSize", nil)
		return
	}

	if err := sc.saveSession(ctx, row, session); err != nil {
		sc.respondError(ctx, "Failed to save signing session", err, "session", nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"session": sc.toSessionResponse(row),
	})
}

func (sc SignatureController) DragStart(ctx *gin.Context) {
	type Request struct {
		Pointer   signfy.PointerEvent `json:"pointer"`
		Element   signfy.Rect         `json:"element" binding:"required"`
		Container signfy.Rect         `json:"container" binding:"required"`
	}
	var body Request

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, 400, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	session := row.ToSession()
	if err := ensureEditable(session); err != nil {
		sc.respondError(ctx, "Failed to start drag", err, "drag", nil)
		return
	}
	if session.Draft == nil {
		sc.respondError(ctx, "Failed to start drag", signfy.ErrNoDraft, "drag", nil)
		return
	}

	if err := sc.app.Drags.Begin(row.DragKey(), body.Pointer, body.Element, body.Container); err != nil {
		sc.respondError(ctx, "Failed to start drag", err, "pointer", nil)
		return
	}

	position, _ := sc.app.Drags.Position(row.DragKey())
	util.ResponseSuccess(ctx, gin.H{
		"dragging": true,
		"left":     position.X,
		"top":      position.Y,
	})
}

func (sc SignatureController) DragMove(ctx *gin.Context) {
	type Request struct {
		Pointer signfy.PointerEvent `json:"pointer"`
	}
	var body Request

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, 400, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	position, err := sc.app.Drags.Move(row.DragKey(), body.Pointer)
	if err != nil {
		sc.respondError(ctx, "Failed to move signature", err, "pointer", nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"left": position.X,
		"top":  position.Y,
	})
}

type PlacementRequest struct {
	Pointer signfy.PointerEvent `json:"pointer"`
	// Bounding box of the rendered page canvas
	Canvas signfy.Rect `json:"canvas" binding:"required"`
	Page   uint        `json:"page" binding:"omitempty,gte=1"`
}

func (r PlacementRequest) page() uint {
	if r.Page == 0 {
		return 1
	}
	return r.Page
}

func (sc SignatureController) DragEnd(ctx *gin.Context) {
	type Request struct {
		PlacementRequest
		Mode string `json:"mode" binding:"omitempty,oneof=element pointer"`
	}
	var body Request

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, 400, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	mode := signfy.EndAtElement
	if body.Mode == "pointer" {
		mode = signfy.EndAtPointer
	}

	session := row.ToSession()
	if err := ensureEditable(session); err != nil {
		sc.app.Drags.Forget(row.DragKey())
		sc.respondError(ctx, "Failed to end drag", err, "drag", nil)
		return
	}
	if session.Draft == nil {
		sc.app.Drags.Forget(row.DragKey())
		sc.respondError(ctx, "Failed to end drag", signfy.ErrNoDraft, "drag", nil)
		return
	}

	mapper := session.Mapper(signfy.StaticSurface(body.Canvas))
	placement, err := sc.app.Drags.End(row.DragKey(), body.Pointer, mapper, float64(session.Draft.FontSize), mode)
	if err != nil {
		sc.respondError(ctx, "Failed to place signature", err, "pointer", nil)
		return
	}

	if position, ok := sc.app.Drags.Position(row.DragKey()); ok {
		session.Draft.Position = position
	}

	sc.recordPlacement(ctx, row, session, placement, body.page())
}

// MapPlacement maps a single pointer position, for hosts that do not stream drag events.
func (sc SignatureController) MapPlacement(ctx *gin.Context) {
	var body PlacementRequest

	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, 400, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	session := row.ToSession()
	if err := ensureEditable(session); err != nil {
		sc.respondError(ctx, "Failed to place signature", err, "placement", nil)
		return
	}
	if session.Draft == nil {
		sc.respondError(ctx, "Failed to place signature", signfy.ErrNoDraft, "placement", nil)
		return
	}

	placement, err := session.Mapper(signfy.StaticSurface(body.Canvas)).MapEvent(body.Pointer, float64(session.Draft.FontSize))
	if err != nil {
		sc.respondError(ctx, "Failed to place signature", err, "pointer", nil)
		return
	}

	sc.recordPlacement(ctx, row, session, placement, body.page())
}

func (sc SignatureController) recordPlacement(ctx *gin.Context, row *model.SigningSession, session *signfy.Session, placement signfy.Placement, page uint) {
	placement.Page = page
	if err := session.RecordPlacement(placement); err != nil {
		sc.respondError(ctx, "Failed to place signature", err, "page", nil)
		return
	}

	if err := sc.saveSession(ctx, row, session); err != nil {
		sc.respondError(ctx, "Failed to save signing session", err, "session", nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"placement": placement,
		"session":   sc.toSessionResponse(row),
	})
}

func (sc SignatureController) signerTimeout() time.Duration {
	if sc.app.Config.Signer.Timeout <= 0 {
		return 30 * time.Second
	}
	return sc.app.Config.Signer.Timeout
}

// recoverAbandoned takes over a row left submitting by a request that never finished.
// A row whose signature already reached the backend only waits for its signed file.
func (sc SignatureController) recoverAbandoned(row *model.SigningSession, session *signfy.Session, staleBefore time.Time) {
	if session.Status != signfy.StatusSubmitting || row.UpdatedAt == nil || !row.UpdatedAt.Before(staleBefore) {
		return
	}

	if row.AppliedAt != nil {
		sc.app.Logger.Warnf("Signing session %s was left submitting since %v after its signature was applied, fetching the signed file again", row.ID, row.UpdatedAt)
		session.Status = signfy.StatusApplyPending
		return
	}

	sc.app.Logger.Warnf("Signing session %s was left submitting since %v, submitting again", row.ID, row.UpdatedAt)
	session.Status = signfy.StatusDrafting
}

// staleBefore is the point after which a row still marked submitting is treated as abandoned.
func (sc SignatureController) staleBefore() time.Time {
	return time.Now().Add(-2 * sc.signerTimeout())
}

func (sc SignatureController) ConfirmSignature(ctx *gin.Context) {
	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	session := row.ToSession()
	staleBefore := sc.staleBefore()
	sc.recoverAbandoned(row, session, staleBefore)

	switch session.Status {
	case signfy.StatusSubmitting:
		sc.respondError(ctx, "Failed to confirm signature", signfy.ErrSubmissionInFlight, "signature", nil)
		return
	case signfy.StatusApplyPending:
		// only the signed file is fetched again
	default:
		if _, err := session.Submission(); err != nil {
			sc.respondError(ctx, "Failed to confirm signature", err, "signature", nil)
			return
		}
	}

	key := row.SubmissionKey
	if key == "" {
		var err error
		if key, err = util.GenerateIdempotencyKey(); err != nil {
			sc.respondError(ctx, "Failed to confirm signature", err, "signature", nil)
			return
		}
	}

	acquired, err := sc.app.Repository.SigningSession.BeginSubmission(ctx, nil, row.ID, key, staleBefore, signfy.StatusDrafting, signfy.StatusApplyPending)
	if err != nil {
		sc.respondError(ctx, "Failed to confirm signature", err, "session", nil)
		return
	}
	if !acquired {
		sc.respondError(ctx, "Failed to confirm signature", signfy.ErrSubmissionInFlight, "signature", nil)
		return
	}
	row.SubmissionKey = key

	client := sc.signerFor(ctx).WithIdempotencyKey(key)
	signed, err := session.Confirm(ctx.Request.Context(), appliedRecorder{
		Client: client,
		record: func(c context.Context) error {
			return sc.app.Repository.SigningSession.MarkApplied(c, nil, row)
		},
		logger: sc.app.Logger,
	})
	sc.finishSubmission(ctx, row, session, client, signed, err)
}

// appliedRecorder persists that the backend accepted a signature before its signed file
// is fetched.
type appliedRecorder struct {
	*signer.Client
	record func(ctx context.Context) error
	logger *zap.SugaredLogger
}

func (r appliedRecorder) SubmitSignature(ctx context.Context, s signfy.SignatureSubmission) error {
	if err := r.Client.SubmitSignature(ctx, s); err != nil {
		return err
	}

	// the signature is applied whatever happens to this write
	if err := r.record(context.WithoutCancel(ctx)); err != nil {
		r.logger.Errorf("Failed to record applied signature for document %s: %v", s.DocumentID, err)
	}
	return nil
}

func (sc SignatureController) RetrySignedFile(ctx *gin.Context) {
	_, row, ok := sc.getSession(ctx)
	if !ok {
		return
	}

	session := row.ToSession()
	staleBefore := sc.staleBefore()
	sc.recoverAbandoned(row, session, staleBefore)
	if session.Status != signfy.StatusApplyPending {
		sc.respondError(ctx, "Failed to fetch signed file", signfy.ErrNothingToRetry, "signature", nil)
		return
	}

	// a stale row is only taken over when its signature was applied
	if row.AppliedAt == nil {
		staleBefore = time.Time{}
	}
	acquired, err := sc.app.Repository.SigningSession.BeginSubmission(ctx, nil, row.ID, row.SubmissionKey, staleBefore, signfy.StatusApplyPending)
	if err != nil {
		sc.respondError(ctx, "Failed to fetch signed file", err, "session", nil)
		return
	}
	if !acquired {
		sc.respondError(ctx, "Failed to fetch signed file", signfy.ErrSubmissionInFlight, "signature", nil)
		return
	}

	client := sc.signerFor(ctx)
	signed, err := session.RetrySignedFile(ctx.Request.Context(), client)
	sc.finishSubmission(ctx, row, session, client, signed, err)
}

// finishSubmission stores whatever state the session ended in and answers the request.
func (sc SignatureController) finishSubmission(ctx *gin.Context, row *model.SigningSession, session *signfy.Session, client *signer.Client, signed signfy.SignedFile, confirmErr error) {
	if err := sc.saveSession(ctx, row, session); err != nil {
		sc.app.Logger.Errorf("Failed to save signing session %s after submission: %v", row.ID, err)
		if confirmErr == nil {
			sc.respondError(ctx, "Failed to save signing session", err, "session", nil)
			return
		}
	}

	if confirmErr != nil {
		sc.respondError(ctx, "Failed to apply signature", confirmErr, "signature", gin.H{
			"session": sc.toSessionResponse(row),
		})
		return
	}

	sc.app.Drags.Forget(row.DragKey())
	sc.archiveSignedFile(ctx, row, client, signed)

	links, err := signfy.ShareLinks(signed.URL)
	if err != nil {
		sc.app.Logger.Errorf("Failed to build share links for %s: %v", signed.URL, err)
	}

	util.ResponseSuccess(ctx, gin.H{
		"session":    sc.toSessionResponse(row),
		"signedFile": signed,
		"shareLinks": links,
	})
}

// archiveSignedFile copies the signed PDF into the bucket when the archive is enabled.
// Failures are logged only: the backend copy stays authoritative.
func (sc SignatureController) archiveSignedFile(ctx *gin.Context, row *model.SigningSession, client *signer.Client, signed signfy.SignedFile) {
	if sc.app.S3 == nil {
		return
	}

	archiveCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*sc.signerTimeout())
	defer cancel()

	data, err := client.Download(archiveCtx, signed.URL)
	if err != nil {
		sc.app.Logger.Errorf("Failed to download signed file for archive: %v", err)
		return
	}

	fileName := util.SafePdfFileName(signed.FileName)
	info, err := util.UploadBytesToS3(archiveCtx, fileName, data, &util.FileUploadOptions{
		DirectoryPath: util.GetSignedDocumentDirectoryPath(row.DocumentID),
		UniquePrefix:  true,
		Bucket:        sc.app.Config.Minio.BUCKET,
		ContentType:   "application/pdf",
		S3:            sc.app.S3,
	})
	if err != nil {
		sc.app.Logger.Errorf("Failed to archive signed file: %v", err)
		return
	}

	file := &model.File{
		FileName:       fileName,
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		Size:           info.Size,
	}
	if err := sc.app.Repository.SigningSession.AttachSignedFile(ctx, nil, row, file); err != nil {
		sc.app.Logger.Errorf("Failed to record archived signed file: %v", err)
	}
}
