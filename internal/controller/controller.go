package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	appcontext "github.com/SeakMengs/Signfy/internal/app_context"
	"github.com/SeakMengs/Signfy/internal/auth"
	"github.com/SeakMengs/Signfy/internal/constant"
	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/signer"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index     *IndexController
	Document  *DocumentController
	Session   *SessionController
	Signature *SignatureController
	Share     *ShareController
	File      *FileController
}

const (
	ErrSessionIdRequired  = "session id is required"
	ErrDocumentIdRequired = "document id is required"
)

var (
	errSignatureApplied = errors.New("signature already applied, retry fetching the signed file instead")
	errNoSignedFile     = errors.New("document has not been signed yet")
	errPreviewDisabled  = errors.New("signature preview is unavailable, no font metadata was loaded")
	errBackendDownload  = errors.New("failed to download file from the signing backend")
)

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:     &IndexController{baseController: bc},
		Document:  &DocumentController{baseController: bc},
		Session:   &SessionController{baseController: bc},
		Signature: &SignatureController{baseController: bc},
		Share:     &ShareController{baseController: bc},
		File:      &FileController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get(constant.CTX_USER_KEY)
	if !exists {
		return nil, errors.New("user not found in context")
	}

	if payload, ok := user.(auth.JWTPayload); ok {
		return &payload, nil
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}

// signerFor binds the caller's bearer token to the signing backend client.
func (b *baseController) signerFor(ctx *gin.Context) *signer.Client {
	return b.app.Signer.WithToken(ctx.Request.Context(), ctx.GetString(constant.CTX_TOKEN_KEY))
}

// getSession loads the session named by the :sessionId param, answering the request itself on failure.
func (b *baseController) getSession(ctx *gin.Context) (*auth.JWTPayload, *model.SigningSession, bool) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		b.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return nil, nil, false
	}

	sessionId := ctx.Params.ByName("sessionId")
	if sessionId == "" {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Session id is required", util.GenerateErrorMessages(errors.New(ErrSessionIdRequired), "sessionId"), nil)
		return nil, nil, false
	}

	row, err := b.app.Repository.SigningSession.GetById(ctx, nil, sessionId, user.ID)
	if err != nil {
		b.respondError(ctx, "Failed to get signing session", err, "session", nil)
		return nil, nil, false
	}

	return user, row, true
}

func (b *baseController) saveSession(ctx *gin.Context, row *model.SigningSession, session *signfy.Session) error {
	row.FromSession(session)
	_, err := b.app.Repository.SigningSession.Save(ctx, nil, row)
	return err
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	var signedFileErr *signfy.SignedFileError
	var apiErr *signer.APIError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, errNoSignedFile):
		return http.StatusNotFound
	case errors.Is(err, signfy.ErrSignatureAlreadyPlaced),
		errors.Is(err, signfy.ErrSubmissionInFlight),
		errors.Is(err, signfy.ErrNothingToRetry),
		errors.Is(err, errSignatureApplied):
		return http.StatusConflict
	case errors.Is(err, signfy.ErrEmptyName),
		errors.Is(err, signfy.ErrUnsupportedFont),
		errors.Is(err, signfy.ErrFontSizeOutOfRange),
		errors.Is(err, signfy.ErrNoDraft),
		errors.Is(err, signfy.ErrNoPlacement),
		errors.Is(err, signfy.ErrInvalidPage),
		errors.Is(err, signfy.ErrUnknownShareTarget):
		return http.StatusBadRequest
	case errors.Is(err, signfy.ErrPointerUnavailable),
		errors.Is(err, signfy.ErrNoPageSurface),
		errors.Is(err, signfy.ErrInvalidGeometry),
		errors.Is(err, signfy.ErrNotDragging),
		errors.Is(err, signfy.ErrFontNotInstalled):
		return http.StatusUnprocessableEntity
	case errors.As(err, &signedFileErr),
		errors.As(err, &apiErr),
		errors.Is(err, signer.ErrMissingFilePath),
		errors.Is(err, errBackendDownload):
		return http.StatusBadGateway
	case errors.Is(err, errPreviewDisabled):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

func (b *baseController) respondError(ctx *gin.Context, message string, err error, field string, data any) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		b.app.Logger.Errorf("%s: %v", message, err)
	} else {
		b.app.Logger.Debugf("%s: %v", message, err)
	}

	util.ResponseFailed(ctx, status, message, util.GenerateErrorMessages(err, field), data)
}
