package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	appcontext "github.com/SeakMengs/Signfy/internal/app_context"
	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/signer"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterValidations(v); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}

func newTestController() *Controller {
	return NewController(&appcontext.Application{
		Config: &config.Config{},
		Logger: util.NewLogger(""),
		Drags:  signfy.NewDragRegistry(),
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Empty name", signfy.ErrEmptyName, http.StatusBadRequest},
		{"Wrapped font error", fmt.Errorf("%w: %q", signfy.ErrUnsupportedFont, "Comic Sans"), http.StatusBadRequest},
		{"Page out of range", signfy.ErrInvalidPage, http.StatusBadRequest},
		{"Already placed", signfy.ErrSignatureAlreadyPlaced, http.StatusConflict},
		{"Submission in flight", signfy.ErrSubmissionInFlight, http.StatusConflict},
		{"Nothing to retry", signfy.ErrNothingToRetry, http.StatusConflict},
		{"No page surface", signfy.ErrNoPageSurface, http.StatusUnprocessableEntity},
		{"No pointer", signfy.ErrPointerUnavailable, http.StatusUnprocessableEntity},
		{"Not dragging", signfy.ErrNotDragging, http.StatusUnprocessableEntity},
		{"Signed file unavailable", &signfy.SignedFileError{DocumentID: "doc-1", Err: errors.New("boom")}, http.StatusBadGateway},
		{"Backend error", &signer.APIError{StatusCode: 500}, http.StatusBadGateway},
		{"Download error", fmt.Errorf("%w: %w", errBackendDownload, errors.New("timeout")), http.StatusBadGateway},
		{"Record not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"Not signed yet", errNoSignedFile, http.StatusNotFound},
		{"Preview disabled", errPreviewDisabled, http.StatusServiceUnavailable},
		{"Anything else", errors.New("database is down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestEnsureEditable(t *testing.T) {
	session := signfy.NewSession("doc-1", signfy.Size{Width: 595, Height: 842}, 1)
	require.NoError(t, ensureEditable(session))

	session.Status = signfy.StatusSubmitting
	require.ErrorIs(t, ensureEditable(session), signfy.ErrSubmissionInFlight)

	session.Status = signfy.StatusApplyPending
	require.ErrorIs(t, ensureEditable(session), errSignatureApplied)
}

func TestGetFonts(t *testing.T) {
	c := newTestController()
	r := gin.New()
	r.GET("/fonts", c.File.GetFonts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fonts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Fonts       []FontResponse `json:"fonts"`
			DefaultFont string         `json:"defaultFont"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Data.Fonts, len(signfy.SupportedFonts))
	require.Equal(t, "Pacifico", resp.Data.DefaultFont)
	require.Equal(t, "dancing-script", resp.Data.Fonts[2].CSSClass)
	require.False(t, resp.Data.Fonts[0].Installed)
}

func TestPreviewSignature(t *testing.T) {
	c := newTestController()
	r := gin.New()
	r.GET("/preview", c.File.PreviewSignature)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"Missing name", "/preview", http.StatusBadRequest},
		{"Blank name", "/preview?name=%20%20", http.StatusBadRequest},
		{"Unsupported font", "/preview?name=Jane&font=Comic%20Sans", http.StatusBadRequest},
		{"Unknown format", "/preview?name=Jane&format=gif", http.StatusBadRequest},
		{"No font metadata loaded", "/preview?name=Jane&font=Caveat", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.query, nil))
			require.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestIndex(t *testing.T) {
	c := newTestController()
	r := gin.New()
	r.GET("/", c.Index.Index)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), util.GetAppName())
}

func TestSignedFileURL(t *testing.T) {
	c := newTestController()
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := c.Share.signedFileURL(ctx, &model.SigningSession{}, SHARE_LINK_EXPIRY)
	require.ErrorIs(t, err, errNoSignedFile)

	// without an archive the backend url is handed out as is
	row := &model.SigningSession{
		SignedURL:  "http://localhost:5000/uploads/signed/contract.pdf",
		SignedFile: &model.File{UniqueFileName: "signed/contract.pdf"},
	}
	got, err := c.Share.signedFileURL(ctx, row, SHARE_LINK_EXPIRY)
	require.NoError(t, err)
	require.Equal(t, row.SignedURL, got)
}
