package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/Signfy/internal/app_context"
	"github.com/SeakMengs/Signfy/internal/auth"
	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/internal/constant"
	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/internal/repository"
	"github.com/SeakMengs/Signfy/internal/signer"
	"github.com/SeakMengs/Signfy/internal/util"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUserID = "user-1"

// memorySessions keeps signing sessions in memory with the same conditional
// submission semantics as the Postgres repository.
type memorySessions struct {
	mu   sync.Mutex
	rows map[string]model.SigningSession
	// makes BeginSubmission lose, as if another request got there first
	held bool
}

func newMemorySessions(rows ...model.SigningSession) *memorySessions {
	m := &memorySessions{rows: make(map[string]model.SigningSession)}
	for _, row := range rows {
		m.rows[row.ID] = row
	}
	return m
}

func (m *memorySessions) get(id string) model.SigningSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

func (m *memorySessions) Create(ctx context.Context, tx *gorm.DB, session *model.SigningSession) (*model.SigningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == "" {
		session.ID = "session-" + session.DocumentID
	}
	m.rows[session.ID] = *session
	return session, nil
}

func (m *memorySessions) GetByUserAndDocument(ctx context.Context, tx *gorm.DB, userID, documentID string) (*model.SigningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.UserID == userID && row.DocumentID == documentID {
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memorySessions) GetById(ctx context.Context, tx *gorm.DB, sessionID, userID string) (*model.SigningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[sessionID]
	if !ok || row.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (m *memorySessions) Save(ctx context.Context, tx *gorm.DB, session *model.SigningSession) (*model.SigningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	session.UpdatedAt = &now
	m.rows[session.ID] = *session
	return session, nil
}

func (m *memorySessions) BeginSubmission(ctx context.Context, tx *gorm.DB, sessionID, submissionKey string, staleBefore time.Time, from ...signfy.SessionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[sessionID]
	if !ok || m.held {
		return false, nil
	}

	allowed := row.Status == signfy.StatusSubmitting && row.UpdatedAt != nil && row.UpdatedAt.Before(staleBefore)
	for _, status := range from {
		if row.Status == status {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}

	now := time.Now()
	row.Status = signfy.StatusSubmitting
	row.SubmissionKey = submissionKey
	row.UpdatedAt = &now
	m.rows[sessionID] = row
	return true, nil
}

func (m *memorySessions) MarkApplied(ctx context.Context, tx *gorm.DB, session *model.SigningSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	row := m.rows[session.ID]
	row.AppliedAt = &now
	m.rows[session.ID] = row
	session.AppliedAt = &now
	return nil
}

func (m *memorySessions) AttachSignedFile(ctx context.Context, tx *gorm.DB, session *model.SigningSession, file *model.File) error {
	session.SignedFile = file
	return nil
}

var _ repository.SigningSessionStore = (*memorySessions)(nil)

// signingBackend counts what the controllers send to the signing backend.
type signingBackend struct {
	mu          sync.Mutex
	submissions []signfy.SignatureSubmission
	fetches     int
	applyStatus int
}

func (b *signingBackend) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.submissions), b.fetches
}

func (b *signingBackend) setApplyStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applyStatus = status
}

func (b *signingBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/signatures", func(w http.ResponseWriter, r *http.Request) {
		var s signfy.SignatureSubmission
		_ = json.NewDecoder(r.Body).Decode(&s)

		b.mu.Lock()
		b.submissions = append(b.submissions, s)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/api/signatures/apply/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.fetches++
		status := b.applyStatus
		b.mu.Unlock()

		if status != 0 {
			http.Error(w, "signed file not ready", status)
			return
		}
		_ = json.NewEncoder(w).Encode(signfy.SignedFile{URL: "/uploads/signed/doc-1.pdf", FileName: "doc-1.pdf"})
	})
	return mux
}

func newSigningRouter(t *testing.T, store *memorySessions, backend *signingBackend) *gin.Engine {
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	logger := util.NewLogger("")
	cfg := &config.Config{Signer: config.SignerConfig{API_BASE_URL: srv.URL + "/api", Timeout: time.Second}}
	c := NewController(&appcontext.Application{
		Config:     cfg,
		Logger:     logger,
		Repository: &repository.Repository{SigningSession: store},
		Signer:     signer.New(cfg.Signer, logger),
		Drags:      signfy.NewDragRegistry(),
	})

	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(constant.CTX_USER_KEY, auth.JWTPayload{ID: testUserID})
		ctx.Set(constant.CTX_TOKEN_KEY, "secret-token")
		ctx.Next()
	})
	r.POST("/sessions/:sessionId/drag/start", c.Signature.DragStart)
	r.POST("/sessions/:sessionId/drag/end", c.Signature.DragEnd)
	r.POST("/sessions/:sessionId/confirm", c.Signature.ConfirmSignature)
	r.POST("/sessions/:sessionId/signed-file/retry", c.Signature.RetrySignedFile)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// placedSession is a row with a draft placed and positioned on page 1.
func placedSession(status signfy.SessionStatus) model.SigningSession {
	updated := time.Now()
	return model.SigningSession{
		BaseModel:    model.BaseModel{ID: "s1", UpdatedAt: &updated},
		UserID:       testUserID,
		DocumentID:   "doc-1",
		PageCount:    3,
		PageWidth:    595,
		PageHeight:   842,
		Status:       status,
		Name:         "Jane Doe",
		Initials:     "JD",
		Font:         signfy.FontPacifico,
		FontSize:     24,
		HasPlacement: true,
		X:            100,
		Y:            400,
		Page:         1,
	}
}

func stale(row model.SigningSession) model.SigningSession {
	updated := time.Now().Add(-time.Hour)
	row.UpdatedAt = &updated
	return row
}

func TestConfirmSignature(t *testing.T) {
	store := newMemorySessions(placedSession(signfy.StatusDrafting))
	backend := &signingBackend{}
	r := newSigningRouter(t, store, backend)

	w := post(r, "/sessions/s1/confirm", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	submissions, fetches := backend.counts()
	require.Equal(t, 1, submissions)
	require.Equal(t, 1, fetches)
	require.Equal(t, signfy.SignatureSubmission{
		DocumentID: "doc-1", X: 100, Y: 400, Page: 1, Name: "Jane Doe", Font: signfy.FontPacifico, FontSize: 24,
	}, backend.submissions[0])

	row := store.get("s1")
	require.Equal(t, signfy.StatusSigned, row.Status)
	require.Empty(t, row.Name)
	require.False(t, row.HasPlacement)
	require.True(t, strings.HasSuffix(row.SignedURL, "/uploads/signed/doc-1.pdf"))
	require.NotNil(t, row.AppliedAt)
	require.NotEmpty(t, row.SubmissionKey)
}

func TestConfirmSignatureRejectsConcurrentSubmission(t *testing.T) {
	tests := []struct {
		name string
		row  model.SigningSession
		held bool
	}{
		{"Row already submitting", placedSession(signfy.StatusSubmitting), false},
		{"Another request wins the conditional update", placedSession(signfy.StatusDrafting), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemorySessions(tt.row)
			store.held = tt.held
			backend := &signingBackend{}
			r := newSigningRouter(t, store, backend)

			w := post(r, "/sessions/s1/confirm", "")
			require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

			submissions, fetches := backend.counts()
			require.Zero(t, submissions)
			require.Zero(t, fetches)
		})
	}
}

func TestConfirmSignatureSignedFileFailure(t *testing.T) {
	store := newMemorySessions(placedSession(signfy.StatusDrafting))
	backend := &signingBackend{applyStatus: http.StatusServiceUnavailable}
	r := newSigningRouter(t, store, backend)

	w := post(r, "/sessions/s1/confirm", "")
	require.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())

	row := store.get("s1")
	require.Equal(t, signfy.StatusApplyPending, row.Status)
	require.Equal(t, "Jane Doe", row.Name)
	require.True(t, row.HasPlacement)
	require.NotNil(t, row.AppliedAt)

	// the follow-up confirm only fetches the signed file
	backend.setApplyStatus(0)
	w = post(r, "/sessions/s1/confirm", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	submissions, fetches := backend.counts()
	require.Equal(t, 1, submissions)
	require.Equal(t, 2, fetches)
	require.Equal(t, signfy.StatusSigned, store.get("s1").Status)
}

func TestConfirmSignatureTakesOverAbandonedSubmission(t *testing.T) {
	applied := placedSession(signfy.StatusSubmitting)
	appliedAt := time.Now().Add(-time.Hour)
	applied.AppliedAt = &appliedAt

	tests := []struct {
		name            string
		row             model.SigningSession
		wantSubmissions int
	}{
		{"Interrupted before the backend accepted it", stale(placedSession(signfy.StatusSubmitting)), 1},
		{"Interrupted after the backend accepted it", stale(applied), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemorySessions(tt.row)
			backend := &signingBackend{}
			r := newSigningRouter(t, store, backend)

			w := post(r, "/sessions/s1/confirm", "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			submissions, fetches := backend.counts()
			require.Equal(t, tt.wantSubmissions, submissions)
			require.Equal(t, 1, fetches)
			require.Equal(t, signfy.StatusSigned, store.get("s1").Status)
		})
	}
}

func TestRetrySignedFile(t *testing.T) {
	appliedAt := time.Now().Add(-time.Hour)
	pending := placedSession(signfy.StatusApplyPending)
	pending.AppliedAt = &appliedAt
	abandonedRetry := stale(pending)
	abandonedRetry.Status = signfy.StatusSubmitting

	tests := []struct {
		name        string
		row         model.SigningSession
		wantStatus  int
		wantFetches int
	}{
		{"Apply pending", pending, http.StatusOK, 1},
		{"Retry interrupted after apply", abandonedRetry, http.StatusOK, 1},
		{"Retry still running", placedSession(signfy.StatusSubmitting), http.StatusConflict, 0},
		{"Nothing applied yet", placedSession(signfy.StatusDrafting), http.StatusConflict, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemorySessions(tt.row)
			backend := &signingBackend{}
			r := newSigningRouter(t, store, backend)

			w := post(r, "/sessions/s1/signed-file/retry", "")
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			submissions, fetches := backend.counts()
			require.Zero(t, submissions)
			require.Equal(t, tt.wantFetches, fetches)
		})
	}
}

func TestDragEndRecordsPage(t *testing.T) {
	row := placedSession(signfy.StatusDrafting)
	row.HasPlacement, row.X, row.Y, row.Page = false, 0, 0, 0
	store := newMemorySessions(row)
	r := newSigningRouter(t, store, &signingBackend{})

	w := post(r, "/sessions/s1/drag/start", `{
		"pointer": {"clientX": 110, "clientY": 105},
		"element": {"left": 100, "top": 100, "width": 80, "height": 20},
		"container": {"left": 0, "top": 0, "width": 595, "height": 842}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = post(r, "/sessions/s1/drag/end", `{
		"pointer": {"clientX": 210, "clientY": 305},
		"canvas": {"left": 0, "top": 0, "width": 595, "height": 842},
		"page": 2
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	saved := store.get("s1")
	require.True(t, saved.HasPlacement)
	require.EqualValues(t, 2, saved.Page)
	require.Equal(t, 200, saved.X)
	require.Equal(t, 842-300-24, saved.Y)
	require.Equal(t, 200.0, saved.PosX)
	require.Equal(t, 300.0, saved.PosY)

	w = post(r, "/sessions/s1/drag/end", `{
		"pointer": {"clientX": 210, "clientY": 305},
		"canvas": {"left": 0, "top": 0, "width": 595, "height": 842},
		"page": 2
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, "a released drag cannot end twice")
}
