package repository

import (
	"context"
	"time"

	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type baseRepository struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// SigningSessionStore is the signing session persistence the controllers depend on.
type SigningSessionStore interface {
	Create(ctx context.Context, tx *gorm.DB, session *model.SigningSession) (*model.SigningSession, error)
	GetByUserAndDocument(ctx context.Context, tx *gorm.DB, userID, documentID string) (*model.SigningSession, error)
	GetById(ctx context.Context, tx *gorm.DB, sessionID, userID string) (*model.SigningSession, error)
	Save(ctx context.Context, tx *gorm.DB, session *model.SigningSession) (*model.SigningSession, error)
	BeginSubmission(ctx context.Context, tx *gorm.DB, sessionID, submissionKey string, staleBefore time.Time, from ...signfy.SessionStatus) (bool, error)
	MarkApplied(ctx context.Context, tx *gorm.DB, session *model.SigningSession) error
	AttachSignedFile(ctx context.Context, tx *gorm.DB, session *model.SigningSession, file *model.File) error
}

var _ SigningSessionStore = (*SigningSessionRepository)(nil)

type Repository struct {
	// DB can be used for transaction. Example usage:
	// tx := r.DB.Begin()
	// defer tx.Commit()
	// Then pass tx to the repository function. and use tx.Rollback() if error occurred
	DB             *gorm.DB
	SigningSession SigningSessionStore
	File           *FileRepository
}

func newBaseRepository(db *gorm.DB, logger *zap.SugaredLogger) *baseRepository {
	return &baseRepository{db: db, logger: logger}
}

func NewRepository(db *gorm.DB, logger *zap.SugaredLogger) *Repository {
	br := newBaseRepository(db, logger)
	_fileRepo := &FileRepository{baseRepository: br}

	return &Repository{
		DB:             db,
		SigningSession: &SigningSessionRepository{baseRepository: br, file: _fileRepo},
		File:           _fileRepo,
	}
}

// Note: GORM already wraps single writes in a transaction, withTx is for multi-statement units.
// Docs: https://gorm.io/docs/transactions.html#Disable-Default-Transaction
func (b baseRepository) withTx(db *gorm.DB, fn func(*gorm.DB) error) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})

	if err != nil {
		b.logger.Errorf("withTx Transaction error: %v", err)
	}

	return err
}

func (b baseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}

	return b.db
}
