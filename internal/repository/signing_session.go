package repository

import (
	"context"
	"time"

	constant "github.com/SeakMengs/Signfy/internal/constant"
	"github.com/SeakMengs/Signfy/internal/model"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SigningSessionRepository struct {
	*baseRepository
	file *FileRepository
}

func (sr SigningSessionRepository) Create(ctx context.Context, tx *gorm.DB, session *model.SigningSession) (*model.SigningSession, error) {
	sr.logger.Debugf("Create signing session with data: %v \n", session)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.SigningSession{}).Create(session).Error; err != nil {
		return session, err
	}

	return session, nil
}

func (sr SigningSessionRepository) GetByUserAndDocument(ctx context.Context, tx *gorm.DB, userID, documentID string) (*model.SigningSession, error) {
	sr.logger.Debugf("Get signing session with userID: %s and documentID: %s \n", userID, documentID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var session model.SigningSession
	if err := db.WithContext(ctx).Model(&model.SigningSession{}).Where(&model.SigningSession{
		UserID:     userID,
		DocumentID: documentID,
	}).Preload("SignedFile").First(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

// GetById only returns sessions owned by userID.
func (sr SigningSessionRepository) GetById(ctx context.Context, tx *gorm.DB, sessionID, userID string) (*model.SigningSession, error) {
	sr.logger.Debugf("Get signing session with sessionID: %s and userID: %s \n", sessionID, userID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var session model.SigningSession
	if err := db.WithContext(ctx).Model(&model.SigningSession{}).Where(&model.SigningSession{
		BaseModel: model.BaseModel{
			ID: sessionID,
		},
		UserID: userID,
	}).Preload("SignedFile").First(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

func (sr SigningSessionRepository) Save(ctx context.Context, tx *gorm.DB, session *model.SigningSession) (*model.SigningSession, error) {
	sr.logger.Debugf("Save signing session %s with status: %s \n", session.ID, session.Status)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Omit(clause.Associations).Save(session).Error; err != nil {
		return session, err
	}

	return session, nil
}

// BeginSubmission moves the session to submitting only if its stored status is one of from,
// or if it has been submitting since before staleBefore. It returns false when another
// request already holds the submission.
func (sr SigningSessionRepository) BeginSubmission(ctx context.Context, tx *gorm.DB, sessionID, submissionKey string, staleBefore time.Time, from ...signfy.SessionStatus) (bool, error) {
	sr.logger.Debugf("Begin submission for signing session %s from status: %v \n", sessionID, from)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Model(&model.SigningSession{}).
		Where("id = ? AND (status IN ? OR (status = ? AND updated_at < ?))", sessionID, from, signfy.StatusSubmitting, staleBefore).
		Updates(map[string]any{
			"status":         signfy.StatusSubmitting,
			"submission_key": submissionKey,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// MarkApplied records that the backend accepted the session's signature, so a request
// that dies before the signed file is fetched never leads to a second submission.
func (sr SigningSessionRepository) MarkApplied(ctx context.Context, tx *gorm.DB, session *model.SigningSession) error {
	sr.logger.Debugf("Mark signing session %s as applied \n", session.ID)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	now := time.Now()
	if err := db.WithContext(ctx).Model(&model.SigningSession{}).
		Where("id = ?", session.ID).
		Update("applied_at", now).Error; err != nil {
		return err
	}

	session.AppliedAt = &now
	return nil
}

// AttachSignedFile records the archived signed copy and links it to the session.
func (sr SigningSessionRepository) AttachSignedFile(ctx context.Context, tx *gorm.DB, session *model.SigningSession, file *model.File) error {
	sr.logger.Debugf("Attach signed file %s to signing session %s \n", file.FileName, session.ID)

	return sr.withTx(sr.getDB(tx), func(tx *gorm.DB) error {
		if _, err := sr.file.Create(ctx, tx, file); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
		defer cancel()

		if err := tx.WithContext(ctx).Model(&model.SigningSession{}).
			Where("id = ?", session.ID).
			Update("signed_file_id", file.ID).Error; err != nil {
			return err
		}

		session.SignedFileID = &file.ID
		session.SignedFile = file
		return nil
	})
}
