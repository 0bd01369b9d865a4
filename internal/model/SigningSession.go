package model

import (
	"time"

	"github.com/SeakMengs/Signfy/pkg/signfy"
)

// SigningSession persists one user's signature session on one backend document.
type SigningSession struct {
	BaseModel
	UserID     string  `gorm:"type:text;not null;uniqueIndex:idx_signing_session_user_document" json:"userId"`
	DocumentID string  `gorm:"type:text;not null;uniqueIndex:idx_signing_session_user_document" json:"documentId"`
	FileURL    string  `gorm:"type:text;not null" json:"fileUrl"`
	PageCount  uint    `gorm:"not null;default:1" json:"pageCount"`
	PageWidth  float64 `gorm:"not null" json:"pageWidth"`
	PageHeight float64 `gorm:"not null" json:"pageHeight"`

	Status signfy.SessionStatus `gorm:"type:text;not null;default:idle;index" json:"status"`

	// Draft, empty name means no draft
	Name     string               `gorm:"type:text;default:null" json:"name"`
	Initials string               `gorm:"type:text;default:null" json:"initials"`
	Font     signfy.SignatureFont `gorm:"type:text;default:null" json:"font"`
	FontSize int                  `gorm:"default:0" json:"fontSize"`
	PosX     float64              `gorm:"default:0" json:"posX"`
	PosY     float64              `gorm:"default:0" json:"posY"`

	HasPlacement bool `gorm:"not null;default:false" json:"hasPlacement"`
	X            int  `gorm:"default:0" json:"x"`
	Y            int  `gorm:"default:0" json:"y"`
	Page         uint `gorm:"default:0" json:"page"`

	// Sent as Idempotency-Key so a replayed submission is recognised by the backend
	SubmissionKey string `gorm:"type:text;default:null" json:"-"`
	// Set once the backend accepted the current draft; such a row is never submitted again
	AppliedAt *time.Time `gorm:"type:timestamptz;default:null" json:"-"`

	SignedURL      string  `gorm:"type:text;default:null" json:"signedUrl"`
	SignedFileName string  `gorm:"type:text;default:null" json:"signedFileName"`
	SignedFileID   *string `gorm:"type:text;default:null" json:"-"`

	SignedFile *File `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (s SigningSession) TableName() string {
	return "signing_sessions"
}

func (s SigningSession) ToSession() *signfy.Session {
	session := signfy.NewSession(s.DocumentID, signfy.Size{Width: s.PageWidth, Height: s.PageHeight}, s.PageCount)
	if s.Status != "" {
		session.Status = s.Status
	}

	if s.Name != "" {
		session.Draft = &signfy.Draft{
			Name:     s.Name,
			Initials: s.Initials,
			Font:     s.Font,
			FontSize: s.FontSize,
			Position: signfy.Point{X: s.PosX, Y: s.PosY},
		}
	}

	if s.HasPlacement {
		session.Placement = &signfy.Placement{X: s.X, Y: s.Y, Page: s.Page}
	}

	if s.SignedURL != "" {
		session.Signed = &signfy.SignedFile{URL: s.SignedURL, FileName: s.SignedFileName}
	}

	return session
}

// FromSession copies the mutable session state back onto the row.
func (s *SigningSession) FromSession(session *signfy.Session) {
	s.Status = session.Status

	s.Name, s.Initials, s.Font, s.FontSize, s.PosX, s.PosY = "", "", "", 0, 0, 0
	if d := session.Draft; d != nil {
		s.Name = d.Name
		s.Initials = d.Initials
		s.Font = d.Font
		s.FontSize = d.FontSize
		s.PosX = d.Position.X
		s.PosY = d.Position.Y
	}

	s.HasPlacement, s.X, s.Y, s.Page = false, 0, 0, 0
	if p := session.Placement; p != nil {
		s.HasPlacement = true
		s.X = p.X
		s.Y = p.Y
		s.Page = p.Page
	}

	if f := session.Signed; f != nil {
		s.SignedURL = f.URL
		s.SignedFileName = f.FileName
	}
}

// ResetSubmission forgets the previous submission when a new draft is started.
func (s *SigningSession) ResetSubmission() {
	s.SubmissionKey = ""
	s.AppliedAt = nil
}

// DragKey identifies the in-memory drag of this session.
func (s SigningSession) DragKey() string {
	return s.ID
}
