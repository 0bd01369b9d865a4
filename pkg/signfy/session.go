package signfy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrEmptyName              = errors.New("please enter your full name")
	ErrSignatureAlreadyPlaced = errors.New("signature already placed")
	ErrFontSizeOutOfRange     = fmt.Errorf("font size must be between %d and %d", MinFontSize, MaxFontSize)
	ErrNoDraft                = errors.New("please create and place your signature first")
	ErrNoPlacement            = errors.New("please drag and place your signature before confirming")
	ErrInvalidPage            = errors.New("page is out of range")
	ErrSubmissionInFlight     = errors.New("a signature submission is already in progress")
	ErrNothingToRetry         = errors.New("no applied signature is waiting for its signed file")
)

// DraftOrigin is where a new draft label appears inside its container, in pixels.
var DraftOrigin = Point{X: 10, Y: 10}

type Draft struct {
	Name     string        `json:"name"`
	Initials string        `json:"initials"`
	Font     SignatureFont `json:"font"`
	FontSize int           `json:"fontSize"`
	// Label top-left inside the container, in pixels
	Position Point `json:"position"`
}

// Initials takes the first letter of every whitespace separated word, upper-cased.
// "Jane Doe" gives "JD".
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func ValidFontSize(size int) bool {
	return size >= MinFontSize && size <= MaxFontSize
}

type SessionStatus string

const (
	StatusIdle     SessionStatus = "idle"
	StatusDrafting SessionStatus = "drafting"
	// Confirm is talking to the signing backend
	StatusSubmitting SessionStatus = "submitting"
	// The backend accepted the signature but the signed file is not known yet
	StatusApplyPending SessionStatus = "apply_pending"
	StatusSigned       SessionStatus = "signed"
)

type SignatureSubmission struct {
	DocumentID string        `json:"documentId"`
	X          int           `json:"x"`
	Y          int           `json:"y"`
	Page       uint          `json:"page"`
	Name       string        `json:"name"`
	Font       SignatureFont `json:"font"`
	FontSize   int           `json:"fontSize"`
}

type SignedFile struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// Submitter applies a confirmed signature on the signing backend.
type Submitter interface {
	SubmitSignature(ctx context.Context, s SignatureSubmission) error
	FetchSignedFile(ctx context.Context, documentID string) (SignedFile, error)
}

// SignedFileError means the signature was applied but fetching the signed file failed.
// The session stays recoverable: a retry only fetches the file again.
type SignedFileError struct {
	DocumentID string
	Err        error
}

func (e *SignedFileError) Error() string {
	return fmt.Sprintf("signature applied to document %s but the signed file is unavailable: %v", e.DocumentID, e.Err)
}

func (e *SignedFileError) Unwrap() error {
	return e.Err
}

// Session is the signing state of one document: at most one active draft, its
// placement, and the signed result once confirmed.
type Session struct {
	DocumentID string
	PageSize   Size
	PageCount  uint
	Status     SessionStatus
	Draft      *Draft
	Placement  *Placement
	Signed     *SignedFile
}

func NewSession(documentID string, pageSize Size, pageCount uint) *Session {
	return &Session{
		DocumentID: documentID,
		PageSize:   pageSize,
		PageCount:  pageCount,
		Status:     StatusIdle,
	}
}

func (s *Session) Place(name string, font SignatureFont, fontSize int) (*Draft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if s.Draft != nil {
		return nil, ErrSignatureAlreadyPlaced
	}
	if !font.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFont, font)
	}
	if !ValidFontSize(fontSize) {
		return nil, ErrFontSizeOutOfRange
	}

	s.Draft = &Draft{
		Name:     name,
		Initials: Initials(name),
		Font:     font,
		FontSize: fontSize,
		Position: DraftOrigin,
	}
	s.Placement = nil
	s.Status = StatusDrafting

	return s.Draft, nil
}

func (s *Session) Resize(fontSize int) error {
	if s.Draft == nil {
		return ErrNoDraft
	}
	if !ValidFontSize(fontSize) {
		return ErrFontSizeOutOfRange
	}
	s.Draft.FontSize = fontSize
	return nil
}

// Mapper returns a coordinate mapper for this session's page geometry.
func (s *Session) Mapper(surface PageSurface) *Mapper {
	page := s.PageSize
	if !page.validPage() {
		page = DefaultPageSize
	}
	return NewMapper(surface, page)
}

func (s *Session) RecordPlacement(p Placement) error {
	if s.Draft == nil {
		return ErrNoDraft
	}
	if p.Page < 1 || (s.PageCount > 0 && p.Page > s.PageCount) {
		return fmt.Errorf("%w: page %d of %d", ErrInvalidPage, p.Page, s.PageCount)
	}
	s.Placement = &p
	return nil
}

func (s *Session) Submission() (SignatureSubmission, error) {
	if s.Draft == nil {
		return SignatureSubmission{}, ErrNoDraft
	}
	if s.Placement == nil {
		return SignatureSubmission{}, ErrNoPlacement
	}

	fontSize := s.Draft.FontSize
	if fontSize == 0 {
		fontSize = DefaultFontSize
	}

	return SignatureSubmission{
		DocumentID: s.DocumentID,
		X:          s.Placement.X,
		Y:          s.Placement.Y,
		Page:       s.Placement.Page,
		Name:       s.Draft.Name,
		Font:       s.Draft.Font,
		FontSize:   fontSize,
	}, nil
}

// Confirm submits the draft and fetches the signed file. On success the draft is
// cleared so a new signature may be started. If the submission fails the session is
// left as it was. If only the signed-file fetch fails the session moves to
// StatusApplyPending and a *SignedFileError is returned.
func (s *Session) Confirm(ctx context.Context, sub Submitter) (SignedFile, error) {
	switch s.Status {
	case StatusSubmitting:
		return SignedFile{}, ErrSubmissionInFlight
	case StatusApplyPending:
		return s.RetrySignedFile(ctx, sub)
	}

	submission, err := s.Submission()
	if err != nil {
		return SignedFile{}, err
	}

	prev := s.Status
	s.Status = StatusSubmitting
	if err := sub.SubmitSignature(ctx, submission); err != nil {
		s.Status = prev
		return SignedFile{}, fmt.Errorf("failed to apply signature: %w", err)
	}

	s.Status = StatusApplyPending
	return s.RetrySignedFile(ctx, sub)
}

func (s *Session) RetrySignedFile(ctx context.Context, sub Submitter) (SignedFile, error) {
	if s.Status != StatusApplyPending {
		return SignedFile{}, ErrNothingToRetry
	}

	s.Status = StatusSubmitting
	signed, err := sub.FetchSignedFile(ctx, s.DocumentID)
	if err != nil {
		s.Status = StatusApplyPending
		return SignedFile{}, &SignedFileError{DocumentID: s.DocumentID, Err: err}
	}

	s.Signed = &signed
	s.Draft = nil
	s.Placement = nil
	s.Status = StatusSigned

	return signed, nil
}
