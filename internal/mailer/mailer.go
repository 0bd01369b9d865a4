package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/SeakMengs/Signfy/internal/config"
	"go.uber.org/zap"
)

const (
	MAX_RETRY                = 3
	SIGNED_DOCUMENT_TEMPLATE = "signed_document.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, toUsername, toEmail string, data any) (int, error)
}

// SignedDocumentData fills templates/signed_document.tmpl.
type SignedDocumentData struct {
	Username   string
	SenderName string
	FileName   string
	FileURL    string
	Message    string
}

// New picks the driver named by cfg.DRIVER, sendgrid unless "gmail" is asked for.
func New(cfg config.MailConfig, isProduction bool, logger *zap.SugaredLogger) Client {
	if strings.EqualFold(cfg.DRIVER, "gmail") {
		return NewGmailMailer(cfg.GMAIL.USERNAME, cfg.GMAIL.PASSWORD, logger)
	}
	return NewSendgrid(cfg.SEND_GRID.API_KEY, cfg.FROM_EMAIL, isProduction, logger)
}

// render executes the "subject" and "body" blocks of a template under templates/.
func render(templateFile string, data any) (string, string, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", err
	}

	return strings.TrimSpace(subject.String()), body.String(), nil
}
