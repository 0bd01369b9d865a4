package mailer

import (
	"fmt"
	"net/http"

	"github.com/SeakMengs/Signfy/internal/util"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type GmailMailer struct {
	fromEmail string
	fromName  string
	host      string
	port      int
	username  string
	password  string
	logger    *zap.SugaredLogger
}

func NewGmailMailer(username, password string, logger *zap.SugaredLogger) *GmailMailer {
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &GmailMailer{
		fromEmail: username,
		fromName:  util.GetAppName(),
		host:      "smtp.gmail.com",
		port:      587,
		username:  username,
		password:  password,
		logger:    logger,
	}
}

func (gm *GmailMailer) message(templateFile, toUsername, toEmail string, data any) (*gomail.Message, error) {
	subject, body, err := render(templateFile, data)
	if err != nil {
		return nil, err
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", gm.fromEmail, gm.fromName)
	message.SetAddressHeader("To", toEmail, toUsername)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", body)
	return message, nil
}

func (gm *GmailMailer) Send(templateFile, toUsername, toEmail string, data any) (int, error) {
	message, err := gm.message(templateFile, toUsername, toEmail, data)
	if err != nil {
		gm.logger.Errorw("failed to render email template", "error", err, "templateFile", templateFile)
		return http.StatusInternalServerError, err
	}

	dialer := gomail.NewDialer(gm.host, gm.port, gm.username, gm.password)
	if err := dialer.DialAndSend(message); err != nil {
		gm.logger.Errorw("failed to send email", "error", err, "toEmail", toEmail, "templateFile", templateFile)
		return http.StatusInternalServerError, fmt.Errorf("failed to send email: %w", err)
	}

	gm.logger.Infow("email sent successfully", "toEmail", toEmail, "templateFile", templateFile)

	return http.StatusOK, nil
}
