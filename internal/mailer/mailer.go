// Package mailer sends outbound report email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"io"

	"campus_care_backend/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Attachment is an in-memory file sent with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To          []string
	Cc          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer delivers messages. sent is false when delivery was skipped.
type Mailer interface {
	Send(ctx context.Context, msg Message) (sent bool, err error)
}

// Sender abstracts the SMTP dial so tests can capture messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends through gomail. Without credentials it logs and skips.
type SMTPMailer struct {
	from   string
	sender Sender
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer from the SMTP configuration.
func NewSMTPMailer(cfg *config.Config, logger *zap.Logger) *SMTPMailer {
	m := &SMTPMailer{
		from:   cfg.SMTPFrom,
		logger: logger.Named("Mailer"),
	}
	if cfg.SMTPConfigured() {
		m.sender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	return m
}

// NewMailerWithSender is used by tests and by callers that manage their own transport.
func NewMailerWithSender(from string, sender Sender, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{from: from, sender: sender, logger: logger.Named("Mailer")}
}

var _ Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (bool, error) {
	if m.sender == nil {
		m.logger.Warn("SMTP credentials missing, email dispatch skipped",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return false, nil
	}
	if len(msg.To) == 0 {
		return false, fmt.Errorf("email %q has no recipients", msg.Subject)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		gm.SetHeader("Cc", msg.Cc...)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)
	for _, a := range msg.Attachments {
		data := a.Data
		gm.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	if err := m.sender.DialAndSend(gm); err != nil {
		m.logger.Error("Failed to send email", zap.Error(err), zap.String("subject", msg.Subject))
		return false, fmt.Errorf("sending %q: %w", msg.Subject, err)
	}
	m.logger.Info("Email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return true, nil
}
