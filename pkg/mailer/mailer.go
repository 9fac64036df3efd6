// Package mailer sends best-effort notification emails over SMTP. Nothing
// here returns an error: failures are logged and swallowed so a broken mail
// path can never affect the webhook response.
package mailer

import (
	"bytes"
	"context"

	mail "github.com/wneessen/go-mail"

	"github.com/oguzkose/sms-notes-service/environments"
	"github.com/oguzkose/sms-notes-service/pkg/logger"
)

type Mailer struct {
	cfg environments.NotifyConfig
}

func New(cfg environments.NotifyConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers a notification to the configured address, which is also used
// as sender. Reports whether a message was handed to the SMTP server; a
// missing recipient is a logged no-op, not a failure.
func (m *Mailer) Send(ctx context.Context, subject, body string, attachment []byte, filename string) bool {
	if m.cfg.Email == "" || m.cfg.SMTPHost == "" {
		logger.Infof("Notification email not configured, skipping notification")
		return false
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Email); err != nil {
		logger.Errorf("Failed to set notification sender: %v", err)
		return false
	}
	if err := msg.To(m.cfg.Email); err != nil {
		logger.Errorf("Failed to set notification recipient: %v", err)
		return false
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if len(attachment) > 0 {
		if filename == "" {
			filename = "attachment.txt"
		}
		if err := msg.AttachReader(filename, bytes.NewReader(attachment)); err != nil {
			logger.Errorf("Failed to attach %s: %v", filename, err)
			return false
		}
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.SMTPUsername),
			mail.WithPassword(m.cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		logger.Errorf("Failed to create SMTP client: %v", err)
		return false
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		logger.Errorf("Failed to send notification: %v", err)
		return false
	}

	logger.Infof("Email sent: %.50s", subject)

	return true
}
