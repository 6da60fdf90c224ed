package mailer

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/cornerstone-fellowship/backend/config"
)

// SMTPSender delivers mail over SMTP (the Gmail app-password setup in the
// deployed configuration). Port 465 uses implicit TLS.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if cfg.SMTPPort == 465 {
		d.SSL = true
	}
	return &SMTPSender{dialer: d, from: cfg.FromAddress, fromName: cfg.FromName}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	for _, inline := range msg.Inlines {
		data := inline.Data
		m.Embed(inline.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {inline.ContentType}}),
		)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
