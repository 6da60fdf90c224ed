package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

// QRHost stores a rendered QR image and returns a fetchable URL for it.
// Senders that cannot embed inline images use it instead of a cid reference.
type QRHost interface {
	PutQR(ctx context.Context, email string, png []byte) (string, error)
}

const qrInlineName = "checkin-qr.png"

// Service builds and sends the outbound emails: OTP codes and registration
// confirmations with the check-in QR code.
type Service struct {
	sender Sender
	qrHost QRHost // nil means embed the QR inline
	logger *zap.Logger
}

func NewService(sender Sender, qrHost QRHost, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sender: sender, qrHost: qrHost, logger: logger}
}

// SendCode emails a one-time verification code.
func (s *Service) SendCode(ctx context.Context, email, code string) error {
	msg := Message{
		To:       email,
		Subject:  "Your verification code",
		TextBody: fmt.Sprintf("Your verification code is %s. It expires shortly, so enter it right away.", code),
		HTMLBody: fmt.Sprintf(
			"<p>Your verification code is:</p><h2 style=\"letter-spacing:4px\">%s</h2><p>It expires shortly, so enter it right away.</p>",
			code),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// SendConfirmation emails the registration summary with the check-in QR code.
// The token is rendered as a QR image and either embedded inline or uploaded
// to the QR host, depending on how the service was built.
func (s *Service) SendConfirmation(ctx context.Context, reg *models.Registration, created bool, token, intro string) error {
	png, err := RenderQR(token)
	if err != nil {
		return err
	}

	qrSrc := "cid:" + qrInlineName
	var inlines []Inline
	if s.qrHost != nil {
		url, err := s.qrHost.PutQR(ctx, reg.Email, png)
		if err != nil {
			return fmt.Errorf("host qr image: %w", err)
		}
		qrSrc = url
	} else {
		inlines = []Inline{{Name: qrInlineName, ContentType: "image/png", Data: png}}
	}

	data := BuildConfirmationData(reg, created, qrSrc, intro)

	htmlBody, err := renderConfirmationHTML(data)
	if err != nil {
		return err
	}
	textBody, err := renderConfirmationText(data)
	if err != nil {
		return err
	}

	msg := Message{
		To:       reg.Email,
		Subject:  ConfirmationSubject(data.Mode),
		HTMLBody: htmlBody,
		TextBody: textBody,
		Inlines:  inlines,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	s.logger.Info("confirmation email sent",
		zap.String("email", reg.Email),
		zap.String("mode", data.Mode))
	return nil
}
