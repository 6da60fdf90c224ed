package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

// ConfirmationSender sends a registration confirmation email.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, reg *models.Registration, created bool, token, intro string) error
}

// TokenEncoder produces the encrypted check-in token for an email address.
type TokenEncoder interface {
	Encode(email string) (string, error)
}

// Deliverer assembles and sends one confirmation email: it reads the current
// record, encodes the check-in token, and picks up the optional intro text
// from the row store.
type Deliverer struct {
	rows   store.RowStore
	codec  TokenEncoder
	sender ConfirmationSender
	logger *zap.Logger
}

func NewDeliverer(rows store.RowStore, codec TokenEncoder, sender ConfirmationSender, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{rows: rows, codec: codec, sender: sender, logger: logger}
}

// Deliver sends the confirmation for the email's current record. The record
// is re-read at send time so a queued job always mails the latest details.
func (d *Deliverer) Deliver(ctx context.Context, email string, created bool) error {
	reg, err := d.rows.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("load registration: %w", err)
	}

	token, err := d.codec.Encode(reg.Email)
	if err != nil {
		return fmt.Errorf("encode check-in token: %w", err)
	}

	intro, err := d.rows.MessageTemplate(ctx)
	if err != nil {
		d.logger.Warn("message template unavailable, sending without intro", zap.Error(err))
		intro = ""
	}

	return d.sender.SendConfirmation(ctx, reg, created, token, intro)
}
