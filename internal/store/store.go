// Package store provides row-store access to registration records.
//
// The system of record is a header-less spreadsheet with a fixed column
// order; the positional mapping is isolated in schema.go so nothing outside
// this package touches raw column indices. Postgres and in-memory
// implementations sit behind the same contract.
package store

import (
	"context"
	"errors"

	"github.com/cornerstone-fellowship/backend/internal/models"
)

// ErrNotFound is returned by Get when no row matches the email.
var ErrNotFound = errors.New("registration not found")

// RowStore is the adapter contract for the registration row store.
// Lookup is by normalized (case-insensitive) email; Save is a whole-row
// upsert that either fully succeeds or leaves the record unchanged.
type RowStore interface {
	Get(ctx context.Context, email string) (*models.Registration, error)
	Save(ctx context.Context, reg *models.Registration) error
	SystemOpen(ctx context.Context) (bool, error)
	MessageTemplate(ctx context.Context) (string, error)
	LogDeliveryFailure(ctx context.Context, f models.DeliveryFailure) error
}
