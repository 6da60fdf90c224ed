package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

// Dispatcher hands off a confirmation for delivery after a registration is
// saved. Delivery trouble must never fail the registration itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, email string, created bool)
}

// directDeliveryTimeout bounds a single in-process delivery attempt.
const directDeliveryTimeout = 60 * time.Second

// DirectDispatcher delivers on a goroutine, for deployments without Redis.
type DirectDispatcher struct {
	deliverer *Deliverer
	rows      store.RowStore
	logger    *zap.Logger
}

func NewDirectDispatcher(deliverer *Deliverer, rows store.RowStore, logger *zap.Logger) *DirectDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectDispatcher{deliverer: deliverer, rows: rows, logger: logger}
}

// Dispatch sends the confirmation in the background. The request context may
// end before delivery finishes, so the goroutine runs on its own context.
func (d *DirectDispatcher) Dispatch(_ context.Context, email string, created bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), directDeliveryTimeout)
		defer cancel()

		if err := d.deliverer.Deliver(ctx, email, created); err != nil {
			d.logger.Error("confirmation delivery failed", zap.String("email", email), zap.Error(err))
			f := models.DeliveryFailure{
				Email:        email,
				FailedAt:     time.Now(),
				ErrorMessage: err.Error(),
			}
			if logErr := d.rows.LogDeliveryFailure(ctx, f); logErr != nil {
				d.logger.Error("failed to record delivery failure", zap.String("email", email), zap.Error(logErr))
			}
		}
	}()
}

// QueueDispatcher enqueues a confirmation job for the worker to deliver.
type QueueDispatcher struct {
	queue  *Queue
	rows   store.RowStore
	logger *zap.Logger
}

func NewQueueDispatcher(queue *Queue, rows store.RowStore, logger *zap.Logger) *QueueDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueDispatcher{queue: queue, rows: rows, logger: logger}
}

// Dispatch pushes the job. If even the enqueue fails the confirmation will
// never go out, so that is recorded as a delivery failure too.
func (d *QueueDispatcher) Dispatch(ctx context.Context, email string, created bool) {
	if err := d.queue.Enqueue(ctx, email, created); err != nil {
		d.logger.Error("confirmation enqueue failed", zap.String("email", email), zap.Error(err))
		f := models.DeliveryFailure{
			Email:        email,
			FailedAt:     time.Now(),
			ErrorMessage: "enqueue: " + err.Error(),
		}
		if logErr := d.rows.LogDeliveryFailure(ctx, f); logErr != nil {
			d.logger.Error("failed to record delivery failure", zap.String("email", email), zap.Error(logErr))
		}
	}
}
