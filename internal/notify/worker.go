package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cornerstone-fellowship/backend/internal/models"
	"github.com/cornerstone-fellowship/backend/internal/store"
)

// Worker drains the confirmation queue: dequeue, deliver, retry on error.
type Worker struct {
	queue     *Queue
	deliverer *Deliverer
	rows      store.RowStore
	logger    *zap.Logger
}

func NewWorker(queue *Queue, deliverer *Deliverer, rows store.RowStore, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{queue: queue, deliverer: deliverer, rows: rows, logger: logger}
}

// Run processes jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("confirmation worker stopping")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("confirmation worker stopping")
				return
			}
			w.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		w.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("email", job.Email))
		if err := w.deliverer.Deliver(ctx, job.Email, job.Created); err != nil {
			w.logger.Error("confirmation delivery failed",
				zap.String("job_id", job.ID),
				zap.String("email", job.Email),
				zap.Error(err))
			if job.Attempt+1 >= MaxRetries {
				w.logFailure(ctx, job.Email, err)
			}
			if reErr := w.queue.Retry(ctx, job); reErr != nil {
				w.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(RetryBackoff)
			continue
		}
	}
}

// logFailure records the permanent delivery failure in the row store so
// operators can follow up manually.
func (w *Worker) logFailure(ctx context.Context, email string, cause error) {
	f := models.DeliveryFailure{
		Email:        email,
		FailedAt:     time.Now(),
		ErrorMessage: cause.Error(),
	}
	if err := w.rows.LogDeliveryFailure(ctx, f); err != nil {
		w.logger.Error("failed to record delivery failure", zap.String("email", email), zap.Error(err))
	}
}
