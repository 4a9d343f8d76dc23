package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
)

// ActivityRecorder abstracts the registration ledger so use cases stay storage-agnostic.
type ActivityRecorder interface {
	Record(ctx context.Context, activity domain.Activity) error
}

// RecordActivity appends to the ledger. Failures are logged and never returned:
// the mutation that produced the activity has already been committed.
func RecordActivity(ctx context.Context, recorder ActivityRecorder, logger *zap.Logger, activity domain.Activity) {
	if recorder == nil {
		return
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if err := recorder.Record(ctx, activity); err != nil {
		logger.Error("failed to record activity",
			zap.String("action", activity.Action),
			zap.String("event_id", activity.EventID),
			zap.Error(err))
	}
}
