package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/infrastructure/buffer"
	"github.com/fastygo/eventhub/usecase"
)

// ActivityBridge hands ledger writes to the buffer processor, which stores them
// directly when possible and spools them otherwise.
type ActivityBridge struct {
	processor *BufferProcessor
}

func NewActivityBridge(processor *BufferProcessor) *ActivityBridge {
	return &ActivityBridge{processor: processor}
}

func (b *ActivityBridge) Record(ctx context.Context, activity domain.Activity) error {
	if b.processor == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        activity.ID,
		EventID:   activity.EventID,
		Entity:    buffer.EntityActivity,
		Operation: buffer.OperationAppend,
		Data:      payload,
		Priority:  priorityFor(activity.Action),
		Timestamp: activity.CreatedAt,
	}
	return b.processor.Submit(ctx, item)
}

// Registration changes drain ahead of event edits.
func priorityFor(action string) int {
	switch action {
	case domain.ActionRegistrationAdded, domain.ActionRegistrationRemoved:
		return buffer.PriorityHigh
	default:
		return buffer.PriorityLow
	}
}

var _ usecase.ActivityRecorder = (*ActivityBridge)(nil)
