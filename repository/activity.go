package repository

import (
	"context"

	"github.com/fastygo/eventhub/domain"
)

type ActivityFilter struct {
	EventID string
	UserID  string
	Limit   int
	Offset  int
}

type ActivityRepository interface {
	Append(ctx context.Context, activity domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}

// ClampLimit bounds page sizes shared by every repository implementation.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
