package repository

import (
	"context"

	"github.com/fastygo/eventhub/domain"
)

type EventFilter struct {
	// Category restricts results to one category; empty or "All" disables the filter.
	Category string
	// Search is matched case-insensitively as a substring of title, description or location.
	Search string
	// RegisteredUser restricts results to events holding a registration for this user.
	RegisteredUser string
	Limit          int
	Offset         int
}

// EventRepository owns event records. The registrant set is only mutated through
// AddRegistrant and RemoveRegistrant, which must be atomic per event.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error

	// AddRegistrant appends userID unless it is already present or the event is full.
	// Returns ErrEventNotFound, ErrAlreadyRegistered or ErrEventFull without mutating.
	AddRegistrant(ctx context.Context, eventID, userID string) (*domain.Event, error)
	// RemoveRegistrant drops userID if present and reports whether the set changed.
	// Removing an absent user is not an error.
	RemoveRegistrant(ctx context.Context, eventID, userID string) (*domain.Event, bool, error)
}

// CategoryFilterActive reports whether the category filter should be applied.
func (f EventFilter) CategoryFilterActive() bool {
	return f.Category != "" && f.Category != "All"
}
