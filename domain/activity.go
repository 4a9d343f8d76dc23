package domain

import "time"

// Activity actions recorded in the registration ledger.
const (
	ActionEventCreated        = "event.created"
	ActionEventUpdated        = "event.updated"
	ActionEventDeleted        = "event.deleted"
	ActionRegistrationAdded   = "registration.added"
	ActionRegistrationRemoved = "registration.removed"
)

// Activity represents a change applied to an event, kept as an append-only ledger.
type Activity struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId,omitempty"`
	ActorID   string    `json:"actorId"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}
