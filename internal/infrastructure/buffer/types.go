package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityActivity = "activity"

	OperationAppend = "append"
)

// Priorities range from 1 (drained first) to 5.
const (
	PriorityHigh    = 2
	PriorityDefault = 3
	PriorityLow     = 4
)

// Item is a ledger write waiting to be replayed against primary storage.
type Item struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < 1 || i.Priority > 5 {
		i.Priority = PriorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
