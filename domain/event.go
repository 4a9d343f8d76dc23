package domain

import (
	"strings"
	"time"
)

// Category is the fixed classification of an event.
type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryWorkshop   Category = "Workshop"
	CategoryConference Category = "Conference"
	CategorySeminar    Category = "Seminar"
	CategoryNetworking Category = "Networking"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryTechnology,
	CategoryWorkshop,
	CategoryConference,
	CategorySeminar,
	CategoryNetworking,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Event represents a capacity-limited happening users can register for.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Location        string    `json:"location"`
	Category        Category  `json:"category"`
	Image           string    `json:"image"`
	Organizer       string    `json:"organizer"`
	Capacity        int       `json:"capacity"`
	RegisteredUsers []string  `json:"registeredUsers"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsRegistered reports whether userID holds a registration.
func (e *Event) IsRegistered(userID string) bool {
	if e == nil {
		return false
	}
	for _, id := range e.RegisteredUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether no seat is left for a new registration.
func (e *Event) IsFull() bool {
	return e != nil && len(e.RegisteredUsers) >= e.Capacity
}

// Remaining returns the number of free seats, never negative.
func (e *Event) Remaining() int {
	if e == nil || len(e.RegisteredUsers) >= e.Capacity {
		return 0
	}
	return e.Capacity - len(e.RegisteredUsers)
}

// Touch refreshes UpdatedAt and seeds CreatedAt on first save.
func (e *Event) Touch(now time.Time) {
	if e == nil {
		return
	}
	e.UpdatedAt = now
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}

// EventPatch holds the admin-editable fields of an event. The registrant set
// only changes through registration.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *string
	Time        *string
	Location    *string
	Category    *Category
	Image       *string
	Organizer   *string
	Capacity    *int
}

// Validate checks the values present in the patch.
func (p EventPatch) Validate() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", p.Title},
		{"description", p.Description},
		{"date", p.Date},
		{"time", p.Time},
		{"location", p.Location},
		{"image", p.Image},
		{"organizer", p.Organizer},
	}
	for _, field := range fields {
		if field.value != nil && strings.TrimSpace(*field.value) == "" {
			return ValidationError("%s must not be empty", field.name)
		}
	}
	if p.Category != nil && !p.Category.Valid() {
		return ValidationError("unknown category %q", *p.Category)
	}
	if p.Capacity != nil && *p.Capacity < 1 {
		return ValidationError("capacity must be at least 1")
	}
	return nil
}

// Apply copies the patch onto the event.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
}

// ValidateEvent checks the required fields of a new event.
func ValidateEvent(e *Event) error {
	if e == nil {
		return ErrInvalidPayload
	}
	required := []struct {
		name  string
		value string
	}{
		{"title", e.Title},
		{"description", e.Description},
		{"date", e.Date},
		{"time", e.Time},
		{"location", e.Location},
		{"category", string(e.Category)},
		{"image", e.Image},
		{"organizer", e.Organizer},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return ValidationError("%s is required", field.name)
		}
	}
	if !e.Category.Valid() {
		return ValidationError("unknown category %q", e.Category)
	}
	if e.Capacity < 1 {
		return ValidationError("capacity must be at least 1")
	}
	return nil
}
