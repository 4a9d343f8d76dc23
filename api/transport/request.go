package transport

import "github.com/fastygo/eventhub/domain"

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type IdentityLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type EventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Category    string `json:"category" validate:"required,oneof=Technology Workshop Conference Seminar Networking"`
	Image       string `json:"image" validate:"required"`
	Organizer   string `json:"organizer" validate:"required"`
	Capacity    int    `json:"capacity" validate:"required,min=1"`
}

func (r EventRequest) ToDomain() *domain.Event {
	return &domain.Event{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Location:    r.Location,
		Category:    domain.Category(r.Category),
		Image:       r.Image,
		Organizer:   r.Organizer,
		Capacity:    r.Capacity,
	}
}

// EventPatchRequest carries a partial update. Registrants cannot be patched.
type EventPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Category    *string `json:"category" validate:"omitempty,oneof=Technology Workshop Conference Seminar Networking"`
	Image       *string `json:"image"`
	Organizer   *string `json:"organizer"`
	Capacity    *int    `json:"capacity" validate:"omitempty,min=1"`
}

func (r EventPatchRequest) ToDomain() domain.EventPatch {
	patch := domain.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Location:    r.Location,
		Image:       r.Image,
		Organizer:   r.Organizer,
		Capacity:    r.Capacity,
	}
	if r.Category != nil {
		category := domain.Category(*r.Category)
		patch.Category = &category
	}
	return patch
}

type ProfileUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

func (r ProfileUpdateRequest) ToDomain() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Email: r.Email, Password: r.Password}
}

// Page is the pagination block returned in the envelope meta.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}
