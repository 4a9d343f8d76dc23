package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the two supported roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an authenticated identity in the platform.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Principal returns the request identity derived from the user record.
func (u *User) Principal() Principal {
	if u == nil {
		return Principal{}
	}
	return Principal{UserID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

// NormalizeEmail lower-cases and trims an address so uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserPatch carries the profile fields a user may change. Nil fields are left untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// ExternalIdentity is the verified subject of an identity-provider login.
type ExternalIdentity struct {
	Email         string
	Name          string
	EmailVerified bool
}
