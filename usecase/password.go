package usecase

import (
	"errors"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/pkg/password"
)

// HashPassword hashes plain, reporting out-of-range lengths as validation errors.
func HashPassword(plain string) (string, error) {
	hashed, err := password.Hash(plain)
	switch {
	case errors.Is(err, password.ErrTooShort):
		return "", domain.ValidationError("password must be at least %d characters", password.MinLength)
	case errors.Is(err, password.ErrTooLong):
		return "", domain.ValidationError("password must be at most %d bytes", password.MaxLength)
	}
	return hashed, err
}
