package domain

import (
	"net/mail"
	"strings"

	"idcore/api/internal/apperr"
)

// Email is a normalized, validated address. The zero value is invalid;
// construct through NewEmail only.
type Email struct {
	value string
}

const maxEmailLength = 255

// NewEmail trims and lower-cases raw and validates it as an address.
// Equality between two Emails is case-insensitive by construction.
func NewEmail(raw string) (Email, error) {
	value := strings.ToLower(strings.TrimSpace(raw))

	if value == "" {
		return Email{}, apperr.Validation("Email cannot be empty")
	}
	if len(value) > maxEmailLength {
		return Email{}, apperr.Validationf("Email must be %d characters or less", maxEmailLength)
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return Email{}, apperr.Validation("Invalid email format")
	}

	return Email{value: value}, nil
}

// EmailFromStorage wraps an already-normalized address loaded from the
// database without re-validating it.
func EmailFromStorage(value string) Email {
	return Email{value: value}
}

func (e Email) String() string { return e.value }

func (e Email) IsZero() bool { return e.value == "" }
