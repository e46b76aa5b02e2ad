package domain

import (
	"strings"
	"time"

	"idcore/api/internal/apperr"
	"idcore/api/internal/ids"
)

const (
	maxNameLength = 255
	maxBioLength  = 500
)

// User is the identity aggregate. New users start unverified and
// active; they are never physically deleted outside an explicit
// administrative operation.
type User struct {
	ID            string
	Email         Email
	PasswordHash  PasswordHash
	Name          string
	Bio           *string
	AvatarURL     *string
	EmailVerified bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewUser validates the name, hashes the password, and returns a fresh
// user with EmailVerified=false and IsActive=true.
func NewUser(email Email, plainPassword string, name string) (*User, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	hash, err := NewPasswordHash(plainPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		ID:            ids.New(),
		Email:         email,
		PasswordHash:  hash,
		Name:          name,
		EmailVerified: false,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Name cannot be empty")
	}
	if len(name) > maxNameLength {
		return "", apperr.Validationf("Name must be %d characters or less", maxNameLength)
	}
	return name, nil
}

// VerifyPassword checks candidate against the stored hash.
func (u *User) VerifyPassword(plain string) (bool, error) {
	return u.PasswordHash.Verify(plain)
}

// ChangePassword re-validates and re-hashes, replacing the stored hash.
func (u *User) ChangePassword(newPlain string) error {
	hash, err := NewPasswordHash(newPlain)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// VerifyEmail marks the address as confirmed.
func (u *User) VerifyEmail() {
	u.EmailVerified = true
	u.UpdatedAt = time.Now().UTC()
}

// Deactivate blocks the user from logging in.
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
}

// Reactivate re-enables login.
func (u *User) Reactivate() {
	u.IsActive = true
	u.UpdatedAt = time.Now().UTC()
}

// UpdateName replaces the display name after validation.
func (u *User) UpdateName(name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	u.Name = name
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateBio replaces the bio. Passing nil clears it.
func (u *User) UpdateBio(bio *string) error {
	if bio != nil && len(*bio) > maxBioLength {
		return apperr.Validationf("Bio cannot exceed %d characters", maxBioLength)
	}
	u.Bio = bio
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateAvatar replaces the avatar URL. Passing nil clears it.
func (u *User) UpdateAvatar(avatarURL *string) error {
	if avatarURL != nil &&
		!strings.HasPrefix(*avatarURL, "http://") &&
		!strings.HasPrefix(*avatarURL, "https://") {
		return apperr.Validation("Avatar URL must be a valid HTTP/HTTPS URL")
	}
	u.AvatarURL = avatarURL
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// CanLogin reports whether the account may authenticate.
func (u *User) CanLogin() bool {
	return u.IsActive
}
