package domain

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"idcore/api/internal/apperr"
)

// MinPasswordLength is the minimum accepted plaintext length.
const MinPasswordLength = 8

// MaxPasswordLength is bcrypt's input limit; longer passwords are
// rejected up front rather than silently truncated.
const MaxPasswordLength = 72

const bcryptCost = 12

// hashGate bounds the number of concurrent bcrypt computations so a
// burst of logins cannot starve unrelated goroutines of CPU.
var hashGate = make(chan struct{}, 4)

// PasswordHash is an opaque bcrypt hash. It can only be produced from a
// plaintext via NewPasswordHash or loaded from storage; the original
// password is never recoverable from it.
type PasswordHash struct {
	value []byte
}

// NewPasswordHash validates the plaintext length and hashes it.
func NewPasswordHash(plain string) (PasswordHash, error) {
	if len(plain) < MinPasswordLength {
		return PasswordHash{}, apperr.Validationf("Password must be at least %d characters", MinPasswordLength)
	}
	if len(plain) > MaxPasswordLength {
		return PasswordHash{}, apperr.Validationf("Password must be %d bytes or less", MaxPasswordLength)
	}

	hashGate <- struct{}{}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	<-hashGate
	if err != nil {
		return PasswordHash{}, apperr.Internal("failed to hash password", err)
	}

	return PasswordHash{value: hash}, nil
}

// PasswordHashFromStorage wraps a stored hash without validation.
func PasswordHashFromStorage(hash []byte) PasswordHash {
	return PasswordHash{value: hash}
}

// Verify reports whether candidate matches the stored hash. A mismatch
// is not an error; only a malformed stored hash returns one.
func (p PasswordHash) Verify(candidate string) (bool, error) {
	hashGate <- struct{}{}
	err := bcrypt.CompareHashAndPassword(p.value, []byte(candidate))
	<-hashGate

	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, apperr.Internal("failed to verify password", err)
}

// Bytes returns the encoded hash for persistence.
func (p PasswordHash) Bytes() []byte { return p.value }
