package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"idcore/api/internal/apperr"
)

func TestNewPasswordHashVerify(t *testing.T) {
	hash, err := NewPasswordHash("password123")
	require.NoError(t, err)

	ok, err := hash.Verify("password123")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = hash.Verify("wrongpassword")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewPasswordHashTooShort(t *testing.T) {
	_, err := NewPasswordHash("short")
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestNewPasswordHashLengthBounds(t *testing.T) {
	hash, err := NewPasswordHash(strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)

	ok, err := hash.Verify(strings.Repeat("a", MaxPasswordLength))
	require.NoError(t, err)
	require.True(t, ok)

	_, err = NewPasswordHash(strings.Repeat("a", MaxPasswordLength+1))
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	// A long passphrase is a validation failure, never an internal one.
	_, err = NewPasswordHash(strings.Repeat("a", 100))
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestPasswordHashNeverStoresPlaintext(t *testing.T) {
	hash, err := NewPasswordHash("password123")
	require.NoError(t, err)
	require.NotContains(t, string(hash.Bytes()), "password123")
}

func TestPasswordHashMalformedStoredHash(t *testing.T) {
	hash := PasswordHashFromStorage([]byte("not-a-bcrypt-hash"))
	_, err := hash.Verify("password123")
	require.Error(t, err)
	require.True(t, apperr.IsKind(err, apperr.KindInternal))
}
