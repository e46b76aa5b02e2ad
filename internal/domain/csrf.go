package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const csrfTokenBytes = 32 // 256 bits of entropy

// CsrfToken is the per-session secret bound to web sessions. Tokens are
// URL-safe base64 and compared in constant time.
type CsrfToken struct {
	value string
}

// GenerateCsrfToken returns a fresh token from a cryptographically
// secure random source.
func GenerateCsrfToken() (CsrfToken, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return CsrfToken{}, fmt.Errorf("generate csrf token: %w", err)
	}
	return CsrfToken{value: base64.RawURLEncoding.EncodeToString(buf)}, nil
}

// CsrfTokenFromStorage wraps a stored token value.
func CsrfTokenFromStorage(value string) CsrfToken {
	return CsrfToken{value: value}
}

// Verify compares candidate against the token in constant time. A
// length mismatch short-circuits to false.
func (t CsrfToken) Verify(candidate string) bool {
	if len(t.value) != len(candidate) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(t.value), []byte(candidate)) == 1
}

func (t CsrfToken) String() string { return t.value }
