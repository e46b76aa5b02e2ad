package domain

import (
	"time"

	"idcore/api/internal/ids"
)

// Session is a web session with its CSRF binding. At most one session
// exists per user at a time; the repository enforces that on save.
type Session struct {
	ID        string
	UserID    string
	CsrfToken CsrfToken
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session with a fresh id and CSRF token expiring
// ttl from now. IP address and user agent may be empty.
func NewSession(userID string, ipAddress, userAgent string, ttl time.Duration) (*Session, error) {
	csrf, err := GenerateCsrfToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Session{
		ID:        ids.NewSortable(),
		UserID:    userID,
		CsrfToken: csrf,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// IsValid reports whether the session may still be used.
func (s *Session) IsValid() bool {
	return !s.IsExpired()
}

// Refresh extends the expiry ttl from the current time (sliding expiry).
func (s *Session) Refresh(ttl time.Duration) {
	now := time.Now().UTC()
	s.ExpiresAt = now.Add(ttl)
	s.UpdatedAt = now
}

// VerifyCsrf compares candidate against the session's CSRF token in
// constant time.
func (s *Session) VerifyCsrf(candidate string) bool {
	return s.CsrfToken.Verify(candidate)
}
