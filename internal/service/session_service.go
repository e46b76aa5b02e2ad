package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"idcore/api/internal/apperr"
	"idcore/api/internal/config"
	"idcore/api/internal/domain"
	"idcore/api/internal/repository"
)

// SessionService resolves web sessions for the cookie middleware:
// lookup, expiry check, CSRF verification, and sliding renewal.
type SessionService struct {
	sessions repository.SessionRepository
	cfg      *config.AuthConfig
	log      zerolog.Logger
}

func NewSessionService(sessions repository.SessionRepository, cfg *config.AuthConfig, log zerolog.Logger) *SessionService {
	return &SessionService{sessions: sessions, cfg: cfg, log: log}
}

// Resolve loads the session and rejects expired ones. Expired sessions
// are deleted eagerly rather than left to the cleanup job.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, apperr.Authentication("Session not found")
		}
		return nil, apperr.Internal("failed to load session", err)
	}

	if session.IsExpired() {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.log.Warn().Err(err).Str("session_id", session.ID).Msg("expired session delete failed")
		}
		return nil, apperr.Authentication("Session has expired")
	}

	return session, nil
}

// VerifyCsrf checks the candidate token against the session binding.
func (s *SessionService) VerifyCsrf(session *domain.Session, candidate string) error {
	if !session.VerifyCsrf(candidate) {
		return apperr.Authentication("Invalid CSRF token")
	}
	return nil
}

// Slide extends the session's expiry from now. A failed extension is
// logged and ignored; the session is still usable until its old expiry.
func (s *SessionService) Slide(ctx context.Context, session *domain.Session) {
	session.Refresh(s.cfg.SessionTTL)
	if err := s.sessions.Update(ctx, session); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("session slide failed")
	}
}
