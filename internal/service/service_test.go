package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"idcore/api/internal/config"
	"idcore/api/internal/domain"
	"idcore/api/internal/repository"
)

// In-memory repositories backing the service tests. They honor the same
// sentinel-error contracts as the postgres implementations.

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email.String() == user.Email.String() {
			return repository.ErrDuplicateEmail
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email.String() == email.String() {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *memorySessionRepository) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the transactional delete-then-insert of the postgres
	// implementation: one session per user.
	for id, existing := range r.sessions {
		if existing.UserID == session.UserID {
			delete(r.sessions, id)
		}
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepository) FindByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (r *memorySessionRepository) FindByUserID(_ context.Context, userID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Session
	for _, session := range r.sessions {
		if session.UserID != userID {
			continue
		}
		s := session
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = &s
		}
	}
	if latest == nil {
		return nil, repository.ErrSessionNotFound
	}
	return latest, nil
}

func (r *memorySessionRepository) Update(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return repository.ErrSessionNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memorySessionRepository) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *memorySessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, session := range r.sessions {
		if session.IsExpired() {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *memorySessionRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

type memoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]domain.JwtToken
}

func newMemoryTokenRepository() *memoryTokenRepository {
	return &memoryTokenRepository{tokens: make(map[string]domain.JwtToken)}
}

func (r *memoryTokenRepository) Save(_ context.Context, token *domain.JwtToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.JTI] = *token
	return nil
}

func (r *memoryTokenRepository) FindByJTI(_ context.Context, jti string) (*domain.JwtToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[jti]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	return &token, nil
}

// Revoke matches the postgres contract: a miss is not an error.
func (r *memoryTokenRepository) Revoke(_ context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[jti]
	if !ok {
		return nil
	}
	token.Revoke()
	r.tokens[jti] = token
	return nil
}

func (r *memoryTokenRepository) RevokeAllUserTokens(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for jti, token := range r.tokens {
		if token.UserID == userID {
			token.Revoke()
			r.tokens[jti] = token
		}
	}
	return nil
}

func (r *memoryTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for jti, token := range r.tokens {
		if token.IsExpired() {
			delete(r.tokens, jti)
			n++
		}
	}
	return n, nil
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:     "test-secret-key-at-least-32-bytes!!",
		JWTAccessTTL:  15 * time.Minute,
		JWTRefreshTTL: 168 * time.Hour,
		SessionTTL:    24 * time.Hour,
		SessionCookie: "idcore_session",
	}
}

type serviceFixture struct {
	users    *memoryUserRepository
	sessions *memorySessionRepository
	tokens   *memoryTokenRepository
	auth     *AuthService
	user     *UserService
	session  *SessionService
}

func newServiceFixture() *serviceFixture {
	users := newMemoryUserRepository()
	sessions := newMemorySessionRepository()
	tokens := newMemoryTokenRepository()
	cfg := testAuthConfig()
	logger := zerolog.Nop()

	return &serviceFixture{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		auth:     NewAuthService(users, sessions, tokens, nil, cfg, logger),
		user:     NewUserService(users, logger),
		session:  NewSessionService(sessions, cfg, logger),
	}
}
