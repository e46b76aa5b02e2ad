package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"idcore/api/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrDuplicateEmail  = errors.New("email already registered")
)

// UserRepository owns User persistence. The only way to obtain a User
// is through it; uniqueness of email is enforced here.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// SessionRepository owns web-session persistence. Save enforces the
// single-session-per-user rule internally.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenRepository is the revocation ledger for issued JWTs.
type TokenRepository interface {
	Save(ctx context.Context, token *domain.JwtToken) error
	FindByJTI(ctx context.Context, jti string) (*domain.JwtToken, error)
	Revoke(ctx context.Context, jti string) error
	RevokeAllUserTokens(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, which the check-then-insert sequences in the services rely
// on as the authoritative uniqueness guard.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
