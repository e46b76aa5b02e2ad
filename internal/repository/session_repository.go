package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"idcore/api/internal/domain"
)

type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Save inserts the session after deleting any existing sessions for the
// same user, inside one transaction, so at most one session per user
// survives even if the caller skipped the delete.
func (r *PostgresSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, session.UserID); err != nil {
		return err
	}

	const query = `
		INSERT INTO sessions (
			id, user_id, csrf_token, ip_address, user_agent, expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	if _, err := tx.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.CsrfToken.String(),
		nullable(session.IPAddress),
		nullable(session.UserAgent),
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	const query = `
		SELECT id, user_id, csrf_token, ip_address, user_agent, expires_at, created_at, updated_at
		FROM sessions WHERE id = $1
	`
	return r.scanSession(r.pool.QueryRow(ctx, query, id))
}

// FindByUserID returns the most recent session for the user.
func (r *PostgresSessionRepository) FindByUserID(ctx context.Context, userID string) (*domain.Session, error) {
	const query = `
		SELECT id, user_id, csrf_token, ip_address, user_agent, expires_at, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanSession(r.pool.QueryRow(ctx, query, userID))
}

func (r *PostgresSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	const query = `
		UPDATE sessions
		SET expires_at = $2, updated_at = $3
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, session.ID, session.ExpiresAt, session.UpdatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes the session. An absent session is not an error;
// logout is idempotent.
func (r *PostgresSessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *PostgresSessionRepository) scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		session   domain.Session
		csrf      string
		ipAddress *string
		userAgent *string
	)
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&csrf,
		&ipAddress,
		&userAgent,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	session.CsrfToken = domain.CsrfTokenFromStorage(csrf)
	if ipAddress != nil {
		session.IPAddress = *ipAddress
	}
	if userAgent != nil {
		session.UserAgent = *userAgent
	}
	return &session, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
