package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"idcore/api/internal/domain"
)

type PostgresTokenRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgresTokenRepository(pool *pgxpool.Pool, log zerolog.Logger) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool, log: log}
}

func (r *PostgresTokenRepository) Save(ctx context.Context, token *domain.JwtToken) error {
	const query = `
		INSERT INTO jwt_tokens (
			id, user_id, token_type, jti, expires_at, revoked, revoked_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		string(token.TokenType),
		token.JTI,
		token.ExpiresAt,
		token.Revoked,
		token.RevokedAt,
		token.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errors.New("duplicate jti")
	}
	return err
}

func (r *PostgresTokenRepository) FindByJTI(ctx context.Context, jti string) (*domain.JwtToken, error) {
	const query = `
		SELECT id, user_id, token_type, jti, expires_at, revoked, revoked_at, created_at
		FROM jwt_tokens
		WHERE jti = $1
	`

	row := r.pool.QueryRow(ctx, query, jti)
	var (
		token     domain.JwtToken
		tokenType string
	)
	if err := row.Scan(
		&token.ID,
		&token.UserID,
		&tokenType,
		&token.JTI,
		&token.ExpiresAt,
		&token.Revoked,
		&token.RevokedAt,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	token.TokenType = domain.TokenType(tokenType)
	return &token, nil
}

// Revoke marks the token revoked. Revocation is monotonic: the WHERE
// clause never flips a revoked token back, and a miss is logged rather
// than returned as an error.
func (r *PostgresTokenRepository) Revoke(ctx context.Context, jti string) error {
	const query = `
		UPDATE jwt_tokens
		SET revoked = true, revoked_at = NOW()
		WHERE jti = $1 AND revoked = false
	`
	cmd, err := r.pool.Exec(ctx, query, jti)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		r.log.Warn().Str("jti", jti).Msg("revoke matched no live token")
	}
	return nil
}

func (r *PostgresTokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	const query = `
		UPDATE jwt_tokens
		SET revoked = true, revoked_at = NOW()
		WHERE user_id = $1 AND revoked = false
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *PostgresTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jwt_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
