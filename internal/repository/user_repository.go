package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"idcore/api/internal/domain"
)

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (
			id, email, password_hash, name, bio, avatar_url, email_verified, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email.String(),
		user.PasswordHash.Bytes(),
		user.Name,
		user.Bio,
		user.AvatarURL,
		user.EmailVerified,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
		SELECT id, email, password_hash, name, bio, avatar_url, email_verified, is_active, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	const query = `
		SELECT id, email, password_hash, name, bio, avatar_url, email_verified, is_active, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email.String()))
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
		UPDATE users
		SET email = $2, password_hash = $3, name = $4, bio = $5, avatar_url = $6, email_verified = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email.String(),
		user.PasswordHash.Bytes(),
		user.Name,
		user.Bio,
		user.AvatarURL,
		user.EmailVerified,
		user.IsActive,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		email string
		hash  []byte
	)
	if err := row.Scan(
		&user.ID,
		&email,
		&hash,
		&user.Name,
		&user.Bio,
		&user.AvatarURL,
		&user.EmailVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Email = domain.EmailFromStorage(email)
	user.PasswordHash = domain.PasswordHashFromStorage(hash)
	return &user, nil
}
