package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"textrecords/internal/models"
)

const userColumns = `id, sub, provider, email, name, COALESCE(password_hash, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Sub,
		&user.Provider,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates or updates an OIDC user based on their subject.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (sub, provider, email, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sub) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING id, provider, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		user.Sub,
		models.ProviderOIDC,
		user.Email,
		user.Name,
	).Scan(&user.ID, &user.Provider, &user.CreatedAt, &user.UpdatedAt)
}

// CreateLocalUser inserts a password account. The subject is derived from the email.
func (d *DB) CreateLocalUser(ctx context.Context, user *models.User) error {
	user.Sub = models.LocalSub(user.Email)
	user.Provider = models.ProviderLocal

	err := d.Pool.QueryRow(ctx, `
		INSERT INTO users (sub, provider, email, name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.Sub, user.Provider, user.Email, user.Name, user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserBySub retrieves a user by their subject identifier.
func (d *DB) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE sub = $1`, sub))
}

// GetLocalUserByEmail retrieves a password account by email, ignoring case.
func (d *DB) GetLocalUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.GetUserBySub(ctx, models.LocalSub(email))
}

// GetUserByID retrieves a user by their UUID.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// DeleteUser removes a user and, through cascading keys, their records.
func (d *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
