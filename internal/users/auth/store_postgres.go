// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/wayfarer/internal/platform/dberr"
)

// userColumns is the canonical projection shared by every lookup.
const userColumns = `
	id, name, email, role, photo, active,
	password_hash, password_changed_at,
	reset_token_hash, reset_token_expires_at,
	created_at, updated_at`

// PostgresUserRepository implements the [UserRepository] interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Conflict on duplicate name/email, or storage failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, name, email, role, photo, active,
			password_hash, password_changed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Photo,
		user.Active,
		user.PasswordHash,
		user.PasswordChangedAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Translate(err, "User")
}

/*
FindByID retrieves an active user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND active = TRUE`

	return repository.scanOne(context, query, id)
}

/*
FindByEmail retrieves an active user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND active = TRUE`

	return repository.scanOne(context, query, email)
}

/*
FindByResetTokenHash retrieves an active user by their hashed reset token.

Parameters:
  - context: context.Context
  - tokenHash: string (hex-encoded SHA-256)

Returns:
  - *User: Hydrated account entity including reset token state
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresUserRepository) FindByResetTokenHash(context context.Context, tokenHash string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE reset_token_hash = $1 AND active = TRUE`

	return repository.scanOne(context, query, tokenHash)
}

/*
SetResetToken stores the hashed reset token and its expiry on the user row.

Parameters:
  - context: context.Context
  - userID: string
  - tokenHash: string
  - expiresAt: time.Time

Returns:
  - error: Storage failures
*/
func (repository *PostgresUserRepository) SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND active = TRUE`

	_, err := repository.pool.Exec(context, query, userID, tokenHash, expiresAt)
	return dberr.Translate(err, "User")
}

/*
ClearResetToken removes any reset token state from the user row.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Storage failures
*/
func (repository *PostgresUserRepository) ClearResetToken(context context.Context, userID string) error {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID)
	return dberr.Translate(err, "User")
}

/*
UpdatePassword rotates the password hash and invalidates reset token state
in a single statement.

Parameters:
  - context: context.Context
  - userID: string
  - passwordHash: string (bcrypt)
  - changedAt: time.Time

Returns:
  - error: Storage failures
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, passwordHash string, changedAt time.Time) error {
	const query = `
		UPDATE users
		SET password_hash = $2,
		    password_changed_at = $3,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, passwordHash, changedAt)
	return dberr.Translate(err, "User")
}

// scanOne runs a single-row query and hydrates the full User projection.
func (repository *PostgresUserRepository) scanOne(context context.Context, query string, args ...any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Photo,
		&user.Active,
		&user.PasswordHash,
		&user.PasswordChangedAt,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Translate(err, "User")
	}

	return user, nil
}
