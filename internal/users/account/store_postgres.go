// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/dberr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/users/auth"
)

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// profileColumns is the directory projection; credential material is
// deliberately excluded.
const profileColumns = `id, name, email, role, photo, active, created_at, updated_at`

/*
FindByID retrieves an active user record by ID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *auth.User: Hydrated profile entity
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT ` + profileColumns + `
		FROM users
		WHERE id = $1 AND active = TRUE`

	user := &auth.User{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Photo,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Translate(err, "User")
	}

	return user, nil
}

/*
UpdateProfile persists the mutable profile fields of a user.

Parameters:
  - context: context.Context
  - user: *auth.User (entity carrying the new values)

Returns:
  - error: Conflict on duplicate name/email, or storage failures
*/
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, user *auth.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, photo = $4, updated_at = NOW()
		WHERE id = $1 AND active = TRUE`

	tag, err := repository.pool.Exec(context, query, user.ID, user.Name, user.Email, user.Photo)
	if err != nil {
		return dberr.Translate(err, "User")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

/*
Deactivate flags the account as inactive.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Execution failures
*/
func (repository *PostgresAccountRepository) Deactivate(context context.Context, id string) error {
	const query = `
		UPDATE users
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, id)
	return dberr.Translate(err, "User")
}

/*
List returns a page of active users shaped by the list descriptor.

Description: Filters and sort keys are rendered through the shared listquery
builder; the active flag is always enforced as a fixed first condition.

Parameters:
  - context: context.Context
  - descriptor: listquery.Descriptor

Returns:
  - []*auth.User: The requested page
  - error: Storage failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, descriptor listquery.Descriptor) ([]*auth.User, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM users
		WHERE active = TRUE`

	where, arguments := listquery.BuildWhere(descriptor, ListSchema, 1)
	if where != "" {
		query += " AND " + where
	}

	if orderBy := listquery.BuildOrderBy(descriptor, ListSchema); orderBy != "" {
		query += " ORDER BY " + orderBy
	}

	query += fmt.Sprintf(" LIMIT %d OFFSET %d", descriptor.Limit, descriptor.Offset())

	rows, err := repository.pool.Query(context, query, arguments...)
	if err != nil {
		return nil, dberr.Translate(err, "User")
	}
	defer rows.Close()

	users := []*auth.User{}
	for rows.Next() {
		user := &auth.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.Photo,
			&user.Active,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, dberr.Translate(err, "User")
		}
		users = append(users, user)
	}

	return users, dberr.Translate(rows.Err(), "User")
}
