// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/dberr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
)

// PostgresReviewRepository implements [ReviewRepository] using pgx.
type PostgresReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new PostgreSQL implementation of the [ReviewRepository].
func NewReviewRepository(pool *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{pool: pool}
}

// reviewColumns joins in the author's display name for read views.
const reviewColumns = `
	r.id, r.content, r.rating, r.tour_id, r.user_id, u.name,
	r.created_at, r.updated_at`

/*
Create persists a new review.

Description: The UNIQUE(tour_id, user_id) index enforces one review per user
per tour; its violation surfaces as Conflict. A foreign-key violation means
the tour (or user) no longer exists.

Parameters:
  - context: context.Context
  - review: *Review (Entity to persist)

Returns:
  - error: Conflict, apperr.NotFound("Tour"), or storage failures
*/
func (repository *PostgresReviewRepository) Create(context context.Context, review *Review) error {
	const query = `
		INSERT INTO reviews (id, content, rating, tour_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	now := time.Now()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		review.ID,
		review.Content,
		review.Rating,
		review.TourID,
		review.UserID,
		review.CreatedAt,
		review.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err, "") {
			return apperr.Conflict("You have already reviewed this tour")
		}
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Tour")
		}
		return dberr.Translate(err, "Review")
	}

	return nil
}

/*
FindByID retrieves a review by ID, joined with its author's name.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Review: Hydrated entity
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresReviewRepository) FindByID(context context.Context, id string) (*Review, error) {
	const query = `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`

	review := &Review{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&review.ID,
		&review.Content,
		&review.Rating,
		&review.TourID,
		&review.UserID,
		&review.AuthorName,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Translate(err, "Review")
	}

	return review, nil
}

/*
List returns a page of reviews, optionally scoped to a tour.

Parameters:
  - context: context.Context
  - tourID: string (empty = all tours)
  - descriptor: listquery.Descriptor

Returns:
  - []*Review: The requested page
  - error: Storage failures
*/
func (repository *PostgresReviewRepository) List(context context.Context, tourID string, descriptor listquery.Descriptor) ([]*Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		JOIN users u ON u.id = r.user_id`

	arguments := []any{}
	conditions := ""
	startIndex := 1

	if tourID != "" {
		conditions = "r.tour_id = $1"
		arguments = append(arguments, tourID)
		startIndex = 2
	}

	where, filterArguments := listquery.BuildWhere(descriptor, listSQLSchema, startIndex)
	if where != "" {
		if conditions != "" {
			conditions += " AND "
		}
		conditions += where
		arguments = append(arguments, filterArguments...)
	}

	if conditions != "" {
		query += " WHERE " + conditions
	}

	if orderBy := listquery.BuildOrderBy(descriptor, listSQLSchema); orderBy != "" {
		query += " ORDER BY " + orderBy
	}

	query += fmt.Sprintf(" LIMIT %d OFFSET %d", descriptor.Limit, descriptor.Offset())

	rows, err := repository.pool.Query(context, query, arguments...)
	if err != nil {
		return nil, dberr.Translate(err, "Review")
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		review := &Review{}
		if err := rows.Scan(
			&review.ID,
			&review.Content,
			&review.Rating,
			&review.TourID,
			&review.UserID,
			&review.AuthorName,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, dberr.Translate(err, "Review")
		}
		reviews = append(reviews, review)
	}

	return reviews, dberr.Translate(rows.Err(), "Review")
}

/*
Update persists content and rating changes of an existing review.

Parameters:
  - context: context.Context
  - review: *Review (Hydrated entity with changes)

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresReviewRepository) Update(context context.Context, review *Review) error {
	const query = `
		UPDATE reviews
		SET content = $2, rating = $3, updated_at = NOW()
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, review.ID, review.Content, review.Rating)
	if err != nil {
		return dberr.Translate(err, "Review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}

	return nil
}

/*
Delete removes a review permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresReviewRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM reviews WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Translate(err, "Review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}

	return nil
}

/*
Summarize returns the mean rating and count over a tour's reviews in one
aggregate query.

Parameters:
  - context: context.Context
  - tourID: string

Returns:
  - float64: Mean rating (0 when count is 0)
  - int: Review count
  - error: Storage failures
*/
func (repository *PostgresReviewRepository) Summarize(context context.Context, tourID string) (float64, int, error) {
	const query = `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE tour_id = $1`

	var average float64
	var count int
	if err := repository.pool.QueryRow(context, query, tourID).Scan(&average, &count); err != nil {
		return 0, 0, dberr.Translate(err, "Review")
	}

	return average, count, nil
}

// listSQLSchema maps the public review fields onto their aliased columns.
var listSQLSchema = listquery.Schema{
	Columns: map[string]string{
		"rating":     "r.rating",
		"tour_id":    "r.tour_id",
		"user_id":    "r.user_id",
		"created_at": "r.created_at",
	},
	DefaultSort: ListSchema.DefaultSort,
}
