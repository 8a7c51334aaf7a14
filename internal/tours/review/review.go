// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package review implements tour reviews: the user-generated content that
feeds the rating aggregate.

# Architecture

  - Entities: Review (one per user per tour, enforced by the database).
  - Service: Ownership checks and aggregate recompute triggering.
  - Repository: pgx-backed storage, including the aggregate summary read
    used by the rating package.

Every mutation (create, update, delete) triggers a recompute of the parent
tour's denormalized rating columns.
*/
package review

import (
	"context"
	"time"

	"github.com/taibuivan/wayfarer/internal/platform/listquery"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ListSchema declares the filterable/sortable surface of reviews.
var ListSchema = listquery.Schema{
	Columns: map[string]string{
		"rating":     "rating",
		"tour_id":    "tour_id",
		"user_id":    "user_id",
		"created_at": "created_at",
	},
	DefaultSort: []listquery.SortKey{{Field: "created_at", Desc: true}},
}

// # Domain Entities

// Review is a single user's rating and commentary on a tour.
type Review struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
	TourID  string `json:"tour_id"`
	UserID  string `json:"user_id"`

	// AuthorName denormalizes the reviewer's display name for read views.
	AuthorName string `json:"author_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Repository Contracts

// ReviewRepository defines the persistence contract for reviews.
type ReviewRepository interface {
	/*
		Create persists a new review.

		Returns:
		  - error: Conflict when the user already reviewed the tour,
		    apperr.NotFound("Tour") when the tour does not exist, or storage
		    failures
	*/
	Create(context context.Context, review *Review) error

	/*
		FindByID retrieves a review by ID.

		Returns:
		  - *Review: Hydrated entity with author name
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Review, error)

	/*
		List returns a page of reviews shaped by the list descriptor,
		optionally scoped to a single tour.

		Parameters:
		  - context: context.Context
		  - tourID: string (empty = all tours)
		  - descriptor: listquery.Descriptor

		Returns:
		  - []*Review: The requested page
		  - error: Storage failures
	*/
	List(context context.Context, tourID string, descriptor listquery.Descriptor) ([]*Review, error)

	/*
		Update persists content and rating changes of an existing review.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Update(context context.Context, review *Review) error

	/*
		Delete removes a review permanently.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Delete(context context.Context, id string) error

	/*
		Summarize returns the mean rating and count over a tour's reviews.

		Description: This is the aggregate read the rating package derives
		the tour's denormalized columns from.

		Returns:
		  - float64: Mean rating (0 when there are no reviews)
		  - int: Review count
		  - error: Storage failures
	*/
	Summarize(context context.Context, tourID string) (float64, int, error)
}
