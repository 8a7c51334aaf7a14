// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package tour implements the tour catalog: the platform's primary resource.

It covers the full CRUD surface, the shared list grammar, and the derived
read models (curated top-5 alias, difficulty statistics, yearly monthly plan,
and a thin proximity search).

# Architecture

  - Entities: Tour plus the Stats and MonthlyPlanEntry read models.
  - Service: Validation, slug generation, and cache orchestration.
  - Repository: pgx-backed storage; Redis caches the stats read model.
  - Visibility: Secret tours are filtered out of every read path by the
    repository itself, never by callers.
*/
package tour

import (
	"context"
	"time"

	"github.com/taibuivan/wayfarer/internal/platform/listquery"
)

// Difficulty levels a tour may carry.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Name length constraints.
const (
	MinNameLength = 10
	MaxNameLength = 40
)

// ListSchema declares the filterable/sortable surface of the tour catalog.
var ListSchema = listquery.Schema{
	Columns: map[string]string{
		"name":             "name",
		"duration":         "duration",
		"max_group_size":   "max_group_size",
		"difficulty":       "difficulty",
		"price":            "price",
		"ratings_average":  "ratings_average",
		"ratings_quantity": "ratings_quantity",
		"created_at":       "created_at",
	},
	DefaultSort: []listquery.SortKey{{Field: "created_at", Desc: true}},
}

// # Domain Entities

// Tour is the catalog entity.
//
// RatingsAverage and RatingsQuantity are a derived cache maintained by the
// rating aggregator; nothing else may write them.
type Tour struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	Duration     int     `json:"duration"`
	MaxGroupSize int     `json:"max_group_size"`
	Difficulty   string  `json:"difficulty"`
	Price        float64 `json:"price"`
	// PriceDiscount, when set, must stay below Price.
	PriceDiscount *float64 `json:"price_discount,omitempty"`

	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	ImageCover  string   `json:"image_cover,omitempty"`
	Images      []string `json:"images,omitempty"`

	StartDates []time.Time `json:"start_dates,omitempty"`

	// Start coordinates feed the proximity search.
	StartLatitude  *float64 `json:"start_latitude,omitempty"`
	StartLongitude *float64 `json:"start_longitude,omitempty"`

	// Secret tours are invisible on every read path.
	Secret bool `json:"secret_tour"`

	RatingsAverage  float64 `json:"ratings_average"`
	RatingsQuantity int     `json:"ratings_quantity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats is the per-difficulty aggregate read model behind /tours-stats.
type Stats struct {
	Difficulty string  `json:"difficulty"`
	NumTours   int     `json:"num_tours"`
	NumRatings int     `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
	AvgPrice   float64 `json:"avg_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
}

// MonthlyPlanEntry is one month of the yearly departure plan.
type MonthlyPlanEntry struct {
	Month      int      `json:"month"`
	TourStarts int      `json:"tour_starts"`
	Tours      []string `json:"tours"`
}

// NearTour is a proximity search hit: a tour plus its distance from the
// query point.
type NearTour struct {
	Tour
	DistanceKm float64 `json:"distance_km"`
}

// # Repository Contracts

// TourRepository defines the persistence contract for the tour catalog.
//
// Every read method excludes secret tours.
type TourRepository interface {
	/*
		Create persists a new tour.

		Returns:
		  - error: Conflict on duplicate name/slug, or storage failures
	*/
	Create(context context.Context, tour *Tour) error

	/*
		FindByID retrieves a non-secret tour by ID.

		Returns:
		  - *Tour: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Tour, error)

	/*
		List returns a page of non-secret tours shaped by the list descriptor.

		Returns:
		  - []*Tour: The requested page
		  - error: Storage failures
	*/
	List(context context.Context, descriptor listquery.Descriptor) ([]*Tour, error)

	/*
		Update persists the full mutable state of an existing tour.

		Returns:
		  - error: apperr.NotFound, Conflict, or storage failures
	*/
	Update(context context.Context, tour *Tour) error

	/*
		Delete removes a tour permanently.

		Returns:
		  - error: apperr.NotFound or storage failures
	*/
	Delete(context context.Context, id string) error

	/*
		UpdateRating writes the derived rating aggregate pair.

		Description: Reserved for the rating aggregator.
	*/
	UpdateRating(context context.Context, tourID string, average float64, quantity int) error

	/*
		Stats computes the per-difficulty aggregates over non-secret tours.
	*/
	Stats(context context.Context) ([]Stats, error)

	/*
		MonthlyPlan expands start dates for the given year into per-month
		departure counts.
	*/
	MonthlyPlan(context context.Context, year int) ([]MonthlyPlanEntry, error)

	/*
		Near returns non-secret tours whose start point lies within radiusKm
		of the given coordinates, closest first.
	*/
	Near(context context.Context, latitude, longitude, radiusKm float64) ([]NearTour, error)

	/*
		Distances returns every locatable non-secret tour with its distance
		from the given coordinates, closest first.
	*/
	Distances(context context.Context, latitude, longitude float64) ([]NearTour, error)
}

// StatsCache caches the stats read model between recomputes.
type StatsCache interface {
	// GetStats returns the cached stats, or ok=false on a miss.
	GetStats(context context.Context) ([]Stats, bool, error)
	// SetStats stores the stats with the cache's TTL.
	SetStats(context context.Context, stats []Stats) error
	// InvalidateTourStats drops the cached stats.
	InvalidateTourStats(context context.Context) error
}
