// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tour

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/dberr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
)

// tourColumns is the canonical projection shared by every read.
const tourColumns = `
	id, name, slug, duration, max_group_size, difficulty,
	price, price_discount, summary, description, image_cover, images,
	start_dates, start_latitude, start_longitude, secret,
	ratings_average, ratings_quantity, created_at, updated_at`

// PostgresTourRepository implements [TourRepository] using pgx.
type PostgresTourRepository struct {
	pool *pgxpool.Pool
}

// NewTourRepository creates a new PostgreSQL implementation of the [TourRepository].
func NewTourRepository(pool *pgxpool.Pool) *PostgresTourRepository {
	return &PostgresTourRepository{pool: pool}
}

/*
Create persists a new tour record.

Parameters:
  - context: context.Context
  - tour: *Tour (Entity to persist)

Returns:
  - error: Conflict on duplicate name/slug, or storage failures
*/
func (repository *PostgresTourRepository) Create(context context.Context, tour *Tour) error {
	const query = `
		INSERT INTO tours (
			id, name, slug, duration, max_group_size, difficulty,
			price, price_discount, summary, description, image_cover, images,
			start_dates, start_latitude, start_longitude, secret,
			ratings_average, ratings_quantity, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)`

	now := time.Now()
	if tour.CreatedAt.IsZero() {
		tour.CreatedAt = now
	}
	tour.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		tour.ID,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.StartLatitude,
		tour.StartLongitude,
		tour.Secret,
		tour.RatingsAverage,
		tour.RatingsQuantity,
		tour.CreatedAt,
		tour.UpdatedAt,
	)

	return dberr.Translate(err, "Tour")
}

/*
FindByID retrieves a non-secret tour by ID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Tour: Hydrated entity
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresTourRepository) FindByID(context context.Context, id string) (*Tour, error) {
	const query = `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE id = $1 AND secret = FALSE`

	row := repository.pool.QueryRow(context, query, id)
	return scanTour(row)
}

/*
List returns a page of non-secret tours shaped by the list descriptor.

Description: Filters, sort keys, and pagination are rendered through the
shared listquery builder; the secrecy filter is always the fixed first
condition.

Parameters:
  - context: context.Context
  - descriptor: listquery.Descriptor

Returns:
  - []*Tour: The requested page
  - error: Storage failures
*/
func (repository *PostgresTourRepository) List(context context.Context, descriptor listquery.Descriptor) ([]*Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE secret = FALSE`

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
		return nil, dberr.Translate(err, "Tour")
	}
	defer rows.Close()

	tours := []*Tour{}
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, tour)
	}

	return tours, dberr.Translate(rows.Err(), "Tour")
}

/*
Update persists the full mutable state of an existing tour.

Parameters:
  - context: context.Context
  - tour: *Tour (Hydrated entity with changes)

Returns:
  - error: apperr.NotFound, Conflict, or storage failures
*/
func (repository *PostgresTourRepository) Update(context context.Context, tour *Tour) error {
	const query = `
		UPDATE tours
		SET name = $2, slug = $3, duration = $4, max_group_size = $5,
		    difficulty = $6, price = $7, price_discount = $8, summary = $9,
		    description = $10, image_cover = $11, images = $12,
		    start_dates = $13, start_latitude = $14, start_longitude = $15,
		    secret = $16, updated_at = NOW()
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query,
		tour.ID,
		tour.Name,
		tour.Slug,
		tour.Duration,
		tour.MaxGroupSize,
		tour.Difficulty,
		tour.Price,
		tour.PriceDiscount,
		tour.Summary,
		tour.Description,
		tour.ImageCover,
		tour.Images,
		tour.StartDates,
		tour.StartLatitude,
		tour.StartLongitude,
		tour.Secret,
	)
	if err != nil {
		return dberr.Translate(err, "Tour")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tour")
	}

	return nil
}

/*
Delete removes a tour permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (repository *PostgresTourRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM tours WHERE id = $1`

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Translate(err, "Tour")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Tour")
	}

	return nil
}

/*
UpdateRating writes the derived rating aggregate pair onto the tour row.

Description: Reserved for the rating aggregator; intentionally ignores the
secrecy flag so aggregates stay correct even for hidden tours.

Parameters:
  - context: context.Context
  - tourID: string
  - average: float64
  - quantity: int

Returns:
  - error: Storage failures
*/
func (repository *PostgresTourRepository) UpdateRating(context context.Context, tourID string, average float64, quantity int) error {
	const query = `
		UPDATE tours
		SET ratings_average = $2, ratings_quantity = $3, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, tourID, average, quantity)
	return dberr.Translate(err, "Tour")
}

/*
Stats computes the per-difficulty aggregates over non-secret tours.

Returns:
  - []Stats: One row per difficulty, ordered by average price
  - error: Storage failures
*/
func (repository *PostgresTourRepository) Stats(context context.Context) ([]Stats, error) {
	const query = `
		SELECT difficulty,
		       COUNT(*)                       AS num_tours,
		       COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
		       COALESCE(AVG(ratings_average), 0)  AS avg_rating,
		       COALESCE(AVG(price), 0)            AS avg_price,
		       COALESCE(MIN(price), 0)            AS min_price,
		       COALESCE(MAX(price), 0)            AS max_price
		FROM tours
		WHERE secret = FALSE
		GROUP BY difficulty
		ORDER BY avg_price`

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Translate(err, "Tour")
	}
	defer rows.Close()

	stats := []Stats{}
	for rows.Next() {
		var entry Stats
		if err := rows.Scan(
			&entry.Difficulty,
			&entry.NumTours,
			&entry.NumRatings,
			&entry.AvgRating,
			&entry.AvgPrice,
			&entry.MinPrice,
			&entry.MaxPrice,
		); err != nil {
			return nil, dberr.Translate(err, "Tour")
		}
		stats = append(stats, entry)
	}

	return stats, dberr.Translate(rows.Err(), "Tour")
}

/*
MonthlyPlan expands start dates for the given year into per-month departures.

Description: Unnests the start_dates array, filters to the requested year,
and groups by calendar month, busiest months first.

Parameters:
  - context: context.Context
  - year: int

Returns:
  - []MonthlyPlanEntry: One entry per month that has departures
  - error: Storage failures
*/
func (repository *PostgresTourRepository) MonthlyPlan(context context.Context, year int) ([]MonthlyPlanEntry, error) {
	const query = `
		SELECT EXTRACT(MONTH FROM start_date)::int AS month,
		       COUNT(*)                            AS tour_starts,
		       ARRAY_AGG(name ORDER BY name)       AS tours
		FROM tours, UNNEST(start_dates) AS start_date
		WHERE secret = FALSE
		  AND EXTRACT(YEAR FROM start_date) = $1
		GROUP BY month
		ORDER BY tour_starts DESC, month`

	rows, err := repository.pool.Query(context, query, year)
	if err != nil {
		return nil, dberr.Translate(err, "Tour")
	}
	defer rows.Close()

	plan := []MonthlyPlanEntry{}
	for rows.Next() {
		var entry MonthlyPlanEntry
		if err := rows.Scan(&entry.Month, &entry.TourStarts, &entry.Tours); err != nil {
			return nil, dberr.Translate(err, "Tour")
		}
		plan = append(plan, entry)
	}

	return plan, dberr.Translate(rows.Err(), "Tour")
}

/*
Near returns non-secret tours within radiusKm of the given point.

Description: Great-circle distance via the haversine formula evaluated in
SQL. This is a thin scan, not a geo index; the catalog is small enough that
a sequential pass is acceptable.

Parameters:
  - context: context.Context
  - latitude, longitude: float64 (query point, degrees)
  - radiusKm: float64

Returns:
  - []NearTour: Matching tours, closest first
  - error: Storage failures
*/
func (repository *PostgresTourRepository) Near(context context.Context, latitude, longitude, radiusKm float64) ([]NearTour, error) {
	const query = `
		SELECT *
		FROM (
			SELECT ` + tourColumns + `,
			       2 * 6371 * asin(sqrt(
			           power(sin(radians(start_latitude - $1) / 2), 2) +
			           cos(radians($1)) * cos(radians(start_latitude)) *
			           power(sin(radians(start_longitude - $2) / 2), 2)
			       )) AS distance_km
			FROM tours
			WHERE secret = FALSE
			  AND start_latitude IS NOT NULL
			  AND start_longitude IS NOT NULL
		) candidates
		WHERE distance_km <= $3
		ORDER BY distance_km`

	rows, err := repository.pool.Query(context, query, latitude, longitude, radiusKm)
	if err != nil {
		return nil, dberr.Translate(err, "Tour")
	}
	defer rows.Close()

	return collectNearTours(rows)
}

/*
Distances computes the distance from a point to every locatable tour.

Description: The same haversine projection as [PostgresTourRepository.Near],
without the radius cut-off: every non-secret tour with a start point is
returned, closest first.

Parameters:
  - context: context.Context
  - latitude, longitude: float64 (degrees, WGS84)

Returns:
  - []NearTour: All locatable tours with their computed distance
  - error: Storage failures
*/
func (repository *PostgresTourRepository) Distances(context context.Context, latitude, longitude float64) ([]NearTour, error) {
	const query = `
		SELECT ` + tourColumns + `,
		       2 * 6371 * asin(sqrt(
		           power(sin(radians(start_latitude - $1) / 2), 2) +
		           cos(radians($1)) * cos(radians(start_latitude)) *
		           power(sin(radians(start_longitude - $2) / 2), 2)
		       )) AS distance_km
		FROM tours
		WHERE secret = FALSE
		  AND start_latitude IS NOT NULL
		  AND start_longitude IS NOT NULL
		ORDER BY distance_km`

	rows, err := repository.pool.Query(context, query, latitude, longitude)
	if err != nil {
		return nil, dberr.Translate(err, "Tour")
	}
	defer rows.Close()

	return collectNearTours(rows)
}

// collectNearTours drains a distance-annotated tour result set.
func collectNearTours(rows pgx.Rows) ([]NearTour, error) {
	results := []NearTour{}
	for rows.Next() {
		var hit NearTour
		if err := rows.Scan(
			&hit.ID,
			&hit.Name,
			&hit.Slug,
			&hit.Duration,
			&hit.MaxGroupSize,
			&hit.Difficulty,
			&hit.Price,
			&hit.PriceDiscount,
			&hit.Summary,
			&hit.Description,
			&hit.ImageCover,
			&hit.Images,
			&hit.StartDates,
			&hit.StartLatitude,
			&hit.StartLongitude,
			&hit.Secret,
			&hit.RatingsAverage,
			&hit.RatingsQuantity,
			&hit.CreatedAt,
			&hit.UpdatedAt,
			&hit.DistanceKm,
		); err != nil {
			return nil, dberr.Translate(err, "Tour")
		}
		results = append(results, hit)
	}

	return results, dberr.Translate(rows.Err(), "Tour")
}

// scanTour hydrates a full Tour projection from a row.
func scanTour(row pgx.Row) (*Tour, error) {
	tour := &Tour{}
	err := row.Scan(
		&tour.ID,
		&tour.Name,
		&tour.Slug,
		&tour.Duration,
		&tour.MaxGroupSize,
		&tour.Difficulty,
		&tour.Price,
		&tour.PriceDiscount,
		&tour.Summary,
		&tour.Description,
		&tour.ImageCover,
		&tour.Images,
		&tour.StartDates,
		&tour.StartLatitude,
		&tour.StartLongitude,
		&tour.Secret,
		&tour.RatingsAverage,
		&tour.RatingsQuantity,
		&tour.CreatedAt,
		&tour.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Translate(err, "Tour")
	}

	return tour, nil
}
