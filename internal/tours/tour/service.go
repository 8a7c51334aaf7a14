// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tour

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/tours/rating"
	"github.com/taibuivan/wayfarer/pkg/slug"
	"github.com/taibuivan/wayfarer/pkg/uuidv7"
)

// Service implements the tour catalog use cases.
type Service struct {
	tourRepository TourRepository
	statsCache     StatsCache
	logger         *slog.Logger
}

// NewService constructs a new tour [Service].
//
// statsCache may be nil; the stats endpoint then always hits the database.
func NewService(repository TourRepository, statsCache StatsCache, logger *slog.Logger) *Service {
	return &Service{
		tourRepository: repository,
		statsCache:     statsCache,
		logger:         logger,
	}
}

// # Catalog Reads

/*
List returns a page of the catalog shaped by the list descriptor.

Parameters:
  - context: context.Context
  - descriptor: listquery.Descriptor

Returns:
  - []*Tour: The requested page
  - error: Storage failures
*/
func (service *Service) List(context context.Context, descriptor listquery.Descriptor) ([]*Tour, error) {
	return service.tourRepository.List(context, descriptor)
}

/*
Get loads a single tour by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Tour: The entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Get(context context.Context, id string) (*Tour, error) {
	return service.tourRepository.FindByID(context, id)
}

// TopToursFields is the trimmed projection served by the top-5 listing.
var TopToursFields = []string{"name", "price", "ratings_average", "summary", "difficulty"}

/*
TopTours returns the curated "top 5" selection.

Description: A fixed preset of the list grammar: the five best-rated tours,
cheapest first among equals, projected down to [TopToursFields] by the
handler.
*/
func (service *Service) TopTours(context context.Context) ([]*Tour, error) {
	descriptor := listquery.Descriptor{
		Sort: []listquery.SortKey{
			{Field: "ratings_average", Desc: true},
			{Field: "price"},
		},
		Fields: TopToursFields,
		Page:   1,
		Limit:  5,
	}

	return service.tourRepository.List(context, descriptor)
}

/*
Stats returns the per-difficulty aggregate view, served from cache when warm.

Description: Read-through caching: a miss computes from PostgreSQL and
repopulates Redis. Cache failures degrade to the database silently.
*/
func (service *Service) Stats(context context.Context) ([]Stats, error) {
	if service.statsCache != nil {
		cached, ok, err := service.statsCache.GetStats(context)
		if err != nil {
			service.logger.Warn("tour_stats_cache_read_failed", slog.Any("error", err))
		} else if ok {
			return cached, nil
		}
	}

	stats, err := service.tourRepository.Stats(context)
	if err != nil {
		return nil, err
	}

	if service.statsCache != nil {
		if err := service.statsCache.SetStats(context, stats); err != nil {
			service.logger.Warn("tour_stats_cache_write_failed", slog.Any("error", err))
		}
	}

	return stats, nil
}

/*
MonthlyPlan returns the per-month departure plan for a year.

Parameters:
  - context: context.Context
  - year: int (e.g. 2026)

Returns:
  - []MonthlyPlanEntry: Busiest months first
  - error: Storage failures
*/
func (service *Service) MonthlyPlan(context context.Context, year int) ([]MonthlyPlanEntry, error) {
	return service.tourRepository.MonthlyPlan(context, year)
}

/*
Near returns tours starting within radiusKm of a point.

Parameters:
  - context: context.Context
  - latitude, longitude: float64 (degrees)
  - radiusKm: float64

Returns:
  - []NearTour: Closest first
  - error: Storage failures
*/
func (service *Service) Near(context context.Context, latitude, longitude, radiusKm float64) ([]NearTour, error) {
	return service.tourRepository.Near(context, latitude, longitude, radiusKm)
}

/*
Distances returns the distance from a point to every locatable tour.

Parameters:
  - context: context.Context
  - latitude, longitude: float64 (degrees)

Returns:
  - []NearTour: All locatable tours with their computed distance, closest first
  - error: Storage failures
*/
func (service *Service) Distances(context context.Context, latitude, longitude float64) ([]NearTour, error) {
	return service.tourRepository.Distances(context, latitude, longitude)
}

// # Catalog Mutations

// CreateInput holds the data required to publish a new tour.
type CreateInput struct {
	Name           string
	Duration       int
	MaxGroupSize   int
	Difficulty     string
	Price          float64
	PriceDiscount  *float64
	Summary        string
	Description    string
	ImageCover     string
	Images         []string
	StartDates     []time.Time
	StartLatitude  *float64
	StartLongitude *float64
	Secret         bool
}

/*
Create validates and persists a new tour.

Description: The slug derives from the name; the rating aggregate starts at
its seed values and is owned by the aggregator from then on.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Tour: The created entity
  - error: Validation, Conflict, or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Tour, error) {
	if err := validateDiscount(input.Price, input.PriceDiscount); err != nil {
		return nil, err
	}

	tour := &Tour{
		ID:              uuidv7.New(),
		Name:            input.Name,
		Slug:            slug.From(input.Name),
		Duration:        input.Duration,
		MaxGroupSize:    input.MaxGroupSize,
		Difficulty:      input.Difficulty,
		Price:           input.Price,
		PriceDiscount:   input.PriceDiscount,
		Summary:         input.Summary,
		Description:     input.Description,
		ImageCover:      input.ImageCover,
		Images:          input.Images,
		StartDates:      input.StartDates,
		StartLatitude:   input.StartLatitude,
		StartLongitude:  input.StartLongitude,
		Secret:          input.Secret,
		RatingsAverage:  rating.DefaultAverage,
		RatingsQuantity: rating.DefaultQuantity,
	}

	if err := service.tourRepository.Create(context, tour); err != nil {
		return nil, err
	}

	return tour, nil
}

// UpdateInput carries a partial tour mutation. Nil fields are left untouched.
type UpdateInput struct {
	Name           *string
	Duration       *int
	MaxGroupSize   *int
	Difficulty     *string
	Price          *float64
	PriceDiscount  *float64
	Summary        *string
	Description    *string
	ImageCover     *string
	Images         []string
	StartDates     []time.Time
	StartLatitude  *float64
	StartLongitude *float64
	Secret         *bool
}

/*
Update applies a partial mutation to an existing tour.

Description: A name change regenerates the slug. The rating aggregate cannot
move through this path.

Parameters:
  - context: context.Context
  - id: string
  - input: UpdateInput

Returns:
  - *Tour: The updated entity
  - error: apperr.NotFound, validation, or storage failures
*/
func (service *Service) Update(context context.Context, id string, input UpdateInput) (*Tour, error) {
	tour, err := service.tourRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		tour.Name = *input.Name
		tour.Slug = slug.From(*input.Name)
	}
	if input.Duration != nil {
		tour.Duration = *input.Duration
	}
	if input.MaxGroupSize != nil {
		tour.MaxGroupSize = *input.MaxGroupSize
	}
	if input.Difficulty != nil {
		tour.Difficulty = *input.Difficulty
	}
	if input.Price != nil {
		tour.Price = *input.Price
	}
	if input.PriceDiscount != nil {
		tour.PriceDiscount = input.PriceDiscount
	}
	if input.Summary != nil {
		tour.Summary = *input.Summary
	}
	if input.Description != nil {
		tour.Description = *input.Description
	}
	if input.ImageCover != nil {
		tour.ImageCover = *input.ImageCover
	}
	if input.Images != nil {
		tour.Images = input.Images
	}
	if input.StartDates != nil {
		tour.StartDates = input.StartDates
	}
	if input.StartLatitude != nil {
		tour.StartLatitude = input.StartLatitude
	}
	if input.StartLongitude != nil {
		tour.StartLongitude = input.StartLongitude
	}
	if input.Secret != nil {
		tour.Secret = *input.Secret
	}

	if err := validateDiscount(tour.Price, tour.PriceDiscount); err != nil {
		return nil, err
	}

	if err := service.tourRepository.Update(context, tour); err != nil {
		return nil, err
	}

	return tour, nil
}

/*
Delete removes a tour permanently.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, id string) error {
	return service.tourRepository.Delete(context, id)
}

// validateDiscount enforces that a discount stays below the regular price.
func validateDiscount(price float64, discount *float64) error {
	if discount != nil && *discount >= price {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "price_discount",
			Message: "Discount price should be below regular price",
		})
	}
	return nil
}
