// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tour

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/tours/rating"
	"github.com/taibuivan/wayfarer/pkg/pointer"
)

// memoryTourRepository is an in-memory TourRepository double that records
// the last list descriptor it received.
type memoryTourRepository struct {
	tours          map[string]*Tour
	lastDescriptor listquery.Descriptor
	statsCalls     int
}

func newMemoryTourRepository() *memoryTourRepository {
	return &memoryTourRepository{tours: map[string]*Tour{}}
}

func (repository *memoryTourRepository) Create(_ context.Context, tour *Tour) error {
	for _, existing := range repository.tours {
		if existing.Name == tour.Name {
			return apperr.Conflict("Duplicated field value. Please use another value")
		}
	}
	clone := *tour
	repository.tours[tour.ID] = &clone
	return nil
}

func (repository *memoryTourRepository) FindByID(_ context.Context, id string) (*Tour, error) {
	tour, ok := repository.tours[id]
	if !ok || tour.Secret {
		return nil, apperr.NotFound("Tour")
	}
	clone := *tour
	return &clone, nil
}

func (repository *memoryTourRepository) List(_ context.Context, descriptor listquery.Descriptor) ([]*Tour, error) {
	repository.lastDescriptor = descriptor
	tours := []*Tour{}
	for _, tour := range repository.tours {
		if !tour.Secret {
			clone := *tour
			tours = append(tours, &clone)
		}
	}
	return tours, nil
}

func (repository *memoryTourRepository) Update(_ context.Context, tour *Tour) error {
	if _, ok := repository.tours[tour.ID]; !ok {
		return apperr.NotFound("Tour")
	}
	clone := *tour
	repository.tours[tour.ID] = &clone
	return nil
}

func (repository *memoryTourRepository) Delete(_ context.Context, id string) error {
	if _, ok := repository.tours[id]; !ok {
		return apperr.NotFound("Tour")
	}
	delete(repository.tours, id)
	return nil
}

func (repository *memoryTourRepository) UpdateRating(_ context.Context, tourID string, average float64, quantity int) error {
	tour, ok := repository.tours[tourID]
	if !ok {
		return apperr.NotFound("Tour")
	}
	tour.RatingsAverage = average
	tour.RatingsQuantity = quantity
	return nil
}

func (repository *memoryTourRepository) Stats(_ context.Context) ([]Stats, error) {
	repository.statsCalls++
	return []Stats{{Difficulty: DifficultyEasy, NumTours: 1}}, nil
}

func (repository *memoryTourRepository) MonthlyPlan(_ context.Context, _ int) ([]MonthlyPlanEntry, error) {
	return nil, nil
}

func (repository *memoryTourRepository) Near(_ context.Context, _, _, _ float64) ([]NearTour, error) {
	return nil, nil
}

func (repository *memoryTourRepository) Distances(_ context.Context, _, _ float64) ([]NearTour, error) {
	tours := []NearTour{}
	for _, tour := range repository.tours {
		if !tour.Secret {
			tours = append(tours, NearTour{Tour: *tour})
		}
	}
	return tours, nil
}

// memoryStatsCache is an in-memory StatsCache double.
type memoryStatsCache struct {
	stats       []Stats
	warm        bool
	failReads   bool
	invalidated int
}

func (cache *memoryStatsCache) GetStats(_ context.Context) ([]Stats, bool, error) {
	if cache.failReads {
		return nil, false, errors.New("connection refused")
	}
	return cache.stats, cache.warm, nil
}

func (cache *memoryStatsCache) SetStats(_ context.Context, stats []Stats) error {
	cache.stats = stats
	cache.warm = true
	return nil
}

func (cache *memoryStatsCache) InvalidateTourStats(_ context.Context) error {
	cache.stats = nil
	cache.warm = false
	cache.invalidated++
	return nil
}

func validCreateInput() CreateInput {
	return CreateInput{
		Name:         "The Forest Hiker Expedition",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   DifficultyEasy,
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
	}
}

func TestCreateSeedsRatingAggregateAndSlug(t *testing.T) {
	repository := newMemoryTourRepository()
	service := NewService(repository, nil, slog.Default())

	tour, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.NotEmpty(t, tour.ID)
	assert.Equal(t, "the-forest-hiker-expedition", tour.Slug)
	assert.Equal(t, rating.DefaultAverage, tour.RatingsAverage)
	assert.Equal(t, rating.DefaultQuantity, tour.RatingsQuantity)
}

func TestCreateRejectsDiscountAbovePrice(t *testing.T) {
	repository := newMemoryTourRepository()
	service := NewService(repository, nil, slog.Default())

	input := validCreateInput()
	input.PriceDiscount = pointer.To(500.0)

	_, err := service.Create(context.Background(), input)
	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appError.HTTPStatus)
	assert.Empty(t, repository.tours)
}

func TestUpdateNameRegeneratesSlug(t *testing.T) {
	repository := newMemoryTourRepository()
	service := NewService(repository, nil, slog.Default())

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, UpdateInput{
		Name: pointer.To("The Snow Adventurer Trek"),
	})
	require.NoError(t, err)

	assert.Equal(t, "the-snow-adventurer-trek", updated.Slug)
	assert.Equal(t, created.Price, updated.Price)
}

func TestUpdateRevalidatesDiscountAgainstNewPrice(t *testing.T) {
	repository := newMemoryTourRepository()
	service := NewService(repository, nil, slog.Default())

	created, err := service.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	_, err = service.Update(context.Background(), created.ID, UpdateInput{
		Price:         pointer.To(100.0),
		PriceDiscount: pointer.To(150.0),
	})
	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 400, appError.HTTPStatus)
}

func TestTopToursAppliesPreset(t *testing.T) {
	repository := newMemoryTourRepository()
	service := NewService(repository, nil, slog.Default())

	_, err := service.TopTours(context.Background())
	require.NoError(t, err)

	descriptor := repository.lastDescriptor
	assert.Equal(t, 5, descriptor.Limit)
	require.Len(t, descriptor.Sort, 2)
	assert.Equal(t, listquery.SortKey{Field: "ratings_average", Desc: true}, descriptor.Sort[0])
	assert.Equal(t, listquery.SortKey{Field: "price"}, descriptor.Sort[1])
	assert.Contains(t, descriptor.Fields, "ratings_average")
}

func TestStatsReadThroughCache(t *testing.T) {
	repository := newMemoryTourRepository()
	cache := &memoryStatsCache{}
	service := NewService(repository, cache, slog.Default())

	// Cold cache: computed from storage, then cached.
	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, repository.statsCalls)
	assert.True(t, cache.warm)

	// Warm cache: storage is not consulted again.
	_, err = service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repository.statsCalls)
}

func TestStatsDegradesWhenCacheFails(t *testing.T) {
	repository := newMemoryTourRepository()
	cache := &memoryStatsCache{failReads: true}
	service := NewService(repository, cache, slog.Default())

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats, 1)
	assert.Equal(t, 1, repository.statsCalls)
}
