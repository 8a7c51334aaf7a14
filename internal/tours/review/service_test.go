// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/pkg/pointer"
)

const (
	testTourID  = "01912345-0000-7000-8000-000000000001"
	testUserID  = "01912345-0000-7000-8000-0000000000aa"
	otherUserID = "01912345-0000-7000-8000-0000000000bb"
)

// memoryReviewRepository is an in-memory ReviewRepository double.
type memoryReviewRepository struct {
	reviews map[string]*Review
}

func newMemoryReviewRepository() *memoryReviewRepository {
	return &memoryReviewRepository{reviews: map[string]*Review{}}
}

func (repository *memoryReviewRepository) Create(_ context.Context, review *Review) error {
	for _, existing := range repository.reviews {
		if existing.TourID == review.TourID && existing.UserID == review.UserID {
			return apperr.Conflict("You have already reviewed this tour")
		}
	}
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	clone := *review
	repository.reviews[review.ID] = &clone
	return nil
}

func (repository *memoryReviewRepository) FindByID(_ context.Context, id string) (*Review, error) {
	review, ok := repository.reviews[id]
	if !ok {
		return nil, apperr.NotFound("Review")
	}
	clone := *review
	return &clone, nil
}

func (repository *memoryReviewRepository) List(_ context.Context, tourID string, _ listquery.Descriptor) ([]*Review, error) {
	reviews := []*Review{}
	for _, review := range repository.reviews {
		if tourID == "" || review.TourID == tourID {
			clone := *review
			reviews = append(reviews, &clone)
		}
	}
	return reviews, nil
}

func (repository *memoryReviewRepository) Update(_ context.Context, review *Review) error {
	stored, ok := repository.reviews[review.ID]
	if !ok {
		return apperr.NotFound("Review")
	}
	stored.Content = review.Content
	stored.Rating = review.Rating
	stored.UpdatedAt = time.Now()
	return nil
}

func (repository *memoryReviewRepository) Delete(_ context.Context, id string) error {
	if _, ok := repository.reviews[id]; !ok {
		return apperr.NotFound("Review")
	}
	delete(repository.reviews, id)
	return nil
}

func (repository *memoryReviewRepository) Summarize(_ context.Context, tourID string) (float64, int, error) {
	sum, count := 0, 0
	for _, review := range repository.reviews {
		if review.TourID == tourID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// recordingRecomputer records which tours had their aggregates refreshed.
type recordingRecomputer struct {
	tourIDs []string
}

func (recomputer *recordingRecomputer) Recompute(_ context.Context, tourID string) {
	recomputer.tourIDs = append(recomputer.tourIDs, tourID)
}

func newTestService(t *testing.T) (*Service, *memoryReviewRepository, *recordingRecomputer) {
	t.Helper()
	repository := newMemoryReviewRepository()
	recomputer := &recordingRecomputer{}
	service := NewService(repository, recomputer, slog.Default())
	return service, repository, recomputer
}

func TestCreateTriggersRecompute(t *testing.T) {
	service, _, recomputer := newTestService(t)

	review, err := service.Create(context.Background(), CreateInput{
		Content: "Breathtaking from start to finish",
		Rating:  5,
		TourID:  testTourID,
		UserID:  testUserID,
	})
	require.NoError(t, err)
	require.NotNil(t, review)

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, testUserID, review.UserID)
	assert.Equal(t, []string{testTourID}, recomputer.tourIDs)
}

func TestCreateSecondReviewForSameTourConflicts(t *testing.T) {
	service, _, recomputer := newTestService(t)

	_, err := service.Create(context.Background(), CreateInput{
		Content: "First impressions", Rating: 4, TourID: testTourID, UserID: testUserID,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateInput{
		Content: "Second thoughts", Rating: 2, TourID: testTourID, UserID: testUserID,
	})

	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 409, appError.HTTPStatus)

	// The failed create must not refresh the aggregate again.
	assert.Len(t, recomputer.tourIDs, 1)
}

func TestUpdateOwnerOnly(t *testing.T) {
	service, _, recomputer := newTestService(t)

	created, err := service.Create(context.Background(), CreateInput{
		Content: "Decent", Rating: 3, TourID: testTourID, UserID: testUserID,
	})
	require.NoError(t, err)

	_, err = service.Update(context.Background(), created.ID, otherUserID, UpdateInput{
		Rating: pointer.To(1),
	})
	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 403, appError.HTTPStatus)

	updated, err := service.Update(context.Background(), created.ID, testUserID, UpdateInput{
		Rating: pointer.To(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Decent", updated.Content)

	// Create + owner update refresh the aggregate; the forbidden attempt does not.
	assert.Equal(t, []string{testTourID, testTourID}, recomputer.tourIDs)
}

func TestDeleteOwnerOnlyAndRecompute(t *testing.T) {
	service, repository, recomputer := newTestService(t)

	created, err := service.Create(context.Background(), CreateInput{
		Content: "Will remove", Rating: 2, TourID: testTourID, UserID: testUserID,
	})
	require.NoError(t, err)

	err = service.Delete(context.Background(), created.ID, otherUserID)
	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 403, appError.HTTPStatus)

	require.NoError(t, service.Delete(context.Background(), created.ID, testUserID))
	assert.Empty(t, repository.reviews)
	assert.Equal(t, []string{testTourID, testTourID}, recomputer.tourIDs)
}

func TestDeleteUnknownReviewReturnsNotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	err := service.Delete(context.Background(), "01912345-0000-7000-8000-00000000dead", testUserID)
	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 404, appError.HTTPStatus)
}
