// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"context"
	"log/slog"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/pkg/uuidv7"
)

// Recomputer refreshes a tour's denormalized rating aggregate after review
// mutations. Recompute never fails the calling operation.
type Recomputer interface {
	Recompute(context context.Context, tourID string)
}

// Service orchestrates review use cases and keeps tour ratings in sync.
type Service struct {
	reviewRepository ReviewRepository
	recomputer       Recomputer
	logger           *slog.Logger
}

// NewService creates a new review service.
func NewService(reviewRepository ReviewRepository, recomputer Recomputer, logger *slog.Logger) *Service {
	return &Service{
		reviewRepository: reviewRepository,
		recomputer:       recomputer,
		logger:           logger,
	}
}

// # Queries

/*
List returns a page of reviews, optionally scoped to a single tour.

Parameters:
  - context: context.Context
  - tourID: string (empty = all tours)
  - descriptor: listquery.Descriptor

Returns:
  - []*Review: The requested page
  - error: Storage failures
*/
func (service *Service) List(context context.Context, tourID string, descriptor listquery.Descriptor) ([]*Review, error) {
	return service.reviewRepository.List(context, tourID, descriptor)
}

/*
Get retrieves a single review by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Review: Hydrated entity
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Get(context context.Context, id string) (*Review, error) {
	return service.reviewRepository.FindByID(context, id)
}

// # Commands

// CreateInput carries the fields needed to write a review. UserID always
// comes from the authenticated principal, never from the payload.
type CreateInput struct {
	Content string
	Rating  int
	TourID  string
	UserID  string
}

/*
Create persists a new review and refreshes the tour's rating aggregate.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Review: The persisted entity
  - error: Conflict, apperr.NotFound("Tour"), or storage failures
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Review, error) {
	review := &Review{
		ID:      uuidv7.New(),
		Content: input.Content,
		Rating:  input.Rating,
		TourID:  input.TourID,
		UserID:  input.UserID,
	}

	if err := service.reviewRepository.Create(context, review); err != nil {
		return nil, err
	}

	service.recomputer.Recompute(context, review.TourID)

	return service.reviewRepository.FindByID(context, review.ID)
}

// UpdateInput carries the mutable review fields. Nil pointers leave the
// current value untouched.
type UpdateInput struct {
	Content *string
	Rating  *int
}

/*
Update modifies a review owned by the requesting user and refreshes the
tour's rating aggregate.

Description: Only the review's author may modify it. Ownership is checked
against the stored row, not the payload.

Parameters:
  - context: context.Context
  - id: string (Review ID)
  - requesterID: string (Authenticated user ID)
  - input: UpdateInput

Returns:
  - *Review: The updated entity
  - error: apperr.NotFound, Forbidden, or storage failures
*/
func (service *Service) Update(context context.Context, id, requesterID string, input UpdateInput) (*Review, error) {
	review, err := service.reviewRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != requesterID {
		return nil, apperr.Forbidden("You can only modify your own reviews")
	}

	if input.Content != nil {
		review.Content = *input.Content
	}
	if input.Rating != nil {
		review.Rating = *input.Rating
	}

	if err := service.reviewRepository.Update(context, review); err != nil {
		return nil, err
	}

	service.recomputer.Recompute(context, review.TourID)

	return service.reviewRepository.FindByID(context, id)
}

/*
Delete removes a review owned by the requesting user and refreshes the
tour's rating aggregate.

Parameters:
  - context: context.Context
  - id: string (Review ID)
  - requesterID: string (Authenticated user ID)

Returns:
  - error: apperr.NotFound, Forbidden, or storage failures
*/
func (service *Service) Delete(context context.Context, id, requesterID string) error {
	review, err := service.reviewRepository.FindByID(context, id)
	if err != nil {
		return err
	}
	if review.UserID != requesterID {
		return apperr.Forbidden("You can only modify your own reviews")
	}

	if err := service.reviewRepository.Delete(context, id); err != nil {
		return err
	}

	service.recomputer.Recompute(context, review.TourID)

	return nil
}
