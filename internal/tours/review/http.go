// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/platform/middleware"
	requestutil "github.com/taibuivan/wayfarer/internal/platform/request"
	"github.com/taibuivan/wayfarer/internal/platform/respond"
	"github.com/taibuivan/wayfarer/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements review HTTP endpoints, both the flat /reviews surface
// and the nested /tours/{tourID}/reviews surface.
type Handler struct {
	reviewService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{reviewService: service}
}

// RegisterRoutes mounts the flat review endpoints.
//
// # Endpoints
//   - GET    /        : Lists reviews across all tours.
//   - GET    /{id}    : Retrieves one review.
//   - POST   /        : Creates a review (tour ID from the payload).
//   - PATCH  /{id}    : Updates the caller's own review.
//   - DELETE /{id}    : Deletes the caller's own review.
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// Public endpoints
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Patch("/{id}", handler.update)
		r.Delete("/{id}", handler.remove)
	})
}

// RegisterNestedRoutes mounts the tour-scoped review endpoints. The parent
// router must carry a {tourID} URL parameter.
//
// # Endpoints
//   - GET  / : Lists the tour's reviews.
//   - POST / : Creates a review for the tour in the path.
func (handler *Handler) RegisterNestedRoutes(router chi.Router) {
	router.Get("/", handler.list)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
	})
}

// # Request Payloads

type createReviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
	TourID  string `json:"tour_id"`
}

type updateReviewRequest struct {
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

/*
List returns a page of reviews.

GET /api/v1/reviews
GET /api/v1/tours/{tourID}/reviews

Description: On the nested route, results are scoped to the tour in the
path. Filtering, sorting, projection, and pagination follow the standard
list-query grammar.

Response:
  - 200: []Review: The requested page with a result count
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	tourID := requestutil.Param(request, "tourID")
	descriptor := listquery.Parse(request.URL.Query(), ListSchema)

	reviews, err := handler.reviewService.List(request.Context(), tourID, descriptor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(reviews), listquery.Project(descriptor.Fields, reviews))
}

/*
Get retrieves a single review.

GET /api/v1/reviews/{id}

Response:
  - 200: Review: The requested review with its author's name
  - 404: ErrNotFound: Unknown review ID
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.reviewService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

/*
Create posts a new review for a tour.

POST /api/v1/reviews
POST /api/v1/tours/{tourID}/reviews

Description: The author is always the authenticated user. On the nested
route the tour comes from the path and overrides any payload value. At most
one review per user per tour.

Request:
  - Body: createReviewRequest (Content, Rating, TourID)

Response:
  - 201: Review: The created review
  - 404: ErrNotFound: Referenced tour does not exist
  - 409: ErrConflict: The user already reviewed this tour
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createReviewRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if tourID := requestutil.Param(request, "tourID"); tourID != "" {
		input.TourID = tourID
	}

	v := &validate.Validator{}
	v.Required("content", input.Content).
		Range("rating", input.Rating, MinRating, MaxRating).
		Required("tour_id", input.TourID).
		UUID("tour_id", input.TourID)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.reviewService.Create(request.Context(), CreateInput{
		Content: input.Content,
		Rating:  input.Rating,
		TourID:  input.TourID,
		UserID:  userID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, review)
}

/*
Update modifies the caller's own review.

PATCH /api/v1/reviews/{id}

Request:
  - Body: updateReviewRequest (Content, Rating — both optional)

Response:
  - 200: Review: The updated review
  - 403: ErrForbidden: Review belongs to another user
  - 404: ErrNotFound: Unknown review ID
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateReviewRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Content != nil {
		v.Required("content", *input.Content)
	}
	if input.Rating != nil {
		v.Range("rating", *input.Rating, MinRating, MaxRating)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	review, err := handler.reviewService.Update(request.Context(), id, userID, UpdateInput{
		Content: input.Content,
		Rating:  input.Rating,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, review)
}

/*
Remove deletes the caller's own review.

DELETE /api/v1/reviews/{id}

Response:
  - 204: No content
  - 403: ErrForbidden: Review belongs to another user
  - 404: ErrNotFound: Unknown review ID
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.reviewService.Delete(request.Context(), id, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
