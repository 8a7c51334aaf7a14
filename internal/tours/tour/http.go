// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tour

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/platform/middleware"
	requestutil "github.com/taibuivan/wayfarer/internal/platform/request"
	"github.com/taibuivan/wayfarer/internal/platform/respond"
	"github.com/taibuivan/wayfarer/internal/platform/sec"
	"github.com/taibuivan/wayfarer/internal/platform/validate"
	"github.com/taibuivan/wayfarer/internal/tours/review"
)

// # Definitions & Constructors

// ReviewsLister supplies a tour's reviews for the detail view without this
// package owning review persistence.
type ReviewsLister interface {
	List(ctx context.Context, tourID string, descriptor listquery.Descriptor) ([]*review.Review, error)
}

// Handler implements the tour catalog HTTP endpoints.
type Handler struct {
	tourService   *Service
	reviewsLister ReviewsLister
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(service *Service, reviewsLister ReviewsLister) *Handler {
	return &Handler{tourService: service, reviewsLister: reviewsLister}
}

// RegisterRoutes mounts the tour endpoints.
//
// # Endpoints
//   - GET    /                     : Lists tours through the list-query grammar.
//   - GET    /top-5-tours          : Preset "best value" listing.
//   - GET    /tours-stats          : Grouped rating/price aggregates (authenticated).
//   - GET    /monthly-plan/{year}  : Start-date planning view (staff roles).
//   - GET    /near-tours           : Tours within a radius (authenticated).
//   - GET    /distances            : Distance to every tour from a point.
//   - GET    /{tourID}             : One tour with its reviews.
//   - POST   /                     : Creates a tour (admin, lead-guide).
//   - PATCH  /{tourID}             : Updates a tour (admin, lead-guide).
//   - DELETE /{tourID}             : Deletes a tour (admin, lead-guide).
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// Public endpoints
	router.Get("/", handler.list)
	router.Get("/top-5-tours", handler.topTours)
	router.Get("/distances", handler.distances)
	router.Get("/{tourID}", handler.get)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/tours-stats", handler.stats)
		r.Get("/near-tours", handler.nearTours)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin, sec.RoleLeadGuide, sec.RoleGuide))
		r.Get("/monthly-plan/{year}", handler.monthlyPlan)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin, sec.RoleLeadGuide))
		r.Post("/", handler.create)
		r.Patch("/{tourID}", handler.update)
		r.Delete("/{tourID}", handler.remove)
	})
}

// # Request Payloads

type createTourRequest struct {
	Name           string      `json:"name"`
	Duration       int         `json:"duration"`
	MaxGroupSize   int         `json:"max_group_size"`
	Difficulty     string      `json:"difficulty"`
	Price          float64     `json:"price"`
	PriceDiscount  *float64    `json:"price_discount"`
	Summary        string      `json:"summary"`
	Description    string      `json:"description"`
	ImageCover     string      `json:"image_cover"`
	Images         []string    `json:"images"`
	StartDates     []time.Time `json:"start_dates"`
	StartLatitude  *float64    `json:"start_latitude"`
	StartLongitude *float64    `json:"start_longitude"`
	Secret         bool        `json:"secret_tour"`
}

type updateTourRequest struct {
	Name           *string     `json:"name"`
	Duration       *int        `json:"duration"`
	MaxGroupSize   *int        `json:"max_group_size"`
	Difficulty     *string     `json:"difficulty"`
	Price          *float64    `json:"price"`
	PriceDiscount  *float64    `json:"price_discount"`
	Summary        *string     `json:"summary"`
	Description    *string     `json:"description"`
	ImageCover     *string     `json:"image_cover"`
	Images         []string    `json:"images"`
	StartDates     []time.Time `json:"start_dates"`
	StartLatitude  *float64    `json:"start_latitude"`
	StartLongitude *float64    `json:"start_longitude"`
	Secret         *bool       `json:"secret_tour"`
}

// tourWithReviews is the detail-view projection: the tour plus its reviews.
type tourWithReviews struct {
	*Tour
	Reviews []*review.Review `json:"reviews"`
}

/*
List returns a page of tours.

GET /api/v1/tours

Description: Filtering, sorting, projection, and pagination follow the
standard list-query grammar (e.g. ?price[lte]=1000&sort=-ratings_average).

Response:
  - 200: []Tour: The requested page with a result count
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	descriptor := listquery.Parse(request.URL.Query(), ListSchema)

	tours, err := handler.tourService.List(request.Context(), descriptor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(tours), listquery.Project(descriptor.Fields, tours))
}

/*
TopTours returns the five best-value tours.

GET /api/v1/tours/top-5-tours

Description: A preset listing sorted by rating (descending) then price,
ignoring any client-provided query parameters.

Response:
  - 200: []Tour: At most five tours
*/
func (handler *Handler) topTours(writer http.ResponseWriter, request *http.Request) {
	tours, err := handler.tourService.TopTours(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(tours), listquery.Project(TopToursFields, tours))
}

/*
Get retrieves a single tour together with its reviews.

GET /api/v1/tours/{tourID}

Response:
  - 200: tourWithReviews: The tour and its review list
  - 404: ErrNotFound: Unknown or secret tour
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "tourID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tour, err := handler.tourService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reviews, err := handler.reviewsLister.List(request.Context(), id, listquery.Descriptor{
		Sort:  []listquery.SortKey{{Field: "created_at", Desc: true}},
		Page:  1,
		Limit: listquery.MaxLimit,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tourWithReviews{Tour: tour, Reviews: reviews})
}

/*
Stats returns rating and price aggregates grouped by difficulty.

GET /api/v1/tours/tours-stats

Response:
  - 200: []Stats: One row per difficulty
  - 401: ErrUnauthorized: Not logged in
*/
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.tourService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

/*
MonthlyPlan returns how many tours start in each month of a year.

GET /api/v1/tours/monthly-plan/{year}

Response:
  - 200: []MonthlyPlanEntry: Busiest months first
  - 400: ErrBadRequest: Year is not a four-digit number
  - 403: ErrForbidden: Caller is not staff
*/
func (handler *Handler) monthlyPlan(writer http.ResponseWriter, request *http.Request) {
	year, err := strconv.Atoi(requestutil.Param(request, "year"))
	if err != nil || year < 1000 || year > 9999 {
		respond.Error(writer, request, apperr.BadRequest("Please provide a valid four-digit year"))
		return
	}

	plan, err := handler.tourService.MonthlyPlan(request.Context(), year)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(plan), plan)
}

/*
NearTours returns the tours starting within a radius of a coordinate.

GET /api/v1/tours/near-tours?latitude=48.85&longitude=2.35&distance=200

Description: distance is a radius in kilometers. Results are ordered nearest
first and carry the computed distance.

Response:
  - 200: []NearTour: Tours inside the radius
  - 400: ErrBadRequest: Missing or malformed coordinates
  - 401: ErrUnauthorized: Not logged in
*/
func (handler *Handler) nearTours(writer http.ResponseWriter, request *http.Request) {
	latitude, longitude, err := parseCoordinates(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	radiusKm, parseErr := strconv.ParseFloat(request.URL.Query().Get("distance"), 64)
	if parseErr != nil || radiusKm <= 0 {
		respond.Error(writer, request, apperr.BadRequest("Please provide a positive distance in kilometers"))
		return
	}

	tours, err := handler.tourService.Near(request.Context(), latitude, longitude, radiusKm)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(tours), tours)
}

/*
Distances returns the distance from a point to every locatable tour.

GET /api/v1/tours/distances?latitude=48.85&longitude=2.35

Description: The same haversine computation as near-tours without a radius
cut-off: every tour that has a start point, closest first.

Response:
  - 200: []NearTour: All locatable tours with their distance in kilometers
  - 400: ErrBadRequest: Missing or malformed coordinates
*/
func (handler *Handler) distances(writer http.ResponseWriter, request *http.Request) {
	latitude, longitude, err := parseCoordinates(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	tours, err := handler.tourService.Distances(request.Context(), latitude, longitude)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(tours), tours)
}

// parseCoordinates reads the latitude/longitude query pair.
func parseCoordinates(request *http.Request) (float64, float64, error) {
	query := request.URL.Query()

	latitude, latitudeErr := strconv.ParseFloat(query.Get("latitude"), 64)
	longitude, longitudeErr := strconv.ParseFloat(query.Get("longitude"), 64)
	if latitudeErr != nil || longitudeErr != nil {
		return 0, 0, apperr.BadRequest("Please provide latitude and longitude as decimal degrees")
	}

	return latitude, longitude, nil
}

/*
Create publishes a new tour.

POST /api/v1/tours

Request:
  - Body: createTourRequest

Response:
  - 201: Tour: The created tour with its generated slug
  - 400: ErrInvalidJSON: Validation failure
  - 403: ErrForbidden: Caller is not admin or lead-guide
  - 409: ErrConflict: Tour name already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createTourRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).
		MinLen("name", input.Name, MinNameLength).
		MaxLen("name", input.Name, MaxNameLength).
		OneOf("difficulty", input.Difficulty, DifficultyEasy, DifficultyMedium, DifficultyDifficult).
		Positive("price", input.Price).
		Custom("duration", input.Duration <= 0, "Must be a positive number").
		Custom("max_group_size", input.MaxGroupSize <= 0, "Must be a positive number").
		Required("summary", input.Summary)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tour, err := handler.tourService.Create(request.Context(), CreateInput{
		Name:           input.Name,
		Duration:       input.Duration,
		MaxGroupSize:   input.MaxGroupSize,
		Difficulty:     input.Difficulty,
		Price:          input.Price,
		PriceDiscount:  input.PriceDiscount,
		Summary:        input.Summary,
		Description:    input.Description,
		ImageCover:     input.ImageCover,
		Images:         input.Images,
		StartDates:     input.StartDates,
		StartLatitude:  input.StartLatitude,
		StartLongitude: input.StartLongitude,
		Secret:         input.Secret,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, tour)
}

/*
Update applies a partial mutation to a tour.

PATCH /api/v1/tours/{tourID}

Request:
  - Body: updateTourRequest (all fields optional)

Response:
  - 200: Tour: The updated tour
  - 400: ErrInvalidJSON: Validation failure
  - 404: ErrNotFound: Unknown or secret tour
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "tourID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTourRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).
			MinLen("name", *input.Name, MinNameLength).
			MaxLen("name", *input.Name, MaxNameLength)
	}
	if input.Difficulty != nil {
		v.OneOf("difficulty", *input.Difficulty, DifficultyEasy, DifficultyMedium, DifficultyDifficult)
	}
	if input.Price != nil {
		v.Positive("price", *input.Price)
	}
	if input.Duration != nil {
		v.Custom("duration", *input.Duration <= 0, "Must be a positive number")
	}
	if input.MaxGroupSize != nil {
		v.Custom("max_group_size", *input.MaxGroupSize <= 0, "Must be a positive number")
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	tour, err := handler.tourService.Update(request.Context(), id, UpdateInput{
		Name:           input.Name,
		Duration:       input.Duration,
		MaxGroupSize:   input.MaxGroupSize,
		Difficulty:     input.Difficulty,
		Price:          input.Price,
		PriceDiscount:  input.PriceDiscount,
		Summary:        input.Summary,
		Description:    input.Description,
		ImageCover:     input.ImageCover,
		Images:         input.Images,
		StartDates:     input.StartDates,
		StartLatitude:  input.StartLatitude,
		StartLongitude: input.StartLongitude,
		Secret:         input.Secret,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tour)
}

/*
Remove deletes a tour permanently.

DELETE /api/v1/tours/{tourID}

Response:
  - 204: No content
  - 404: ErrNotFound: Unknown tour
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "tourID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.tourService.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
