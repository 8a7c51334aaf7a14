// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/platform/middleware"
	requestutil "github.com/taibuivan/wayfarer/internal/platform/request"
	"github.com/taibuivan/wayfarer/internal/platform/respond"
	"github.com/taibuivan/wayfarer/internal/platform/sec"
	"github.com/taibuivan/wayfarer/internal/platform/validate"
	"github.com/taibuivan/wayfarer/internal/users/auth"
)

// Handler implements profile and user-administration HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes mounts the account endpoints onto the users router.
//
// # Endpoints
//   - GET    /profile               : Current user's own profile.
//   - PATCH  /updateUserInformation : Partial profile update (never passwords).
//   - DELETE /inactiveAccount       : Deactivates the current account.
//   - GET    /                      : Admin user directory (list grammar).
//   - GET    /{id}                  : Admin single-user lookup.
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// Self-service endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/profile", handler.profile)
		r.Patch("/updateUserInformation", handler.updateInformation)
		r.Delete("/inactiveAccount", handler.deactivate)
	})

	// Administration endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/", handler.list)
		r.Get("/{id}", handler.getUser)
	})
}

// # Request Payloads

type updateInformationRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Photo *string `json:"photo"`

	// Present only so credential changes on this route can be rejected with
	// a pointed message instead of a generic decode failure.
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`
}

/*
Profile returns the authenticated user's own profile.

GET /api/v1/users/profile

Response:
  - 200: auth.User: The profile entity
  - 401: ErrUnauthorized: Not logged in
*/
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateInformation applies a partial update to the user's own profile.

PATCH /api/v1/users/updateUserInformation

Description: Accepts name, email and photo. Any attempt to move password
fields through this route is rejected with a redirect to /updatePassword.

Request:
  - Body: updateInformationRequest

Response:
  - 200: auth.User: The updated profile
  - 400: ErrBadRequest: Password fields present, or validation failure
  - 409: ErrConflict: Name or email already taken
*/
func (handler *Handler) updateInformation(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateInformationRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Password != nil || input.PasswordConfirm != nil {
		respond.Error(writer, request, apperr.BadRequest(
			"This route is not for password updates. Please use /updatePassword"))
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(auth.FieldName, *input.Name).
			MaxLen(auth.FieldName, *input.Name, auth.MaxNameLength)
	}
	if input.Email != nil {
		validator.Email(auth.FieldEmail, *input.Email)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateInformation(request.Context(), userID, UpdateInformationInput{
		Name:  input.Name,
		Email: input.Email,
		Photo: input.Photo,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Deactivate flags the authenticated user's account as inactive.

DELETE /api/v1/users/inactiveAccount

Response:
  - 204: No Content: Account deactivated
  - 401: ErrUnauthorized: Not logged in
*/
func (handler *Handler) deactivate(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Deactivate(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
List returns a page of the user directory.

GET /api/v1/users?role=guide&sort=-created_at&page=1&limit=20

Response:
  - 200: []auth.User: The requested page with a results count
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	descriptor := listquery.Parse(request.URL.Query(), ListSchema)

	users, err := handler.accountService.List(request.Context(), descriptor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.List(writer, len(users), listquery.Project(descriptor.Fields, users))
}

/*
GetUser returns a single user by ID.

GET /api/v1/users/{id}

Response:
  - 200: auth.User: The user entity
  - 404: ErrNotFound: Unknown or inactive user
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetUser(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
