// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wayfarer/internal/platform/constants"
	"github.com/taibuivan/wayfarer/internal/platform/middleware"
	requestutil "github.com/taibuivan/wayfarer/internal/platform/request"
	"github.com/taibuivan/wayfarer/internal/platform/respond"
	"github.com/taibuivan/wayfarer/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points: registration, login,
// and the two password rotation flows (forgot/reset and authenticated update).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// RegisterRoutes mounts the authentication endpoints onto the users router.
//
// # Endpoints
//   - POST  /signup                     : Creates a new account and logs it in.
//   - POST  /login                      : Authenticates and returns a credential.
//   - POST  /forgotPassword             : Emails a one-time reset link.
//   - PATCH /resetPassword/{resetToken} : Rotates the password via reset token.
//   - PATCH /updatePassword             : Rotates the password for the current user.
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// Public endpoints
	router.Post("/signup", handler.signUp)
	router.Post("/login", handler.login)
	router.Post("/forgotPassword", handler.forgotPassword)
	router.Patch("/resetPassword/{resetToken}", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Patch("/updatePassword", handler.updatePassword)
	})
}

// # Request Payloads

type signUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Photo           string `json:"photo"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	PasswordConfirm string `json:"password_confirm"`
}

/*
SignUp handles the creation of a new user account.

POST /api/v1/users/signup

Description: Validates input, persists a new user profile, and establishes
a session so freshly registered users are logged in immediately.

Request:
  - Body: signUpRequest (Name, Email, Password, PasswordConfirm, Photo)

Response:
  - 201: Session: Credential and created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Name or Email already exists
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Custom(FieldPasswordConfirm, input.Password != input.PasswordConfirm, "Passwords are not the same")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SignUp(request.Context(), SignUpInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Photo:    input.Photo,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session)
	respond.Created(writer, map[string]any{
		constants.FieldToken: session.Token,
		"user":               session.User,
	})
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/users/login

Description: Verifies credentials and returns a signed session credential,
mirrored into an http-only cookie.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Credential and user profile
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session)
	respond.OK(writer, map[string]any{
		constants.FieldToken: session.Token,
		"user":               session.User,
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/users/forgotPassword

Description: Sends a password reset link to the provided email if the
account exists. The response is identical either way.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Generic confirmation message
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ForgotPassword(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent",
	})
}

/*
ResetPassword completes the password recovery flow.

PATCH /api/v1/users/resetPassword/{resetToken}

Description: Validates the one-time reset token from the URL, updates the
password, and logs the user in with a fresh credential.

Request:
  - Path: resetToken (plaintext token from the reset email)
  - Body: resetPasswordRequest (Password, PasswordConfirm)

Response:
  - 200: Session: Fresh credential and user profile
  - 400: ErrBadRequest: Invalid or expired token, or weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	resetToken := requestutil.Param(request, "resetToken")
	if resetToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "This field is required"))
		return
	}

	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Custom(FieldPasswordConfirm, input.Password != input.PasswordConfirm, "Passwords are not the same")

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.ResetPassword(request.Context(), resetToken, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session)
	respond.OK(writer, map[string]any{
		constants.FieldToken: session.Token,
		"user":               session.User,
	})
}

/*
UpdatePassword rotates the authenticated user's password.

PATCH /api/v1/users/updatePassword

Description: Verifies the current password before applying the new one, then
issues a fresh credential. Older credentials become invalid immediately.

Request:
  - Body: updatePasswordRequest (CurrentPassword, NewPassword, PasswordConfirm)

Response:
  - 200: Session: Fresh credential and user profile
  - 401: ErrUnauthorized: Wrong current password or not logged in
  - 400: ErrInvalidJSON: Weak password or validation failure
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength).
		Custom(FieldPasswordConfirm, input.NewPassword != input.PasswordConfirm, "Passwords are not the same")

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.UpdatePassword(
		request.Context(),
		principal.UserID,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session)
	respond.OK(writer, map[string]any{
		constants.FieldToken: session.Token,
		"user":               session.User,
	})
}

// setSessionCookie mirrors the session credential into an http-only cookie
// for browser clients.
func (handler *Handler) setSessionCookie(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
