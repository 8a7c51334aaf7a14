// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package request provides small helpers for extracting typed data out of an
// incoming HTTP request: JSON bodies, chi URL parameters and the
// authenticated principal attached by the middleware chain.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/ctxutil"
	"github.com/taibuivan/wayfarer/internal/platform/sec"
	"github.com/taibuivan/wayfarer/internal/platform/validate"
)

// maxBodyBytes caps request bodies at 1 MiB. The API carries small JSON
// documents only; anything larger is a client mistake or abuse.
const maxBodyBytes = 1 << 20

/*
DecodeJSON decodes the request body into destination.

Parameters:
  - writer: used to enforce the body size limit via http.MaxBytesReader.
  - request: the incoming request whose body is consumed.
  - destination: pointer to the struct the JSON document is decoded into.

Returns:
  - error: [validate.ErrInvalidJSON] on malformed input, or a size-specific
    [apperr.AppError] when the body exceeds the limit.

Description:
Unknown fields are rejected so clients get an early signal when they post
misspelled or unsupported keys (e.g. "password" on a profile update route).
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, destination any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)

	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(destination); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return apperr.BadRequest("Request body is too large")
		}
		return validate.ErrInvalidJSON
	}

	// A body must contain exactly one JSON document.
	if decoder.More() {
		return validate.ErrInvalidJSON
	}
	_, _ = io.Copy(io.Discard, request.Body)

	return nil
}

// Param returns the named chi URL parameter, e.g. Param(r, "tourID").
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ID extracts and validates a UUID URL parameter.

Parameters:
  - request: the incoming request.
  - name: the chi route parameter name (e.g. "id", "tourID").

Returns:
  - string: the validated UUID.
  - error: a validation [apperr.AppError] when the parameter is missing or malformed.
*/
func ID(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if err := (&validate.Validator{}).UUID(name, value).Err(); err != nil {
		return "", apperr.BadRequest("Invalid identifier: " + value)
	}
	return value, nil
}

// Principal returns the authenticated principal from the request context, or
// nil when the request is anonymous.
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal returns the authenticated principal or a 401 error.

Handlers behind the RequireAuth middleware can rely on the principal always
being present; this helper exists as a guard for misconfigured routes.
*/
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized("You are not logged in! Please log in to get access")
	}
	return principal, nil
}

// RequiredUserID is a shortcut returning just the authenticated user's ID.
func RequiredUserID(request *http.Request) (string, error) {
	principal, err := RequiredPrincipal(request)
	if err != nil {
		return "", err
	}
	return principal.UserID, nil
}
