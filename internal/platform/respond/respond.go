// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond centralizes HTTP response writing so every handler emits the
// same envelope:
//
//	{"status": "success", "data": {...}}             // single resource
//	{"status": "success", "results": 3, "data": [..]} // collections
//	{"status": "fail",  "message": "..."}             // client errors (4xx)
//	{"status": "error", "message": "..."}             // server errors (5xx)
//
// # Error translation
//
// [Error] is the single place where internal errors become HTTP responses.
// Services return [apperr.AppError] values; anything else is treated as an
// unexpected failure, logged with its cause, and surfaced as an opaque 500.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/constants"
	"github.com/taibuivan/wayfarer/internal/platform/ctxutil"
)

// envelope is the wire shape shared by all success responses.
type envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// errorEnvelope is the wire shape shared by all error responses.
type errorEnvelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

/*
JSON writes an arbitrary success payload with the given HTTP status code.

Parameters:
  - writer: the http.ResponseWriter to write to.
  - status: the HTTP status code (e.g. 200, 201).
  - data: the payload placed under the "data" key; may be nil.

Description:
Most handlers should prefer the [OK], [Created] and [List] shortcuts; JSON
exists for the occasional non-standard status code.
*/
func JSON(writer http.ResponseWriter, status int, data any) {
	write(writer, status, envelope{Status: "success", Data: data})
}

// OK writes a 200 response with the payload under "data".
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, data)
}

// Created writes a 201 response with the payload under "data".
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, data)
}

/*
List writes a 200 response for a collection, including the "results" count.

Parameters:
  - writer: the http.ResponseWriter to write to.
  - count: the number of items in this page of the collection.
  - data: the collection payload placed under the "data" key.
*/
func List(writer http.ResponseWriter, count int, data any) {
	write(writer, http.StatusOK, envelope{Status: "success", Results: &count, Data: data})
}

// NoContent writes a 204 response with an empty body.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

/*
Error translates an error into the appropriate HTTP error response.

Parameters:
  - writer: the http.ResponseWriter to write to.
  - request: the originating request, used to recover the request-scoped logger.
  - err: the error to translate; typically a *apperr.AppError.

Description:
Known [apperr.AppError] values map directly onto their HTTP status and message.
Any other error is wrapped as [apperr.Internal]: the cause is logged with the
request ID for operators, while the client only ever sees a generic message.
*/
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError, ok := apperr.As(err)
	if !ok {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger := ctxutil.GetLogger(request.Context())
		logger.Error("request_failed",
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.String("method", request.Method),
			slog.String("path", request.URL.Path),
			slog.Int("status", appError.HTTPStatus),
			slog.Any("cause", appError.Unwrap()),
		)
	}

	write(writer, appError.HTTPStatus, errorEnvelope{
		Status:  appError.Status,
		Message: appError.Message,
		Details: appError.Details,
	})
}

// write serializes the body as JSON. Serialization failures at this point are
// unrecoverable (headers already committed), so they are only logged.
func write(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(body); err != nil {
		slog.Error("respond_encode_failed", slog.Any("error", err))
	}
}
