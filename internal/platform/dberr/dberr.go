// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr translates pgx/PostgreSQL driver errors into the operational
// [apperr.AppError] values the rest of the application understands.
//
// Storage implementations call [Translate] at their boundary so that services
// and handlers never import pgx error types directly.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
)

// PostgreSQL error codes we translate explicitly.
// Reference: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
	codeCheckViolation      = "23514"
)

/*
Translate converts a storage-layer error into an [apperr.AppError].

Parameters:
  - err: the raw error returned by a pgx query or exec call.
  - resource: the human-readable entity name used in not-found messages
    (e.g. "Tour", "User", "Review").

Returns:
  - error: nil if err is nil, otherwise an operational [apperr.AppError].

Description:
The mapping mirrors the API's contract:

  - pgx.ErrNoRows            -> 404 "<Resource> not found"
  - unique_violation (23505) -> 409 duplicate field value
  - foreign_key (23503)      -> 400 referenced resource missing
  - invalid_text_repr (22P02)-> 400 malformed identifier
  - check_violation (23514)  -> 400 constraint violation
  - anything else            -> 500 with the cause preserved for logging
*/
func Translate(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case codeUniqueViolation:
			return apperr.Conflict("Duplicated field value. Please use another value")
		case codeForeignKeyViolation:
			return apperr.BadRequest("Referenced " + resource + " does not exist")
		case codeInvalidTextRepr:
			return apperr.BadRequest("Invalid identifier format")
		case codeCheckViolation:
			return apperr.BadRequest("Value violates a data constraint")
		}
	}

	return apperr.Internal(fmt.Errorf("dberr_%s: %w", resource, err))
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, optionally restricted to a specific constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgError *pgconn.PgError
	if !errors.As(err, &pgError) || pgError.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgError.ConstraintName == constraint
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign-key
// violation. Stores use it when the referenced entity needs a more precise
// error than the generic translation.
func IsForeignKeyViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == codeForeignKeyViolation
}
