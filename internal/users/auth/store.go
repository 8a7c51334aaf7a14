// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Repository Contracts

// UserRepository defines the persistence contract for identity records.
//
// Every read method filters out deactivated accounts: from the outside, an
// inactive user is indistinguishable from a missing one.
type UserRepository interface {
	/*
		Create persists a brand new user record.

		Parameters:
		  - context: context.Context
		  - user: *User (Entity to persist)

		Returns:
		  - error: Unique constraint violations (name, email) or storage failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID retrieves an active user by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *User: Hydrated entity including credential material
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail retrieves an active user by their unique email address.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity including credential material
		  - error: apperr.NotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByResetTokenHash retrieves an active user by the SHA-256 hash of a
		password reset token.

		Description: Lookup happens by hash so the plaintext token never
		touches the database. Expiry is NOT checked here; the service layer
		owns that decision.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (hex-encoded SHA-256)

		Returns:
		  - *User: Hydrated entity including reset token state
		  - error: apperr.NotFound or storage failures
	*/
	FindByResetTokenHash(context context.Context, tokenHash string) (*User, error)

	/*
		SetResetToken stores a hashed reset token and its expiry on the user row.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - tokenHash: string (hex-encoded SHA-256)
		  - expiresAt: time.Time

		Returns:
		  - error: Storage failures
	*/
	SetResetToken(context context.Context, userID, tokenHash string, expiresAt time.Time) error

	/*
		ClearResetToken removes any reset token state from the user row.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Storage failures
	*/
	ClearResetToken(context context.Context, userID string) error

	/*
		UpdatePassword replaces the password hash, records the change
		timestamp, and clears any outstanding reset token in one statement.

		Description: Clearing the reset token atomically with the password
		write is what makes reset tokens single-use.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - passwordHash: string (bcrypt)
		  - changedAt: time.Time (already skew-adjusted by the service)

		Returns:
		  - error: Storage failures
	*/
	UpdatePassword(context context.Context, userID, passwordHash string, changedAt time.Time) error
}
