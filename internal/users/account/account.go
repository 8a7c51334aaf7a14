// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles user profile management and account administration.

It provides functionalities for users to view and update their own identity
data and deactivate their account, plus the admin-facing user directory.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Listing: The admin directory is driven by the shared listquery grammar.
  - Security: Self-service routes operate strictly on the authenticated
    principal; the directory requires the admin role.
*/
package account

import (
	"context"

	"github.com/taibuivan/wayfarer/internal/platform/listquery"
	"github.com/taibuivan/wayfarer/internal/users/auth"
)

// ListSchema declares the filterable/sortable surface of the user directory.
var ListSchema = listquery.Schema{
	Columns: map[string]string{
		"name":       "name",
		"email":      "email",
		"role":       "role",
		"created_at": "created_at",
	},
	DefaultSort: []listquery.SortKey{{Field: "created_at", Desc: true}},
}

// # Repository Contracts

// AccountRepository defines the persistence contract for profile management.
type AccountRepository interface {
	/*
		FindByID retrieves an active user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		UpdateProfile modifies the mutable profile fields (name, email, photo)
		of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Conflict on duplicate name/email, or storage failures
	*/
	UpdateProfile(context context.Context, user *auth.User) error

	/*
		Deactivate flags an account as inactive.

		Description: Deactivation is logical deletion: the row survives, but
		every read path stops seeing it.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Execution failures
	*/
	Deactivate(context context.Context, id string) error

	/*
		List returns a page of active users shaped by the list descriptor.

		Parameters:
		  - context: context.Context
		  - descriptor: listquery.Descriptor (filters, sort, pagination)

		Returns:
		  - []*auth.User: The requested page
		  - error: Storage failures
	*/
	List(context context.Context, descriptor listquery.Descriptor) ([]*auth.User, error)
}
