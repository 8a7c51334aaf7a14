// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// Role represents the authorization level granted to an account.
//
// The set is closed: routes authorize against explicit allow-lists of these
// values, never against a hierarchy or dynamic policy.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Can create and manage tours and see operational plans
	RoleLeadGuide Role = "lead-guide"

	// Accompanies tours; read access to operational plans
	RoleGuide Role = "guide"

	// Default role for standard registered users
	RoleUser Role = "user"
)

// IsValid reports whether the role is a member of the closed role set.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLeadGuide, RoleGuide, RoleUser:
		return true
	}
	return false
}

// In reports whether the role appears in the given allow-list.
func (r Role) In(allowed ...Role) bool {
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// # Authenticated Subject

// Principal is the resolved identity attached to a request context after the
// authentication gate has passed.
//
// It is a snapshot of the live user record, not of the token: the subject was
// re-resolved against storage, so deleted or deactivated accounts never
// appear here.
type Principal struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
