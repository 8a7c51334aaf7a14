// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/wayfarer/internal/platform/sec"
)

// User is the central identity entity of the platform.
//
// # Security
//
// Credential material (password hash, reset token state) carries `json:"-"`
// tags so it can never leak through an API response, regardless of which
// handler serializes the entity.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  sec.Role `json:"role"`
	Photo string   `json:"photo,omitempty"`

	// Active is false once the account has been deactivated. Inactive
	// accounts are invisible to every read path.
	Active bool `json:"-"`

	PasswordHash      string     `json:"-"`
	PasswordChangedAt *time.Time `json:"-"`

	// Reset token state lives on the user row itself: hash-at-rest, with a
	// hard expiry. The plaintext token exists only in the reset email.
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangedPasswordAfter reports whether the password was changed after the
// given credential issue time.
//
// Comparison happens at second granularity to match the credential's `iat`
// claim resolution. Combined with the one-second skew written on every
// password change, a credential issued before the change always fails this
// check, and one issued by the change itself always passes.
func (user *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if user.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < user.PasswordChangedAt.Unix()
}

// Principal maps the user onto the request-scoped security principal.
func (user *User) Principal() *sec.Principal {
	return &sec.Principal{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
}
