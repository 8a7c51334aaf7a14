// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (10 minutes) because the token grants a credential change.
	ResetTokenTTL = 10 * time.Minute

	// PasswordChangeSkew is subtracted from the recorded password change
	// timestamp. Credentials are issued with second-granularity `iat` claims;
	// the skew guarantees a token minted in the same second as the change is
	// still considered issued after it.
	PasswordChangeSkew = 1 * time.Second

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxNameLength bounds the display name.
	MaxNameLength = 60
)

// # Validation Field Identifiers

const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldPasswordConfirm = "password_confirm"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldToken           = "token"
	FieldMessage         = "message"
)
