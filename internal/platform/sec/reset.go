// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "time"

// ResetTokenLength is the byte length of the random password reset secret.
const ResetTokenLength = 32

// ResetToken is a freshly generated one-time password reset secret.
//
// # Invariant
//
// Only Hash and ExpiresAt are ever persisted (on the User record). Plaintext
// is handed to the account owner exactly once, out-of-band, and then
// discarded — possession of the stored record never suffices to authenticate.
type ResetToken struct {
	// Plaintext is the secret delivered to the user. Never stored.
	Plaintext string

	// Hash is the one-way sha256 hash persisted server-side.
	Hash string

	// ExpiresAt bounds the token's validity window.
	ExpiresAt time.Time
}

// NewResetToken generates a high-entropy reset token valid for ttl.
func NewResetToken(ttl time.Duration) (*ResetToken, error) {
	plaintext, err := GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return nil, err
	}

	return &ResetToken{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}
