// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetToken(t *testing.T) {
	token, err := NewResetToken(10 * time.Minute)
	require.NoError(t, err)

	// 32 random bytes, hex encoded.
	assert.Len(t, token.Plaintext, ResetTokenLength*2)
	assert.Equal(t, HashToken(token.Plaintext), token.Hash)
	assert.NotEqual(t, token.Plaintext, token.Hash)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), token.ExpiresAt, time.Minute)
}

func TestNewResetTokenIsUnique(t *testing.T) {
	first, err := NewResetToken(10 * time.Minute)
	require.NoError(t, err)

	second, err := NewResetToken(10 * time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, first.Plaintext, second.Plaintext)
	assert.NotEqual(t, first.Hash, second.Hash)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	plaintext, err := GenerateSecureToken(ResetTokenLength)
	require.NoError(t, err)

	// The stored hash must match the hash recomputed from the plaintext the
	// user presents later, or reset confirmation could never succeed.
	assert.Equal(t, HashToken(plaintext), HashToken(plaintext))
	assert.Len(t, HashToken(plaintext), 64)
}
