// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, reset
// token generation) from the domain logic. It acts as an Infrastructure
// service injected into the Application layer via small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors distinguishing the verification failure sub-kinds.
var (
	// ErrInvalidCredential is returned when a token is malformed or its
	// signature does not verify.
	ErrInvalidCredential = errors.New("sec: invalid session credential")

	// ErrExpiredCredential is returned when a structurally valid token has
	// passed its expiry.
	ErrExpiredCredential = errors.New("sec: expired session credential")
)

// SessionClaims is the payload embedded inside a session credential.
//
// # Minimal Claims
//
// Only the subject identifier and the time bounds are embedded. Role and
// profile data are deliberately NOT carried in the token: the authentication
// gate re-resolves the subject against storage on every request, so a token
// can never outlive a role change, a deactivation, or a password change.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject identifier carried by the credential.
func (c *SessionClaims) UserID() string { return c.Subject }

// TokenService handles issuance and verification of session credentials
// using HS256.
//
// The signing secret and token lifetime are process-wide immutable
// configuration, injected once at construction.
type TokenService struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a new TokenService.
//
// # Parameters
//   - secret: The HMAC signing secret. Must carry sufficient entropy.
//   - issuer: The 'iss' claim stamped on every credential.
//   - lifetime: How long an issued credential remains valid.
func NewTokenService(secret, issuer string, lifetime time.Duration) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test use only.
func (service *TokenService) WithClock(now func() time.Time) *TokenService {
	service.now = now
	return service
}

// Lifetime returns the configured credential lifetime.
func (service *TokenService) Lifetime() time.Duration { return service.lifetime }

// Issue produces a signed session credential for the given subject.
//
// # Returns
//   - The signed JWT string.
//   - The credential's expiry, for mirroring onto the session cookie.
func (service *TokenService) Issue(userID string) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(service.lifetime)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Verify checks the signature and time bounds of a credential string.
//
// # Failure Modes
//   - [ErrExpiredCredential] when the token is past its expiry.
//   - [ErrInvalidCredential] for every other defect (bad signature,
//     malformed payload, wrong algorithm).
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	}, jwt.WithTimeFunc(service.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredential
		}
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredential
	}

	return claims, nil
}
