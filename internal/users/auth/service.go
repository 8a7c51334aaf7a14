// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the core identity and access management system.

It handles everything from user registration and secure password hashing to
session credential issuance and the password reset lifecycle.

Architecture:

  - Service: Orchestrates business logic (SignUp, Login, Reset flows).
  - Repository: Abstracted interface for Postgres (Users).
  - Security: Leverages bcrypt hashing and HMAC-signed JWTs.

The package also implements the live subject resolution used by the
authentication middleware: every verified credential is re-checked against
the current account state so deactivation and password rotation take effect
immediately.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/sec"
	"github.com/taibuivan/wayfarer/pkg/uuidv7"
)

// # Contracts & Types

// TokenIssuer defines the contract for minting session credentials.
type TokenIssuer interface {
	// Issue creates a signed JWT for the given user ID.
	//
	// # Returns
	//   - The signed token, its expiry time, or an error if signing fails.
	Issue(userID string) (string, time.Time, error)
}

// Mailer defines the outbound mail operations the auth flows depend on.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error
	SendWelcome(ctx context.Context, toEmail, toName string) error
}

// Session represents a successfully established user session.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, credential
// issuance, or the reset flow must be reviewed carefully.
type Service struct {
	userRepository UserRepository
	tokenIssuer    TokenIssuer
	mailer         Mailer
	appBaseURL     string
	logger         *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	tokenIssuer TokenIssuer,
	mailer Mailer,
	appBaseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenIssuer:    tokenIssuer,
		mailer:         mailer,
		appBaseURL:     appBaseURL,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock overrides the service's time source. Intended for tests only.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Registration Flow

// SignUpInput holds the data required to enroll a new member.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Photo    string
}

/*
SignUp validates, hashes, and persists a brand new user account, then logs
the account in.

Description: Every new account starts with the base "user" role. Role
escalation only ever happens through an admin, never through registration
input.

Parameters:
  - context: context.Context
  - input: SignUpInput

Returns:
  - *Session: Fresh session credential plus the created user
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) SignUp(context context.Context, input SignUpInput) (*Session, error) {

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuidv7.New(),
		Name:         input.Name,
		Email:        input.Email,
		Role:         sec.RoleUser,
		Photo:        input.Photo,
		Active:       true,
		PasswordHash: hashedPassword,
	}

	// Persist the user to the database. Duplicate name/email surfaces as Conflict.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Onboarding mail is best-effort; a delivery failure never blocks signup.
	if err := service.mailer.SendWelcome(context, user.Email, user.Name); err != nil {
		service.logger.Warn("welcome_email_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	return service.issueSession(user)
}

// # Authentication Flow

/*
Login validates user credentials and issues a session credential.

Description: Verifies identity and performs constant-time password comparison.
The same generic message covers unknown email and wrong password to prevent
account enumeration.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Transport-ready session credential
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, email)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	// bcrypt comparison is constant-time, preventing timing attacks.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Incorrect email or password")
	}

	return service.issueSession(user)
}

/*
ResolveSubject turns verified credential claims into a live security principal.

Description: Implements the middleware's SubjectResolver contract. A
credential only remains valid while its subject (a) still exists, (b) is
still active, and (c) has not changed their password since the credential
was issued.

Parameters:
  - context: context.Context
  - userID: string (the credential's subject)
  - issuedAt: time.Time (the credential's iat claim)

Returns:
  - *sec.Principal: The resolved live subject
  - error: Unauthorized when the credential no longer maps to a valid subject
*/
func (service *Service) ResolveSubject(context context.Context, userID string, issuedAt time.Time) (*sec.Principal, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("The user belonging to this token does no longer exist")
	}

	if user.ChangedPasswordAfter(issuedAt) {
		return nil, apperr.Unauthorized("User recently changed password! Please log in again")
	}

	return user.Principal(), nil
}

// # Password Recovery

/*
ForgotPassword initiates the forgot-password flow.

Description: Generates a one-time token, stores only its SHA-256 hash on the
user row with a 10 minute expiry, and emails the plaintext token as a reset
link. An unknown email is treated as success to prevent enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Token generation, storage, or email delivery failures
*/
func (service *Service) ForgotPassword(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		// NOTE: success response regardless, to prevent user enumeration.
		return nil
	}

	resetToken, err := sec.NewResetToken(ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.userRepository.SetResetToken(context, user.ID, resetToken.Hash, resetToken.ExpiresAt); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", service.appBaseURL, resetToken.Plaintext)

	if err := service.mailer.SendPasswordReset(context, user.Email, user.Name, resetURL); err != nil {
		// Roll back the token so a failed delivery never leaves a live
		// credential change pending.
		_ = service.userRepository.ClearResetToken(context, user.ID)
		service.logger.Error("reset_email_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return apperr.Internal(fmt.Errorf("auth_service_reset_email_failed: %w", err))
	}

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Hashes the presented token, looks the user up by that hash,
verifies the expiry window, rotates the password, and logs the user in.
The token is single-use: the password update clears it in the same statement.

Parameters:
  - context: context.Context
  - plaintextToken: string (from the emailed link)
  - newPassword: string

Returns:
  - *Session: Fresh session credential for the rotated account
  - error: BadRequest on invalid/expired token, or storage failures
*/
func (service *Service) ResetPassword(context context.Context, plaintextToken, newPassword string) (*Session, error) {
	tokenHash := sec.HashToken(plaintextToken)

	user, err := service.userRepository.FindByResetTokenHash(context, tokenHash)
	if err != nil {
		return nil, apperr.BadRequest("Token is invalid or has expired")
	}

	// Expiry lives beside the hash; the same message covers both failure
	// modes so a probing client learns nothing.
	if user.ResetTokenExpiresAt == nil || service.now().After(*user.ResetTokenExpiresAt) {
		return nil, apperr.BadRequest("Token is invalid or has expired")
	}

	if err := service.rotatePassword(context, user, newPassword); err != nil {
		return nil, err
	}

	return service.issueSession(user)
}

/*
UpdatePassword allows an authenticated user to rotate their own credentials.

Description: Verifies the current password before applying the new one, then
issues a fresh session credential. Credentials issued before the change are
invalidated by the recorded change timestamp.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - *Session: Fresh session credential
  - error: Unauthorized on wrong current password, or storage failures
*/
func (service *Service) UpdatePassword(context context.Context, userID, currentPassword, newPassword string) (*Session, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return nil, apperr.Unauthorized("Your current password is wrong")
	}

	if err := service.rotatePassword(context, user, newPassword); err != nil {
		return nil, err
	}

	return service.issueSession(user)
}

// # Internals

// rotatePassword hashes and persists a new password, recording the change
// one second in the past so credentials minted by the same flow stay valid.
func (service *Service) rotatePassword(context context.Context, user *User, newPassword string) error {
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_rotate_hash_failed: %w", err)
	}

	changedAt := service.now().Add(-PasswordChangeSkew)
	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword, changedAt); err != nil {
		return fmt.Errorf("auth_service_rotate_update_failed: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.PasswordChangedAt = &changedAt
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil

	return nil
}

// issueSession mints a signed credential for the given user.
func (service *Service) issueSession(user *User) (*Session, error) {
	token, expiresAt, err := service.tokenIssuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
