// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/sec"
)

// # Test Doubles

// memoryUserRepository is an in-memory UserRepository for service tests.
type memoryUserRepository struct {
	users map[string]*User // keyed by ID
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]*User{}}
}

func (r *memoryUserRepository) Create(_ context.Context, user *User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Name == user.Name {
			return apperr.Conflict("Duplicated field value. Please use another value")
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	user, ok := r.users[id]
	if !ok || !user.Active {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range r.users {
		if user.Email == email && user.Active {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *memoryUserRepository) FindByResetTokenHash(_ context.Context, tokenHash string) (*User, error) {
	for _, user := range r.users {
		if user.Active && user.ResetTokenHash != nil && *user.ResetTokenHash == tokenHash {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *memoryUserRepository) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	user := r.users[userID]
	user.ResetTokenHash = &tokenHash
	user.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *memoryUserRepository) ClearResetToken(_ context.Context, userID string) error {
	user := r.users[userID]
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	return nil
}

func (r *memoryUserRepository) UpdatePassword(_ context.Context, userID, passwordHash string, changedAt time.Time) error {
	user := r.users[userID]
	user.PasswordHash = passwordHash
	user.PasswordChangedAt = &changedAt
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil
	return nil
}

// stubIssuer mints predictable credentials.
type stubIssuer struct{ issued int }

func (s *stubIssuer) Issue(userID string) (string, time.Time, error) {
	s.issued++
	return "token-for-" + userID, time.Now().Add(time.Hour), nil
}

// recordingMailer captures outbound mail instead of sending it.
type recordingMailer struct {
	resetURLs []string
	welcomes  []string
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, _, _ string, resetURL string) error {
	m.resetURLs = append(m.resetURLs, resetURL)
	return nil
}

func (m *recordingMailer) SendWelcome(_ context.Context, toEmail, _ string) error {
	m.welcomes = append(m.welcomes, toEmail)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryUserRepository, *recordingMailer) {
	t.Helper()
	repository := newMemoryUserRepository()
	mailer := &recordingMailer{}
	service := NewService(repository, &stubIssuer{}, mailer, "http://localhost:8080", slog.Default())
	return service, repository, mailer
}

func signUpTestUser(t *testing.T, service *Service) *User {
	t.Helper()
	session, err := service.SignUp(context.Background(), SignUpInput{
		Name:     "Aiden Gomez",
		Email:    "aiden@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	return session.User
}

// # Registration & Login

func TestSignUp(t *testing.T) {
	service, repository, mailer := newTestService(t)

	session, err := service.SignUp(context.Background(), SignUpInput{
		Name:     "Aiden Gomez",
		Email:    "aiden@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)

	assert.Equal(t, sec.RoleUser, session.User.Role)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, []string{"aiden@example.com"}, mailer.welcomes)

	// Password is stored hashed, never in plaintext.
	stored := repository.users[session.User.ID]
	assert.NotEqual(t, "pass1234", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("pass1234", stored.PasswordHash))
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)
	signUpTestUser(t, service)

	_, err := service.SignUp(context.Background(), SignUpInput{
		Name:     "Other Name",
		Email:    "aiden@example.com",
		Password: "pass1234",
	})

	require.Error(t, err)
	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 409, appError.HTTPStatus)
}

func TestLogin(t *testing.T) {
	service, _, _ := newTestService(t)
	user := signUpTestUser(t, service)

	t.Run("correct credentials", func(t *testing.T) {
		session, err := service.Login(context.Background(), user.Email, "pass1234")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(context.Background(), user.Email, "wrong-pass")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Incorrect email or password")
	})

	t.Run("unknown email uses same message", func(t *testing.T) {
		_, err := service.Login(context.Background(), "ghost@example.com", "pass1234")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Incorrect email or password")
	})
}

// # Subject Resolution

func TestResolveSubject(t *testing.T) {
	service, repository, _ := newTestService(t)
	user := signUpTestUser(t, service)

	t.Run("valid subject", func(t *testing.T) {
		principal, err := service.ResolveSubject(context.Background(), user.ID, time.Now())
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.UserID)
		assert.Equal(t, sec.RoleUser, principal.Role)
	})

	t.Run("deactivated subject", func(t *testing.T) {
		repository.users[user.ID].Active = false
		defer func() { repository.users[user.ID].Active = true }()

		_, err := service.ResolveSubject(context.Background(), user.ID, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does no longer exist")
	})

	t.Run("credential issued before password change", func(t *testing.T) {
		issuedAt := time.Now().Add(-1 * time.Hour)
		changedAt := time.Now().Add(-30 * time.Minute)
		repository.users[user.ID].PasswordChangedAt = &changedAt

		_, err := service.ResolveSubject(context.Background(), user.ID, issuedAt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recently changed password")
	})

	t.Run("credential issued after password change", func(t *testing.T) {
		changedAt := time.Now().Add(-30 * time.Minute)
		repository.users[user.ID].PasswordChangedAt = &changedAt

		_, err := service.ResolveSubject(context.Background(), user.ID, time.Now())
		assert.NoError(t, err)
	})
}

// # Password Recovery

func TestForgotPassword(t *testing.T) {
	service, repository, mailer := newTestService(t)
	user := signUpTestUser(t, service)

	t.Run("stores hash, mails plaintext", func(t *testing.T) {
		require.NoError(t, service.ForgotPassword(context.Background(), user.Email))

		stored := repository.users[user.ID]
		require.NotNil(t, stored.ResetTokenHash)
		require.NotNil(t, stored.ResetTokenExpiresAt)
		require.Len(t, mailer.resetURLs, 1)

		// The emailed URL must not contain the stored hash.
		assert.NotContains(t, mailer.resetURLs[0], *stored.ResetTokenHash)
		assert.WithinDuration(t, time.Now().Add(ResetTokenTTL), *stored.ResetTokenExpiresAt, 5*time.Second)
	})

	t.Run("unknown email is silent success", func(t *testing.T) {
		assert.NoError(t, service.ForgotPassword(context.Background(), "ghost@example.com"))
	})
}

// forgotAndExtractToken runs the forgot flow and pulls the plaintext token
// out of the emailed reset URL.
func forgotAndExtractToken(t *testing.T, service *Service, mailer *recordingMailer, email string) string {
	t.Helper()
	require.NoError(t, service.ForgotPassword(context.Background(), email))
	require.NotEmpty(t, mailer.resetURLs)

	url := mailer.resetURLs[len(mailer.resetURLs)-1]
	slash := len(url) - 1
	for ; slash >= 0 && url[slash] != '/'; slash-- {
	}
	return url[slash+1:]
}

func TestResetPassword(t *testing.T) {
	service, repository, mailer := newTestService(t)
	user := signUpTestUser(t, service)

	t.Run("happy path logs user in", func(t *testing.T) {
		token := forgotAndExtractToken(t, service, mailer, user.Email)

		session, err := service.ResetPassword(context.Background(), token, "newpass99")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.User.ID)

		stored := repository.users[user.ID]
		assert.True(t, sec.CheckPasswordHash("newpass99", stored.PasswordHash))
		assert.Nil(t, stored.ResetTokenHash)
		require.NotNil(t, stored.PasswordChangedAt)
		assert.True(t, stored.PasswordChangedAt.Before(time.Now()))
	})

	t.Run("token is single-use", func(t *testing.T) {
		token := forgotAndExtractToken(t, service, mailer, user.Email)

		_, err := service.ResetPassword(context.Background(), token, "firstuse1")
		require.NoError(t, err)

		_, err = service.ResetPassword(context.Background(), token, "seconduse")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or has expired")
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token := forgotAndExtractToken(t, service, mailer, user.Email)

		// Jump the clock past the token window.
		service.WithClock(func() time.Time { return time.Now().Add(ResetTokenTTL + time.Minute) })
		defer service.WithClock(time.Now)

		_, err := service.ResetPassword(context.Background(), token, "latepass1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or has expired")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := service.ResetPassword(context.Background(), "not-a-real-token", "somepass1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid or has expired")
	})
}

func TestUpdatePassword(t *testing.T) {
	service, repository, _ := newTestService(t)
	user := signUpTestUser(t, service)

	t.Run("wrong current password", func(t *testing.T) {
		_, err := service.UpdatePassword(context.Background(), user.ID, "wrong-pass", "newpass99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "current password is wrong")
	})

	t.Run("rotates and records skewed change time", func(t *testing.T) {
		before := time.Now()
		session, err := service.UpdatePassword(context.Background(), user.ID, "pass1234", "newpass99")
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)

		stored := repository.users[user.ID]
		require.NotNil(t, stored.PasswordChangedAt)
		// The recorded change time sits one second in the past.
		assert.True(t, stored.PasswordChangedAt.Before(before))
		assert.True(t, sec.CheckPasswordHash("newpass99", stored.PasswordHash))
	})
}
