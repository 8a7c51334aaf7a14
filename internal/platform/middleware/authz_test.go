// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
	"github.com/taibuivan/wayfarer/internal/platform/ctxutil"
	"github.com/taibuivan/wayfarer/internal/platform/sec"
)

type stubVerifier struct {
	claims *sec.SessionClaims
	err    error
}

func (s *stubVerifier) Verify(string) (*sec.SessionClaims, error) {
	return s.claims, s.err
}

type stubResolver struct {
	principal *sec.Principal
	err       error
}

func (s *stubResolver) ResolveSubject(context.Context, string, time.Time) (*sec.Principal, error) {
	return s.principal, s.err
}

func claimsFor(userID string) *sec.SessionClaims {
	return &sec.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
}

// okHandler records whether the chain reached the final handler and which
// principal (if any) it saw.
func okHandler(reached *bool, seen **sec.Principal) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*reached = true
		if seen != nil {
			*seen = ctxutil.GetPrincipal(request.Context())
		}
		writer.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_AnonymousPassthrough(t *testing.T) {
	var reached bool
	var seen *sec.Principal

	handler := Authenticate(&stubVerifier{}, &stubResolver{})(okHandler(&reached, &seen))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.True(t, reached)
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	var reached bool
	handler := Authenticate(&stubVerifier{}, &stubResolver{})(okHandler(&reached, nil))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	request.Header.Set("Authorization", "Token abc123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	var reached bool
	verifier := &stubVerifier{err: sec.ErrInvalidCredential}
	handler := Authenticate(verifier, &stubResolver{})(okHandler(&reached, nil))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	request.Header.Set("Authorization", "Bearer not-a-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"fail"`)
}

func TestAuthenticate_SubjectNoLongerValid(t *testing.T) {
	var reached bool
	verifier := &stubVerifier{claims: claimsFor("01912d68-783e-7a03-8467-5da5c7cf4ba1")}
	resolver := &stubResolver{err: apperr.Unauthorized("User recently changed password! Please log in again")}
	handler := Authenticate(verifier, resolver)(okHandler(&reached, nil))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	request.Header.Set("Authorization", "Bearer stale")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "recently changed password")
}

func TestAuthenticate_InjectsPrincipal(t *testing.T) {
	var reached bool
	var seen *sec.Principal

	principal := &sec.Principal{
		UserID: "01912d68-783e-7a03-8467-5da5c7cf4ba1",
		Name:   "Aiden Gomez",
		Role:   sec.RoleGuide,
	}
	verifier := &stubVerifier{claims: claimsFor(principal.UserID)}
	handler := Authenticate(verifier, &stubResolver{principal: principal})(okHandler(&reached, &seen))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/tours", nil)
	request.Header.Set("Authorization", "Bearer good")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	require.True(t, reached)
	require.NotNil(t, seen)
	assert.Equal(t, principal.UserID, seen.UserID)
	assert.Equal(t, sec.RoleGuide, seen.Role)
}

func TestRequireAuth(t *testing.T) {
	t.Run("blocks anonymous", func(t *testing.T) {
		var reached bool
		handler := RequireAuth(okHandler(&reached, nil))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "You are not logged in")
	})

	t.Run("passes authenticated", func(t *testing.T) {
		var reached bool
		handler := RequireAuth(okHandler(&reached, nil))

		request := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: "u1", Role: sec.RoleUser})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))

		assert.True(t, reached)
	})
}

func TestRequireRole(t *testing.T) {
	testCases := []struct {
		name       string
		role       sec.Role
		allowed    []sec.Role
		wantStatus int
	}{
		{"admin allowed", sec.RoleAdmin, []sec.Role{sec.RoleAdmin, sec.RoleLeadGuide}, http.StatusOK},
		{"lead-guide allowed", sec.RoleLeadGuide, []sec.Role{sec.RoleAdmin, sec.RoleLeadGuide}, http.StatusOK},
		{"plain user forbidden", sec.RoleUser, []sec.Role{sec.RoleAdmin, sec.RoleLeadGuide}, http.StatusForbidden},
		{"guide forbidden from admin set", sec.RoleGuide, []sec.Role{sec.RoleAdmin}, http.StatusForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var reached bool
			handler := RequireRole(testCase.allowed...)(okHandler(&reached, nil))

			request := httptest.NewRequest(http.MethodDelete, "/api/v1/tours/abc", nil)
			ctx := ctxutil.WithPrincipal(request.Context(), &sec.Principal{UserID: "u1", Role: testCase.role})
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request.WithContext(ctx))

			assert.Equal(t, testCase.wantStatus, recorder.Code)
			assert.Equal(t, testCase.wantStatus == http.StatusOK, reached)
		})
	}

	t.Run("anonymous gets 401 not 403", func(t *testing.T) {
		var reached bool
		handler := RequireRole(sec.RoleAdmin)(okHandler(&reached, nil))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/v1/tours/abc", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
