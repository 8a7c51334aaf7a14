// Copyright (c) 2026 Wayfarer. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/wayfarer/internal/platform/apperr"
)

func TestValidator_Passing(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("name", "The Forest Hiker").
		MinLen("name", "The Forest Hiker", 10).
		MaxLen("name", "The Forest Hiker", 40).
		Email("email", "guide@wayfarer.app").
		OneOf("difficulty", "medium", "easy", "medium", "difficult").
		Range("rating", 4, 1, 5).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

func TestValidator_CollectsAllFailures(t *testing.T) {
	v := &Validator{}
	err := v.
		Required("name", "   ").
		Email("email", "not-an-email").
		OneOf("role", "superuser", "user", "guide", "lead-guide", "admin").
		Err()

	require.Error(t, err)

	appError, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.StatusFail, appError.Status)
	assert.Len(t, appError.Details, 3)
	assert.Equal(t, "name", appError.Details[0].Field)
	assert.Equal(t, "email", appError.Details[1].Field)
	assert.Equal(t, "role", appError.Details[2].Field)
}

func TestValidator_UUID(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		valid bool
	}{
		{"valid v7", "01912d68-783e-7a03-8467-5da5c7cf4ba1", true},
		{"valid uppercase", "01912D68-783E-7A03-8467-5DA5C7CF4BA1", true},
		{"missing dashes", "01912d68783e7a0384675da5c7cf4ba1", false},
		{"too short", "01912d68-783e", false},
		{"empty", "", false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := (&Validator{}).UUID("id", testCase.value).Err()
			if testCase.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_Custom(t *testing.T) {
	rating := 6.0
	err := (&Validator{}).
		Custom("rating", rating < 1 || rating > 5, "Must be between 1 and 5").
		Err()

	require.Error(t, err)
	appError, _ := apperr.As(err)
	assert.Equal(t, "Must be between 1 and 5", appError.Details[0].Message)
}

func TestRequiredError(t *testing.T) {
	err := RequiredError("password", "Passwords do not match")

	assert.Equal(t, 400, err.HTTPStatus)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "password", err.Details[0].Field)
}
