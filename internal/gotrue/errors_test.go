// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package gotrue

import (
	"errors"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		apiErr   *APIError
		expected error
	}{
		{
			name:     "duplicate registration",
			apiErr:   &APIError{StatusCode: http.StatusUnprocessableEntity, Msg: "A user with this email address has already been registered"},
			expected: ErrConflict,
		},
		{
			name:     "duplicate via error_description",
			apiErr:   &APIError{StatusCode: http.StatusBadRequest, ErrorDesc: "User already registered"},
			expected: ErrConflict,
		},
		{
			name:     "bad credentials",
			apiErr:   &APIError{StatusCode: http.StatusBadRequest, ErrorDesc: "Invalid login credentials"},
			expected: ErrUnauthorized,
		},
		{
			name:     "revoked refresh token",
			apiErr:   &APIError{StatusCode: http.StatusBadRequest, ErrorDesc: "Invalid Refresh Token: Refresh Token Not Found"},
			expected: ErrUnauthorized,
		},
		{
			name:     "expired jwt",
			apiErr:   &APIError{StatusCode: http.StatusUnauthorized, Message: "JWT expired"},
			expected: ErrUnauthorized,
		},
		{
			name:     "weak password",
			apiErr:   &APIError{StatusCode: http.StatusUnprocessableEntity, Msg: "Password should be at least 8 characters"},
			expected: ErrValidation,
		},
		{
			name:     "unmatched message falls back to status 401",
			apiErr:   &APIError{StatusCode: http.StatusUnauthorized, Message: "no idea"},
			expected: ErrUnauthorized,
		},
		{
			name:     "unmatched message falls back to status 409",
			apiErr:   &APIError{StatusCode: http.StatusConflict, Message: "no idea"},
			expected: ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Classify(tc.apiErr)
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestClassify_UnmatchedErrorPassesThrough(t *testing.T) {
	apiErr := &APIError{StatusCode: http.StatusInternalServerError, Message: "database timeout"}

	err := Classify(apiErr)

	if errors.Is(err, ErrConflict) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrValidation) {
		t.Errorf("expected passthrough error, got sentinel %v", err)
	}
	var got *APIError
	if !errors.As(err, &got) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if got.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", got.StatusCode)
	}
}

func TestAPIError_MessagePrecedence(t *testing.T) {
	apiErr := &APIError{StatusCode: 400, Msg: "msg field", ErrorDesc: "desc field"}
	if apiErr.message() != "msg field" {
		t.Errorf("expected msg field to win, got %q", apiErr.message())
	}

	empty := &APIError{StatusCode: 400}
	if empty.message() != "unknown error" {
		t.Errorf("expected fallback message, got %q", empty.message())
	}
}
