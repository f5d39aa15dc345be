// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package gotrue

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors surfaced by the adapter. Callers translate these into the
// service error taxonomy; raw provider errors never cross this boundary.
var (
	ErrConflict     = errors.New("identity already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid identity input")
)

// APIError is the provider's structured error payload. Depending on the
// endpoint the message arrives under message, msg, error or
// error_description, so all four are captured.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Msg        string `json:"msg"`
	ErrorField string `json:"error"`
	ErrorDesc  string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.message())
}

func (e *APIError) message() string {
	for _, m := range []string{e.Message, e.Msg, e.ErrorDesc, e.ErrorField} {
		if m != "" {
			return m
		}
	}
	return "unknown error"
}

// classificationRule maps a provider message fragment to a sentinel error.
type classificationRule struct {
	fragment string
	err      error
}

// classificationRules is the explicit mapping table from provider
// status/message patterns to the adapter sentinels. First match wins.
var classificationRules = []classificationRule{
	{"already been registered", ErrConflict},
	{"already exists", ErrConflict},
	{"already registered", ErrConflict},
	{"invalid login credentials", ErrUnauthorized},
	{"invalid refresh token", ErrUnauthorized},
	{"refresh token not found", ErrUnauthorized},
	{"invalid token", ErrUnauthorized},
	{"jwt expired", ErrUnauthorized},
	{"session not found", ErrUnauthorized},
	{"unable to validate email", ErrValidation},
	{"password should be at least", ErrValidation},
	{"signup requires a valid password", ErrValidation},
}

// Classify translates a provider error payload into one of the adapter
// sentinels, wrapping so the original message stays inspectable. Errors that
// match no rule are returned as-is and treated as transport failures.
func Classify(apiErr *APIError) error {
	msg := strings.ToLower(apiErr.message())

	for _, rule := range classificationRules {
		if strings.Contains(msg, rule.fragment) {
			return fmt.Errorf("%w: %s", rule.err, apiErr.message())
		}
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.message())
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, apiErr.message())
	}

	return apiErr
}
