// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"fmt"
)

// unauthorizedMessage is deliberately generic: callers must not be able to
// tell bad credentials, missing tenant membership and tenant mismatch apart.
const unauthorizedMessage = "Invalid credentials"

// ValidationError reports malformed or missing input, detected before any
// side effect. It carries actionable field detail.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a uniqueness violation, duplicate email or duplicate
// tenant membership.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Resource)
}

func NewConflictError(resource string) *ConflictError {
	return &ConflictError{Resource: resource}
}

// UnauthorizedError covers bad credentials, missing or expired sessions and
// tenant mismatch on explicit tenant selection. Its message is fixed.
type UnauthorizedError struct{}

func (e *UnauthorizedError) Error() string {
	return unauthorizedMessage
}

func NewUnauthorizedError() *UnauthorizedError {
	return &UnauthorizedError{}
}

// NotFoundError is used only on profile read/update paths, never for login.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}
