// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password_complexity"`
	Name     string `json:"name" validate:"required"`
	// Exactly one of TenantName and InviteCode must be present.
	TenantName string `json:"tenant_name" validate:"required_without=InviteCode,excluded_with=InviteCode"`
	InviteCode string `json:"invite_code"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TenantID string `json:"tenant_id" validate:"omitempty,uuid"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// min length is covered by the min tag; complexity requires at least one
	// letter and one digit.
	_ = v.RegisterValidation("password_complexity", func(fl validator.FieldLevel) bool {
		var hasLetter, hasDigit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLetter && hasDigit
	})

	return v
}

// validate runs struct validation and translates the first failure into a
// ValidationError carrying the offending field.
func validate(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(fe.Field(), reasonForTag(fe))
	}

	return NewValidationError("", err.Error())
}

func reasonForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "either tenant name or invite code must be provided"
	case "excluded_with":
		return "tenant name and invite code are mutually exclusive"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "password_complexity":
		return "must contain at least one letter and one digit"
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}
