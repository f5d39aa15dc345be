// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	jwt "github.com/golang-jwt/jwt/v5"
)

// tenantIDFromToken extracts the tenant binding from the access token
// claims. The signature is not checked here: the token has already been
// validated by the provider round-trip (or the JWKS middleware) before the
// claims are trusted.
func tenantIDFromToken(raw string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}

	if v, ok := claims[tenantClaim].(string); ok && v != "" {
		return v
	}

	if md, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if v, ok := md[tenantClaim].(string); ok {
			return v
		}
	}

	return ""
}
