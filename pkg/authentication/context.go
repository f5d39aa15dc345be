// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

// Define private custom types to avoid collisions
type contextKey struct{}
type tokenContextKey struct{}

var userContextKey = contextKey{}
var accessTokenContextKey = tokenContextKey{}

// WithUserID returns a new context with the given user ID derived from the parent context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// GetUserID retrieves the user ID from the context.
// Returns an empty string and false if the user ID is not present.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userContextKey).(string)
	return id, ok
}

// WithAccessToken returns a new context carrying the verified raw bearer
// token, for handlers that need to replay it against the identity provider.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenContextKey, token)
}

// GetAccessToken retrieves the verified raw bearer token from the context.
func GetAccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenContextKey).(string)
	return token, ok
}
