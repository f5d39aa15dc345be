// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package gotrue

import (
	"context"

	"github.com/canonical/account-service/internal/types"
)

type ClientInterface interface {
	// CreateIdentity registers a global credential record. It fails with
	// ErrConflict when the email is already registered and must not be
	// retried blindly on transport failure.
	CreateIdentity(ctx context.Context, email, password string, metadata map[string]interface{}) (*types.Identity, error)
	// Authenticate performs a password grant. Any rejection surfaces as a
	// single undifferentiated ErrUnauthorized.
	Authenticate(ctx context.Context, email, password string) (*types.Session, *types.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*types.Session, error)
	Invalidate(ctx context.Context, accessToken string) error
	CurrentIdentity(ctx context.Context, accessToken string) (*types.Identity, error)
	SetIdentityMetadata(ctx context.Context, identityID string, metadata map[string]interface{}) error
	DeleteIdentity(ctx context.Context, identityID string) error
}
