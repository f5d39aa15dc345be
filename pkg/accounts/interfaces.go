// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"context"

	"github.com/canonical/account-service/internal/types"
)

type ServiceInterface interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	CurrentUser(ctx context.Context, accessToken string) (*CurrentUserResult, error)
	UpdateProfile(ctx context.Context, accessToken string, req *UpdateProfileRequest) (*types.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

// StorageInterface is the subset of the tenant directory this package needs.
type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error)
	GetProfile(ctx context.Context, email, tenantID string) (*types.Profile, error)
	ListProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error)
	ListActiveProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error)
	UpdateProfile(ctx context.Context, p *types.Profile, paths []string) error
	GetInviteByCode(ctx context.Context, code string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, id string) error
}

// ProviderInterface is the identity provider adapter seam.
type ProviderInterface interface {
	CreateIdentity(ctx context.Context, email, password string, metadata map[string]interface{}) (*types.Identity, error)
	Authenticate(ctx context.Context, email, password string) (*types.Session, *types.Identity, error)
	Refresh(ctx context.Context, refreshToken string) (*types.Session, error)
	Invalidate(ctx context.Context, accessToken string) error
	CurrentIdentity(ctx context.Context, accessToken string) (*types.Identity, error)
	SetIdentityMetadata(ctx context.Context, identityID string, metadata map[string]interface{}) error
	DeleteIdentity(ctx context.Context, identityID string) error
}

// TxRunnerInterface runs a function inside a database transaction.
type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}
