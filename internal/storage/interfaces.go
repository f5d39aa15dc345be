// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/account-service/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	SetTenantStatus(ctx context.Context, id string, enabled bool) error

	CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error)
	GetProfile(ctx context.Context, email, tenantID string) (*types.Profile, error)
	ListProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error)
	ListActiveProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error)
	UpdateProfile(ctx context.Context, p *types.Profile, paths []string) error
	SetProfileStatusByEmail(ctx context.Context, email, status string) error

	CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error)
	GetInviteByCode(ctx context.Context, code string) (*types.Invite, error)
	DeleteInvite(ctx context.Context, id string) error
}
