// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"

	ProfileStatusActive   = "active"
	ProfileStatusInactive = "inactive"
)

type Tenant struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Enabled   bool      `db:"enabled" json:"enabled"`
}

// Profile is the tenant-scoped membership binding a global identity (keyed
// by email) to exactly one tenant. (email, tenant_id) is unique; the same
// email may hold profiles across several tenants.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Invite struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Identity is the provider's global credential record. The password hash is
// owned by the provider and never crosses this boundary.
type Identity struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	CreatedAt time.Time              `json:"created_at"`
	Metadata  map[string]interface{} `json:"-"`
}

// Session is the token pair issued by the identity provider. It is a value
// object returned to the caller, never persisted here.
type Session struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
