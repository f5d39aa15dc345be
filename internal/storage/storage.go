// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/canonical/account-service/internal/db"
	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ StorageInterface = (*Storage)(nil)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	var newTenant types.Tenant
	err = s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "enabled").
		Values(id.String(), t.Name, t.Enabled).
		Suffix("RETURNING id, name, created_at, enabled").
		QueryRowContext(ctx).
		Scan(&newTenant.ID, &newTenant.Name, &newTenant.CreatedAt, &newTenant.Enabled)

	if err != nil {
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return &newTenant, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	var t types.Tenant
	err := s.db.Statement(ctx).
		Select("id", "name", "created_at", "enabled").
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.Enabled)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &t, nil
}

func (s *Storage) SetTenantStatus(ctx context.Context, id string, enabled bool) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetTenantStatus")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("tenants").
		Set("enabled", enabled).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to set tenant status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateProfile")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile ID: %w", err)
	}

	status := p.Status
	if status == "" {
		status = types.ProfileStatusActive
	}

	var newProfile types.Profile
	err = s.db.Statement(ctx).
		Insert("profiles").
		Columns("id", "tenant_id", "email", "name", "role", "status").
		Values(id.String(), p.TenantID, p.Email, p.Name, p.Role, status).
		Suffix("RETURNING id, tenant_id, email, name, role, status, created_at").
		QueryRowContext(ctx).
		Scan(&newProfile.ID, &newProfile.TenantID, &newProfile.Email, &newProfile.Name, &newProfile.Role, &newProfile.Status, &newProfile.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateKeyError(err, "profile for email and tenant already exists")
		}
		if IsForeignKeyViolation(err) {
			return nil, ErrForeignKeyViolation
		}
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	return &newProfile, nil
}

func (s *Storage) GetProfile(ctx context.Context, email, tenantID string) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProfile")
	defer span.End()

	var p types.Profile
	err := s.db.Statement(ctx).
		Select("id", "tenant_id", "email", "name", "role", "status", "created_at").
		From("profiles").
		Where(sq.Eq{"email": email, "tenant_id": tenantID}).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.TenantID, &p.Email, &p.Name, &p.Role, &p.Status, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

func (s *Storage) ListProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error) {
	return s.listProfilesByEmail(ctx, email, true)
}

func (s *Storage) ListActiveProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error) {
	return s.listProfilesByEmail(ctx, email, false)
}

// listProfilesByEmail returns profiles ordered by creation time ascending.
// The oldest-first ordering is a contract: callers use the first row as the
// default tenant membership.
func (s *Storage) listProfilesByEmail(ctx context.Context, email string, showInactive bool) ([]*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListProfilesByEmail")
	defer span.End()

	query := s.db.Statement(ctx).
		Select("p.id", "p.tenant_id", "p.email", "p.name", "p.role", "p.status", "p.created_at").
		From("profiles p").
		Join("tenants t ON t.id = p.tenant_id").
		Where(sq.Eq{"p.email": email, "t.enabled": true}).
		OrderBy("p.created_at ASC")

	if !showInactive {
		query = query.Where(sq.Eq{"p.status": types.ProfileStatusActive})
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*types.Profile
	for rows.Next() {
		var p types.Profile
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Email, &p.Name, &p.Role, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return profiles, nil
}

// UpdateProfile updates the fields named in paths, following PATCH semantics.
func (s *Storage) UpdateProfile(ctx context.Context, p *types.Profile, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateProfile")
	defer span.End()

	if len(paths) == 0 {
		return nil
	}

	updateMap := make(map[string]interface{})
	for _, path := range paths {
		switch path {
		case "name":
			updateMap["name"] = p.Name
		case "role":
			updateMap["role"] = p.Role
		case "status":
			updateMap["status"] = p.Status
		}
	}

	if len(updateMap) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("profiles").
		SetMap(updateMap).
		Where(sq.Eq{"id": p.ID}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SetProfileStatusByEmail transitions every profile of a global identity.
// Profiles are never hard-deleted.
func (s *Storage) SetProfileStatusByEmail(ctx context.Context, email, status string) error {
	ctx, span := s.tracer.Start(ctx, "storage.SetProfileStatusByEmail")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Update("profiles").
		Set("status", status).
		Where(sq.Eq{"email": email}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to set profile status: %w", err)
	}

	return nil
}

func (s *Storage) CreateInvite(ctx context.Context, invite *types.Invite) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvite")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite ID: %w", err)
	}

	var newInvite types.Invite
	err = s.db.Statement(ctx).
		Insert("invites").
		Columns("id", "code", "tenant_id", "email", "role").
		Values(id.String(), invite.Code, invite.TenantID, invite.Email, invite.Role).
		Suffix("RETURNING id, code, tenant_id, email, role, created_at").
		QueryRowContext(ctx).
		Scan(&newInvite.ID, &newInvite.Code, &newInvite.TenantID, &newInvite.Email, &newInvite.Role, &newInvite.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to insert invite: %w", err)
	}

	return &newInvite, nil
}

func (s *Storage) GetInviteByCode(ctx context.Context, code string) (*types.Invite, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInviteByCode")
	defer span.End()

	var invite types.Invite
	err := s.db.Statement(ctx).
		Select("id", "code", "tenant_id", "email", "role", "created_at").
		From("invites").
		Where(sq.Eq{"code": code}).
		QueryRowContext(ctx).
		Scan(&invite.ID, &invite.Code, &invite.TenantID, &invite.Email, &invite.Role, &invite.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return &invite, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteInvite")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete("invites").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	return nil
}
