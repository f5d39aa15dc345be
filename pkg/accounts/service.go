// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/account-service/internal/gotrue"
	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/storage"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/internal/types"
	"github.com/go-playground/validator/v10"
)

// tenantClaim is the access token claim carrying the session's tenant
// binding. Once a session is established the binding is fixed for its
// lifetime; CurrentUser never re-runs ambiguity resolution.
const tenantClaim = "tenant_id"

type AuthResult struct {
	Token        string         `json:"token"`
	RefreshToken string         `json:"refresh_token"`
	User         *types.Profile `json:"user"`
	Tenant       *types.Tenant  `json:"tenant"`
}

type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type CurrentUserResult struct {
	User   *types.Profile `json:"user"`
	Tenant *types.Tenant  `json:"tenant"`
}

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage  StorageInterface
	provider ProviderInterface
	tx       TxRunnerInterface

	validator *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	provider ProviderInterface,
	tx TxRunnerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:   storage,
		provider:  provider,
		tx:        tx,
		validator: newValidator(),
		tracer:    tracer,
		monitor:   monitor,
		logger:    logger,
	}
}

// Register creates a tenant, a global identity and the owning admin profile
// as one logical unit. The sequence is not transactional across the identity
// provider and the directory; a failure after identity creation triggers
// best-effort cleanup of the orphaned identity.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Register")
	defer span.End()

	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	// Pre-checks are an optimization: the provider's uniqueness check below
	// is the authoritative arbiter and must win concurrent races.
	var invite *types.Invite
	if req.InviteCode != "" {
		var err error
		invite, err = s.storage.GetInviteByCode(ctx, req.InviteCode)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, NewValidationError("invite_code", "unknown invite code")
			}
			return nil, fmt.Errorf("failed to look up invite: %w", err)
		}
		if invite.Email != "" && invite.Email != req.Email {
			return nil, NewValidationError("invite_code", "invite was issued for a different email")
		}
		if _, err := s.storage.GetProfile(ctx, req.Email, invite.TenantID); err == nil {
			return nil, NewConflictError("tenant membership")
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to check existing membership: %w", err)
		}
	} else {
		profiles, err := s.storage.ListProfilesByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing profiles: %w", err)
		}
		if len(profiles) > 0 {
			return nil, NewConflictError("account")
		}
	}

	identity, err := s.provider.CreateIdentity(ctx, req.Email, req.Password, nil)
	if err != nil {
		switch {
		case errors.Is(err, gotrue.ErrConflict):
			// The global identity store is the source of truth for email
			// uniqueness, regardless of what the directory believes.
			return nil, NewConflictError("account")
		case errors.Is(err, gotrue.ErrValidation):
			return nil, NewValidationError("", err.Error())
		default:
			return nil, fmt.Errorf("failed to create identity: %w", err)
		}
	}

	var tenant *types.Tenant
	var profile *types.Profile
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if invite != nil {
			t, err := s.storage.GetTenantByID(txCtx, invite.TenantID)
			if err != nil {
				return fmt.Errorf("failed to load inviting tenant: %w", err)
			}
			tenant = t

			p, err := s.storage.CreateProfile(txCtx, &types.Profile{
				TenantID: tenant.ID,
				Email:    req.Email,
				Name:     req.Name,
				Role:     invite.Role,
				Status:   types.ProfileStatusActive,
			})
			if err != nil {
				if errors.Is(err, storage.ErrDuplicateKey) {
					return NewConflictError("tenant membership")
				}
				return fmt.Errorf("failed to create profile: %w", err)
			}
			profile = p

			return s.storage.DeleteInvite(txCtx, invite.ID)
		}

		t, err := s.storage.CreateTenant(txCtx, &types.Tenant{Name: req.TenantName, Enabled: true})
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
		tenant = t

		p, err := s.storage.CreateProfile(txCtx, &types.Profile{
			TenantID: tenant.ID,
			Email:    req.Email,
			Name:     req.Name,
			Role:     types.RoleAdmin,
			Status:   types.ProfileStatusActive,
		})
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				return NewConflictError("tenant membership")
			}
			return fmt.Errorf("failed to create profile: %w", err)
		}
		profile = p

		return nil
	})
	if err != nil {
		// Best-effort cleanup of the orphaned identity; the original error
		// takes precedence over a cleanup failure.
		if cleanupErr := s.provider.DeleteIdentity(ctx, identity.ID); cleanupErr != nil {
			s.logger.Errorf("failed to clean up orphaned identity %s: %v", identity.ID, cleanupErr)
		}
		return nil, err
	}

	if err := s.provider.SetIdentityMetadata(ctx, identity.ID, map[string]interface{}{tenantClaim: tenant.ID}); err != nil {
		return nil, fmt.Errorf("failed to bind tenant to identity: %w", err)
	}

	// Reuse the normal authentication path so token semantics are identical
	// to login.
	session, _, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to establish session after registration: %w", err)
	}

	s.logger.Security().AuthnSuccess(req.Email)

	return &AuthResult{
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         profile,
		Tenant:       tenant,
	}, nil
}

// Login authenticates against the global identity store and resolves the
// single tenant-scoped profile to attach to the session. With no explicit
// tenant the oldest membership wins, per the directory ordering guarantee.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Login")
	defer span.End()

	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	session, identity, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, gotrue.ErrUnauthorized) {
			s.logger.Errorf("authentication failed with non-credential error: %v", err)
		}
		s.logger.Security().AuthnFailure(req.Email)
		return nil, NewUnauthorizedError()
	}

	var profile *types.Profile
	if req.TenantID != "" {
		p, err := s.storage.GetProfile(ctx, req.Email, req.TenantID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Tenant mismatch must not be distinguishable from bad
				// credentials.
				s.logger.Security().AuthzFailure(req.Email, "tenant_login")
				return nil, NewUnauthorizedError()
			}
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		if p.Status != types.ProfileStatusActive {
			s.logger.Security().AuthzFailure(req.Email, "tenant_login")
			return nil, NewUnauthorizedError()
		}
		profile = p
	} else {
		profiles, err := s.storage.ListActiveProfilesByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		if len(profiles) == 0 {
			// Identity exists globally but holds no tenant membership.
			s.logger.Security().AuthzFailure(req.Email, "tenant_login")
			return nil, NewUnauthorizedError()
		}
		profile = profiles[0]
	}

	tenant, err := s.storage.GetTenantByID(ctx, profile.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if !tenant.Enabled {
		s.logger.Security().AuthzFailure(req.Email, "tenant_login")
		return nil, NewUnauthorizedError()
	}

	session, err = s.bindTenant(ctx, session, identity, tenant.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Security().AuthnSuccess(req.Email)

	return &AuthResult{
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         profile,
		Tenant:       tenant,
	}, nil
}

// bindTenant stamps the selected tenant into the identity's app metadata and
// re-mints the token pair so every token in the session carries the claim.
func (s *Service) bindTenant(ctx context.Context, session *types.Session, identity *types.Identity, tenantID string) (*types.Session, error) {
	if current, _ := identity.Metadata[tenantClaim].(string); current == tenantID {
		return session, nil
	}

	if err := s.provider.SetIdentityMetadata(ctx, identity.ID, map[string]interface{}{tenantClaim: tenantID}); err != nil {
		return nil, fmt.Errorf("failed to bind tenant to session: %w", err)
	}

	refreshed, err := s.provider.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to re-mint session with tenant binding: %w", err)
	}

	return refreshed, nil
}

// CurrentUser resolves the global identity via the provider, then the bound
// profile from the tenant claim embedded in the access token.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*CurrentUserResult, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.CurrentUser")
	defer span.End()

	identity, err := s.provider.CurrentIdentity(ctx, accessToken)
	if err != nil {
		if !errors.Is(err, gotrue.ErrUnauthorized) {
			s.logger.Errorf("identity resolution failed with non-credential error: %v", err)
		}
		return nil, NewUnauthorizedError()
	}

	tenantID := tenantIDFromToken(accessToken)
	if tenantID == "" {
		// Older sessions may predate claim stamping; the identity record is
		// the fallback source for the binding.
		tenantID, _ = identity.Metadata[tenantClaim].(string)
	}
	if tenantID == "" {
		return nil, NewUnauthorizedError()
	}

	profile, err := s.storage.GetProfile(ctx, identity.Email, tenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewUnauthorizedError()
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.Status != types.ProfileStatusActive {
		return nil, NewUnauthorizedError()
	}

	tenant, err := s.storage.GetTenantByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	return &CurrentUserResult{User: profile, Tenant: tenant}, nil
}

// UpdateProfile patches the caller's own profile. NotFound surfaces here,
// never on login paths.
func (s *Service) UpdateProfile(ctx context.Context, accessToken string, req *UpdateProfileRequest) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.UpdateProfile")
	defer span.End()

	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	current, err := s.CurrentUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	profile := current.User
	profile.Name = req.Name

	if err := s.storage.UpdateProfile(ctx, profile, []string{"name"}); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewNotFoundError("profile")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// implicitly superseded; concurrent refreshes are resolved by the provider.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Refresh")
	defer span.End()

	session, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gotrue.ErrUnauthorized) {
			return nil, NewUnauthorizedError()
		}
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	return &TokenPair{
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

// Logout is advisory: the client discards its tokens regardless, so a failed
// invalidation is logged and swallowed.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	ctx, span := s.tracer.Start(ctx, "accounts.Service.Logout")
	defer span.End()

	if err := s.provider.Invalidate(ctx, accessToken); err != nil {
		s.logger.Warnf("session invalidation failed: %v", err)
	}

	return nil
}
