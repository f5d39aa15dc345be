// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"fmt"

	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/internal/types"
)

// stateTransitions maps provider events to the profile status they imply.
// Unknown events are acknowledged and ignored so the provider does not retry.
var stateTransitions = map[string]string{
	"identity.banned":     types.ProfileStatusInactive,
	"identity.deleted":    types.ProfileStatusInactive,
	"identity.reinstated": types.ProfileStatusActive,
	"identity.unbanned":   types.ProfileStatusActive,
}

type Service struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// HandleIdentityState applies an identity state change across every tenant
// membership of the affected email. Deactivated identities keep their
// profile rows but become invisible to login resolution.
func (s *Service) HandleIdentityState(ctx context.Context, event *IdentityStateEvent) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleIdentityState")
	defer span.End()

	if event.User.Email == "" {
		return fmt.Errorf("identity state event carries no email")
	}

	status, ok := stateTransitions[event.Event]
	if !ok {
		s.logger.Debugf("ignoring identity state event %q for %s", event.Event, event.User.Email)
		return nil
	}

	if err := s.storage.SetProfileStatusByEmail(ctx, event.User.Email, status); err != nil {
		return fmt.Errorf("failed to transition profiles for %s: %w", event.User.Email, err)
	}

	if status == types.ProfileStatusInactive {
		s.logger.Security().AuthzFailure(event.User.Email, "identity deactivated by provider")
	}

	s.logger.Infof("profiles for %s set to %s on %s", event.User.Email, status, event.Event)
	return nil
}
