// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/account-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_webhooks.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_HandleIdentityState(t *testing.T) {
	email := "user@example.com"

	testCases := []struct {
		name        string
		event       *IdentityStateEvent
		setupMocks  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr bool
	}{
		{
			name:  "banned identity deactivates profiles",
			event: &IdentityStateEvent{Event: "identity.banned", User: EventUser{ID: "identity-123", Email: email}},
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().SetProfileStatusByEmail(gomock.Any(), email, types.ProfileStatusInactive).Return(nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure(email, gomock.Any())
				mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: false,
		},
		{
			name:  "deleted identity deactivates profiles",
			event: &IdentityStateEvent{Event: "identity.deleted", User: EventUser{ID: "identity-123", Email: email}},
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().SetProfileStatusByEmail(gomock.Any(), email, types.ProfileStatusInactive).Return(nil)
				mockLogger.EXPECT().Security().Return(mockSecurity)
				mockSecurity.EXPECT().AuthzFailure(email, gomock.Any())
				mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: false,
		},
		{
			name:  "reinstated identity reactivates profiles",
			event: &IdentityStateEvent{Event: "identity.reinstated", User: EventUser{ID: "identity-123", Email: email}},
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().SetProfileStatusByEmail(gomock.Any(), email, types.ProfileStatusActive).Return(nil)
				mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: false,
		},
		{
			name:  "unknown event is acknowledged and ignored",
			event: &IdentityStateEvent{Event: "identity.updated", User: EventUser{ID: "identity-123", Email: email}},
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: false,
		},
		{
			name:        "error - missing email",
			event:       &IdentityStateEvent{Event: "identity.banned", User: EventUser{ID: "identity-123"}},
			setupMocks:  func(*MockStorageInterface, *MockLoggerInterface, *MockSecurityLoggerInterface) {},
			expectedErr: true,
		},
		{
			name:  "error - storage failure",
			event: &IdentityStateEvent{Event: "identity.banned", User: EventUser{ID: "identity-123", Email: email}},
			setupMocks: func(mockStorage *MockStorageInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockStorage.EXPECT().SetProfileStatusByEmail(gomock.Any(), email, types.ProfileStatusInactive).Return(errors.New("storage error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)

			s := NewService(mockStorage, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleIdentityState").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockStorage, mockLogger, mockSecurity)

			err := s.HandleIdentityState(context.Background(), tc.event)

			if tc.expectedErr {
				if err == nil {
					t.Error("expected error but got none")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
