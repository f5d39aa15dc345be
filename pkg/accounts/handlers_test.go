// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chi "github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/account-service/internal/types"
	"github.com/canonical/account-service/pkg/authentication"
)

func newTestAPI(t *testing.T) (*API, *MockServiceInterface) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := NewMockServiceInterface(ctrl)

	mockTracer := NewMockTracingInterface(ctrl)
	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		}).AnyTimes()

	mockLogger := NewMockLoggerInterface(ctrl)
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	mockMonitor := NewMockMonitorInterface(ctrl)

	return NewAPI(mockService, mockTracer, mockMonitor, mockLogger), mockService
}

func decodeError(t *testing.T, body *bytes.Buffer) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestAPI_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		result := &AuthResult{
			Token:        "access-1",
			RefreshToken: "refresh-1",
			User:         &types.Profile{ID: "profile-1", Role: types.RoleAdmin},
			Tenant:       &types.Tenant{ID: "tenant-1", Name: "Acme"},
		}
		mockService.EXPECT().Register(gomock.Any(), gomock.Any()).Return(result, nil)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		body, _ := json.Marshal(RegisterRequest{
			Email:      "owner@example.com",
			Password:   "hunter2hunter2",
			Name:       "Olive Owner",
			TenantName: "Acme",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var got AuthResult
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if got.Token != result.Token {
			t.Errorf("expected token %q, got %q", result.Token, got.Token)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		api, _ := newTestAPI(t)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/register", bytes.NewReader([]byte("not-json")))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("conflict", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		mockService.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, NewConflictError("account"))

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		body, _ := json.Marshal(RegisterRequest{
			Email:      "owner@example.com",
			Password:   "hunter2hunter2",
			Name:       "Olive Owner",
			TenantName: "Acme",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/register", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		resp := decodeError(t, rec.Body)
		if resp.Status != http.StatusConflict {
			t.Errorf("expected status field 409, got %d", resp.Status)
		}
	})
}

func TestAPI_Login(t *testing.T) {
	t.Run("unauthorized carries the fixed message", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, NewUnauthorizedError())

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		body, _ := json.Marshal(LoginRequest{Email: "user@example.com", Password: "wrong-pass-1"})
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		resp := decodeError(t, rec.Body)
		if resp.Message != "Invalid credentials" {
			t.Errorf("expected message %q, got %q", "Invalid credentials", resp.Message)
		}
	})

	t.Run("ok", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		result := &AuthResult{
			Token:        "access-1",
			RefreshToken: "refresh-1",
			User:         &types.Profile{ID: "profile-1"},
			Tenant:       &types.Tenant{ID: "tenant-1"},
		}
		mockService.EXPECT().Login(gomock.Any(), gomock.Any()).Return(result, nil)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		body, _ := json.Marshal(LoginRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestAPI_Refresh(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		api, _ := newTestAPI(t)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/refresh", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("ok", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		mockService.EXPECT().Refresh(gomock.Any(), "refresh-1").
			Return(&TokenPair{Token: "access-2", RefreshToken: "refresh-2"}, nil)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/refresh", bytes.NewReader([]byte(`{"refresh_token":"refresh-1"}`)))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestAPI_Logout(t *testing.T) {
	t.Run("no content even without a token", func(t *testing.T) {
		api, _ := newTestAPI(t)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/logout", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("no content when invalidation fails", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		mockService.EXPECT().Logout(gomock.Any(), "stale-token").Return(nil)

		mux := chi.NewMux()
		api.RegisterEndpoints(mux)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})
}

func TestAPI_CurrentUser(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		result := &CurrentUserResult{
			User:   &types.Profile{ID: "profile-1", Email: "user@example.com"},
			Tenant: &types.Tenant{ID: "tenant-1", Name: "Acme"},
		}
		mockService.EXPECT().CurrentUser(gomock.Any(), "access-1").Return(result, nil)

		mux := chi.NewMux()
		mux.Group(api.RegisterSessionEndpoints)

		req := httptest.NewRequest(http.MethodGet, "/api/v0/me", nil)
		req = req.WithContext(authentication.WithAccessToken(req.Context(), "access-1"))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got CurrentUserResult
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if got.User.ID != "profile-1" {
			t.Errorf("unexpected user: %+v", got.User)
		}
	})

	t.Run("unauthorized without a verified token in context", func(t *testing.T) {
		api, _ := newTestAPI(t)

		mux := chi.NewMux()
		mux.Group(api.RegisterSessionEndpoints)

		req := httptest.NewRequest(http.MethodGet, "/api/v0/me", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAPI_UpdateProfile(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		updated := &types.Profile{ID: "profile-1", Name: "New Name"}
		mockService.EXPECT().UpdateProfile(gomock.Any(), "access-1", gomock.Any()).Return(updated, nil)

		mux := chi.NewMux()
		mux.Group(api.RegisterSessionEndpoints)

		req := httptest.NewRequest(http.MethodPatch, "/api/v0/me", bytes.NewReader([]byte(`{"name":"New Name"}`)))
		req = req.WithContext(authentication.WithAccessToken(req.Context(), "access-1"))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		api, mockService := newTestAPI(t)

		mockService.EXPECT().UpdateProfile(gomock.Any(), "access-1", gomock.Any()).
			Return(nil, NewNotFoundError("profile"))

		mux := chi.NewMux()
		mux.Group(api.RegisterSessionEndpoints)

		req := httptest.NewRequest(http.MethodPatch, "/api/v0/me", bytes.NewReader([]byte(`{"name":"New Name"}`)))
		req = req.WithContext(authentication.WithAccessToken(req.Context(), "access-1"))
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
