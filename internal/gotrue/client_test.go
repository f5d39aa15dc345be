// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package gotrue -destination ./mock_logger.go -source=../logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package gotrue -destination ./mock_monitor.go -source=../monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package gotrue -destination ./mock_tracing.go -source=../tracing/interfaces.go

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mockTracer := NewMockTracingInterface(ctrl)
	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()

	mockMonitor := NewMockMonitorInterface(ctrl)
	mockMonitor.EXPECT().SetDependencyAvailability(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	mockLogger := NewMockLoggerInterface(ctrl)
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()

	return NewClient(
		Config{
			BaseURL:        srv.URL,
			AnonKey:        "anon-key",
			ServiceRoleKey: "service-role-key",
			Client:         srv.Client(),
		},
		mockTracer,
		mockMonitor,
		mockLogger,
	)
}

func TestClient_CreateIdentity(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/admin/users" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer service-role-key" {
				t.Errorf("expected service role bearer, got %q", got)
			}
			if got := r.Header.Get("apikey"); got != "anon-key" {
				t.Errorf("expected anon api key, got %q", got)
			}

			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if body["email"] != "user@example.com" {
				t.Errorf("unexpected email: %v", body["email"])
			}
			if body["email_confirm"] != true {
				t.Error("expected email_confirm to be set")
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    "identity-1",
				"email": "user@example.com",
			})
		}))

		identity, err := c.CreateIdentity(context.Background(), "user@example.com", "hunter2hunter2", nil)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.ID != "identity-1" || identity.Email != "user@example.com" {
			t.Errorf("unexpected identity: %+v", identity)
		}
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"msg": "A user with this email address has already been registered",
			})
		}))

		_, err := c.CreateIdentity(context.Background(), "user@example.com", "hunter2hunter2", nil)

		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func TestClient_Authenticate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
				t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
			}

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"expires_in":    3600,
				"user": map[string]interface{}{
					"id":           "identity-1",
					"email":        "user@example.com",
					"app_metadata": map[string]interface{}{"tenant_id": "tenant-1"},
				},
			})
		}))

		session, identity, err := c.Authenticate(context.Background(), "user@example.com", "hunter2hunter2")

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session.AccessToken != "access-1" || session.RefreshToken != "refresh-1" {
			t.Errorf("unexpected session: %+v", session)
		}
		if tenantID, _ := identity.Metadata["tenant_id"].(string); tenantID != "tenant-1" {
			t.Errorf("expected tenant binding in identity metadata, got %+v", identity.Metadata)
		}
	})

	t.Run("bad credentials map to unauthorized", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error_description": "Invalid login credentials",
			})
		}))

		_, _, err := c.Authenticate(context.Background(), "user@example.com", "wrong-pass-1")

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestClient_Refresh(t *testing.T) {
	t.Run("revoked token maps to unauthorized", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("grant_type") != "refresh_token" {
				t.Errorf("unexpected grant type: %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error_description": "Invalid Refresh Token: Refresh Token Not Found",
			})
		}))

		_, err := c.Refresh(context.Background(), "revoked")

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestClient_CurrentIdentity(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/user" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("expected user bearer, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "identity-1",
			"email":        "user@example.com",
			"app_metadata": map[string]interface{}{"tenant_id": "tenant-1"},
		})
	}))

	identity, err := c.CurrentIdentity(context.Background(), "access-1")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Email != "user@example.com" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestClient_SetIdentityMetadata(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/admin/users/identity-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		md, _ := body["app_metadata"].(map[string]interface{})
		if md["tenant_id"] != "tenant-1" {
			t.Errorf("expected tenant binding in app_metadata, got %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "identity-1"})
	}))

	err := c.SetIdentityMetadata(context.Background(), "identity-1", map[string]interface{}{"tenant_id": "tenant-1"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Invalidate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/logout" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := c.Invalidate(context.Background(), "access-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_DeleteIdentity(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/admin/users/identity-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))

	if err := c.DeleteIdentity(context.Background(), "identity-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
