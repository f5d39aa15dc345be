// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/pkg/authentication"
	chi "github.com/go-chi/chi/v5"
)

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(
	service ServiceInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	return &API{
		service: service,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// RegisterEndpoints registers the unauthenticated surface.
func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/api/v0/auth/register", a.register)
	mux.Post("/api/v0/auth/login", a.login)
	mux.Post("/api/v0/auth/refresh", a.refresh)
	mux.Post("/api/v0/auth/logout", a.logout)
}

// RegisterSessionEndpoints registers the routes requiring a verified bearer
// token; the router mounts these behind the authentication middleware.
func (a *API) RegisterSessionEndpoints(mux chi.Router) {
	mux.Get("/api/v0/me", a.currentUser)
	mux.Patch("/api/v0/me", a.updateProfile)
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.register")
	defer span.End()

	req := new(RegisterRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.writeError(w, NewValidationError("", "invalid request body"))
		return
	}

	result, err := a.service.Register(ctx, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, result)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.login")
	defer span.End()

	req := new(LoginRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.writeError(w, NewValidationError("", "invalid request body"))
		return
	}

	result, err := a.service.Login(ctx, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, result)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.refresh")
	defer span.End()

	req := new(RefreshRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.writeError(w, NewValidationError("", "invalid request body"))
		return
	}
	if req.RefreshToken == "" {
		a.writeError(w, NewValidationError("refresh_token", "is required"))
		return
	}

	pair, err := a.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, pair)
}

// logout is deliberately unauthenticated: it succeeds even with a stale or
// garbage token, since the client discards its copy regardless.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.logout")
	defer span.End()

	token, _ := bearerToken(r)
	if token != "" {
		if err := a.service.Logout(ctx, token); err != nil {
			a.logger.Warnf("logout failed: %v", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) currentUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.currentUser")
	defer span.End()

	token, ok := authentication.GetAccessToken(ctx)
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	result, err := a.service.CurrentUser(ctx, token)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, result)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "accounts.API.updateProfile")
	defer span.End()

	token, ok := authentication.GetAccessToken(ctx)
	if !ok {
		a.writeError(w, NewUnauthorizedError())
		return
	}

	req := new(UpdateProfileRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.writeError(w, NewValidationError("", "invalid request body"))
		return
	}

	profile, err := a.service.UpdateProfile(ctx, token, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, profile)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a translation bug upstream and surfaces as a 500
// with a generic message.
func (a *API) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr   *ValidationError
		conflictErr     *ConflictError
		unauthorizedErr *UnauthorizedError
		notFoundErr     *NotFoundError
	)

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Error()
	case errors.As(err, &conflictErr):
		status = http.StatusConflict
		message = conflictErr.Error()
	case errors.As(err, &unauthorizedErr):
		status = http.StatusUnauthorized
		message = unauthorizedErr.Error()
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		message = notFoundErr.Error()
	default:
		a.logger.Errorf("request failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(errorResponse{Status: status, Message: message}); encodeErr != nil {
		a.logger.Errorf("failed to encode error response: %v", encodeErr)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	return authentication.BearerToken(r.Header)
}
