// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/internal/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	// BaseURL is the root of the auth API, e.g. http://gotrue:9999.
	BaseURL string
	// AnonKey is sent as the api key on end-user calls.
	AnonKey string
	// ServiceRoleKey authorizes admin endpoints (identity create/update/delete).
	ServiceRoleKey string
	Timeout        time.Duration
	Client         *http.Client
}

var _ ClientInterface = (*Client)(nil)

type Client struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	client         *http.Client

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
		client:         hc,
		tracer:         tracer,
		monitor:        monitor,
		logger:         logger,
	}
}

// sessionPayload is the token grant response shape.
type sessionPayload struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	User         identityPayload `json:"user"`
}

type identityPayload struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	CreatedAt   time.Time              `json:"created_at"`
	AppMetadata map[string]interface{} `json:"app_metadata"`
}

func (p *identityPayload) toIdentity() *types.Identity {
	return &types.Identity{
		ID:        p.ID,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
		Metadata:  p.AppMetadata,
	}
}

func (p *sessionPayload) toSession() *types.Session {
	return &types.Session{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(p.ExpiresIn) * time.Second),
	}
}

func (c *Client) CreateIdentity(ctx context.Context, email, password string, metadata map[string]interface{}) (*types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.CreateIdentity")
	defer span.End()

	body := map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	if len(metadata) > 0 {
		body["app_metadata"] = metadata
	}

	var identity identityPayload
	if err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceRoleKey, body, &identity); err != nil {
		return nil, err
	}

	return identity.toIdentity(), nil
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (*types.Session, *types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.Authenticate")
	defer span.End()

	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var session sessionPayload
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &session); err != nil {
		return nil, nil, err
	}

	return session.toSession(), session.User.toIdentity(), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*types.Session, error) {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.Refresh")
	defer span.End()

	body := map[string]interface{}{
		"refresh_token": refreshToken,
	}

	var session sessionPayload
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &session); err != nil {
		return nil, err
	}

	return session.toSession(), nil
}

func (c *Client) Invalidate(ctx context.Context, accessToken string) error {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.Invalidate")
	defer span.End()

	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) CurrentIdentity(ctx context.Context, accessToken string) (*types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.CurrentIdentity")
	defer span.End()

	var identity identityPayload
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &identity); err != nil {
		return nil, err
	}

	return identity.toIdentity(), nil
}

func (c *Client) SetIdentityMetadata(ctx context.Context, identityID string, metadata map[string]interface{}) error {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.SetIdentityMetadata")
	defer span.End()

	body := map[string]interface{}{
		"app_metadata": metadata,
	}

	return c.do(ctx, http.MethodPut, "/admin/users/"+identityID, c.serviceRoleKey, body, nil)
}

func (c *Client) DeleteIdentity(ctx context.Context, identityID string) error {
	ctx, span := c.tracer.Start(ctx, "gotrue.Client.DeleteIdentity")
	defer span.End()

	return c.do(ctx, http.MethodDelete, "/admin/users/"+identityID, c.serviceRoleKey, nil, nil)
}

// do issues a request and decodes either the success payload into out or the
// provider error payload through the classification table.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.setAvailability(0)
		return fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()
	c.setAvailability(1)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			c.logger.Debugf("failed to decode provider error body: %v", err)
		}
		return Classify(apiErr)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	return nil
}

func (c *Client) setAvailability(up float64) {
	if err := c.monitor.SetDependencyAvailability(map[string]string{"component": "gotrue"}, up); err != nil {
		c.logger.Debugf("failed to set dependency availability: %v", err)
	}
}
