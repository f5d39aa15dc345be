// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/account-service/internal/db"
	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/pkg/accounts"
	"github.com/canonical/account-service/pkg/authentication"
	"github.com/canonical/account-service/pkg/metrics"
	"github.com/canonical/account-service/pkg/status"
	"github.com/canonical/account-service/pkg/webhooks"
)

func NewRouter(
	accountService accounts.ServiceInterface,
	webhookService webhooks.ServiceInterface,
	auth *authentication.Middleware,
	dbClient db.DBClientInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS([]string{"*"}),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(tracer, monitor, logger).RegisterEndpoints(router)

	accountsAPI := accounts.NewAPI(accountService, tracer, monitor, logger)
	accountsAPI.RegisterEndpoints(router)

	webhooks.NewAPI(webhookService, logger).RegisterEndpoints(router)

	// Session routes sit behind token verification; each request runs in a
	// database transaction so multi-statement handlers stay consistent.
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate())
		r.Use(db.TransactionMiddleware(dbClient, logger))

		accountsAPI.RegisterSessionEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
