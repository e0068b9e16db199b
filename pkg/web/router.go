// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/project-service/internal/audit"
	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/db"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/password"
	"github.com/canonical/project-service/internal/ratelimit"
	"github.com/canonical/project-service/internal/storage"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/pkg/account"
	"github.com/canonical/project-service/pkg/authentication"
	"github.com/canonical/project-service/pkg/metrics"
	"github.com/canonical/project-service/pkg/projects"
	"github.com/canonical/project-service/pkg/status"
	"github.com/canonical/project-service/pkg/tasks"
	"github.com/canonical/project-service/pkg/tenant"
	"github.com/canonical/project-service/pkg/users"
)

func NewRouter(
	s storage.StorageInterface,
	dbClient db.DBClientInterface,
	authorizer *authorization.Authorizer,
	hasher *password.Hasher,
	tokens *authentication.JWTManager,
	limiter *ratelimit.Limiter,
	corsOrigins []string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middleware.RealIP,
		audit.ClientIPMiddleware,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(corsOrigins),
	)

	router.Use(middlewares...)

	recorder := audit.NewRecorder(s, tracer, monitor, logger)

	tenantAPI := tenant.NewAPI(
		tenant.NewService(s, authorizer, hasher, recorder, tracer, monitor, logger),
		tracer, monitor, logger,
	)
	accountAPI := account.NewAPI(
		account.NewService(s, authorizer, hasher, tokens, recorder, tracer, monitor, logger),
		tracer, monitor, logger,
	)
	usersAPI := users.NewAPI(
		users.NewService(s, authorizer, hasher, recorder, tracer, monitor, logger),
		tracer, monitor, logger,
	)
	projectsAPI := projects.NewAPI(
		projects.NewService(s, authorizer, recorder, tracer, monitor, logger),
		tracer, monitor, logger,
	)
	tasksAPI := tasks.NewAPI(
		tasks.NewService(s, authorizer, recorder, tracer, monitor, logger),
		tracer, monitor, logger,
	)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(status.NewService(dbClient, tracer, monitor, logger), tracer, monitor, logger).RegisterEndpoints(router)

	// anonymous credential endpoints
	router.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)

		tenantAPI.RegisterPublicEndpoints(r)
		accountAPI.RegisterPublicEndpoints(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(authentication.NewMiddleware(tokens, tracer, monitor, logger).Authenticate())

		accountAPI.RegisterEndpoints(r)
		tenantAPI.RegisterEndpoints(r)
		usersAPI.RegisterEndpoints(r)
		projectsAPI.RegisterEndpoints(r)
		tasksAPI.RegisterEndpoints(r)
	})

	return tracing.NewMiddleware("project-service", monitor, logger).OpenTelemetry(router)
}
