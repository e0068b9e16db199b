// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/project-service/internal/apierror"
	httptypes "github.com/canonical/project-service/internal/http/types"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
	"github.com/canonical/project-service/pkg/authentication"
)

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/tenants/{tenantId}/users", a.createUser)
	mux.Get("/api/tenants/{tenantId}/users", a.listUsers)

	// shortcuts scoped to the caller's own tenant
	mux.Post("/api/users", a.createUser)
	mux.Get("/api/users", a.listUsers)

	mux.Get("/api/users/{userId}", a.getUser)
	mux.Put("/api/users/{userId}", a.updateUser)
	mux.Delete("/api/users/{userId}", a.deleteUser)
}

// tenantID resolves the target tenant from the path, falling back to the caller's.
func tenantID(r *http.Request, principal *types.Principal) (string, error) {
	if id := chi.URLParam(r, "tenantId"); id != "" {
		return id, nil
	}

	if principal != nil && principal.TenantID != "" {
		return principal.TenantID, nil
	}

	return "", apierror.Validation("tenantId is required")
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.createUser")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	tenant, err := tenantID(r, principal)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	req := new(CreateUserRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	user, err := a.service.CreateUser(ctx, principal, tenant, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusCreated, "User created successfully", user)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.listUsers")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	tenant, err := tenantID(r, principal)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	q := r.URL.Query()
	filter := &types.UserFilter{
		TenantID: tenant,
		Search:   q.Get("search"),
		Role:     types.Role(q.Get("role")),
		Page:     httptypes.PageFromQuery(r),
	}

	list, err := a.service.ListUsers(ctx, principal, filter)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", list)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.getUser")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	user, err := a.service.GetUser(ctx, principal, chi.URLParam(r, "userId"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", user)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.updateUser")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	patch := new(types.UserPatch)
	if err := httptypes.DecodeJSON(r, patch); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	user, err := a.service.UpdateUser(ctx, principal, chi.URLParam(r, "userId"), patch)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "User updated successfully", user)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.deleteUser")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	if err := a.service.DeleteUser(ctx, principal, chi.URLParam(r, "userId")); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "User deleted successfully", nil)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
