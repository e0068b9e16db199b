// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

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

// RegisterPublicEndpoints mounts the anonymous registration route.
func (a *API) RegisterPublicEndpoints(mux chi.Router) {
	mux.Post("/api/auth/register-tenant", a.registerTenant)
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/tenants", a.listTenants)
	mux.Get("/api/tenants/{tenantId}", a.getTenant)
	mux.Put("/api/tenants/{tenantId}", a.updateTenant)
}

func (a *API) registerTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.registerTenant")
	defer span.End()

	req := new(RegisterTenantRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	registration, err := a.service.RegisterTenant(ctx, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusCreated, "Tenant registered successfully", registration)
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listTenants")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	q := r.URL.Query()
	filter := &types.TenantFilter{
		Status: types.TenantStatus(q.Get("status")),
		Plan:   types.Plan(q.Get("plan")),
		Page:   httptypes.PageFromQuery(r),
	}

	list, err := a.service.ListTenants(ctx, principal, filter)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", list)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.getTenant")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	detail, err := a.service.GetTenant(ctx, principal, chi.URLParam(r, "tenantId"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", detail)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.updateTenant")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	patch := new(types.TenantPatch)
	if err := httptypes.DecodeJSON(r, patch); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	tenant, err := a.service.UpdateTenant(ctx, principal, chi.URLParam(r, "tenantId"), patch)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Tenant updated successfully", tenant)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
