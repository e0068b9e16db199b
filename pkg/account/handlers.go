// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/project-service/internal/http/types"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/pkg/authentication"
)

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterPublicEndpoints mounts the anonymous login route.
func (a *API) RegisterPublicEndpoints(mux chi.Router) {
	mux.Post("/api/auth/login", a.login)
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/auth/me", a.me)
	mux.Post("/api/auth/logout", a.logout)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "account.API.login")
	defer span.End()

	req := new(LoginRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	session, err := a.service.Login(ctx, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Login successful", session)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "account.API.me")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	profile, err := a.service.Me(ctx, principal)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", profile)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "account.API.logout")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	if err := a.service.Logout(ctx, principal); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Logged out successfully", nil)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
