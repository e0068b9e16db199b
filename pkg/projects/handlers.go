// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

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

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/projects", a.createProject)
	mux.Get("/api/projects", a.listProjects)
	mux.Get("/api/projects/{projectId}", a.getProject)
	mux.Put("/api/projects/{projectId}", a.updateProject)
	mux.Delete("/api/projects/{projectId}", a.deleteProject)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.createProject")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	req := new(CreateProjectRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	project, err := a.service.CreateProject(ctx, principal, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusCreated, "Project created successfully", project)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.listProjects")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	q := r.URL.Query()
	filter := &types.ProjectFilter{
		TenantID: q.Get("tenantId"),
		Status:   types.ProjectStatus(q.Get("status")),
		Search:   q.Get("search"),
		Page:     httptypes.PageFromQuery(r),
	}

	list, err := a.service.ListProjects(ctx, principal, filter)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", list)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.getProject")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	project, err := a.service.GetProject(ctx, principal, chi.URLParam(r, "projectId"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", project)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.updateProject")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	patch := new(types.ProjectPatch)
	if err := httptypes.DecodeJSON(r, patch); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	project, err := a.service.UpdateProject(ctx, principal, chi.URLParam(r, "projectId"), patch)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Project updated successfully", project)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.deleteProject")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	if err := a.service.DeleteProject(ctx, principal, chi.URLParam(r, "projectId")); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Project deleted successfully", nil)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
