// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

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
	mux.Post("/api/projects/{projectId}/tasks", a.createTask)
	mux.Get("/api/projects/{projectId}/tasks", a.listTasks)

	mux.Get("/api/tasks/{taskId}", a.getTask)
	mux.Patch("/api/tasks/{taskId}/status", a.updateTaskStatus)
	mux.Put("/api/tasks/{taskId}", a.updateTask)
	mux.Delete("/api/tasks/{taskId}", a.deleteTask)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.createTask")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	req := new(CreateTaskRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	task, err := a.service.CreateTask(ctx, principal, chi.URLParam(r, "projectId"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusCreated, "Task created successfully", task)
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.listTasks")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	q := r.URL.Query()
	filter := &types.TaskFilter{
		ProjectID:  chi.URLParam(r, "projectId"),
		Status:     types.TaskStatus(q.Get("status")),
		Priority:   types.Priority(q.Get("priority")),
		AssignedTo: q.Get("assignedTo"),
		Search:     q.Get("search"),
		Page:       httptypes.PageFromQuery(r),
	}

	list, err := a.service.ListTasks(ctx, principal, filter)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", list)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.getTask")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	task, err := a.service.GetTask(ctx, principal, chi.URLParam(r, "taskId"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "", task)
}

func (a *API) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.updateTaskStatus")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	req := new(UpdateStatusRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	task, err := a.service.UpdateTaskStatus(ctx, principal, chi.URLParam(r, "taskId"), req.Status)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Task status updated", task)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.updateTask")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	patch := new(types.TaskPatch)
	if err := httptypes.DecodeJSON(r, patch); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	task, err := a.service.UpdateTask(ctx, principal, chi.URLParam(r, "taskId"), patch)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Task updated successfully", task)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.deleteTask")
	defer span.End()

	principal, _ := authentication.GetPrincipal(ctx)

	if err := a.service.DeleteTask(ctx, principal, chi.URLParam(r, "taskId")); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, "Task deleted successfully", nil)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
