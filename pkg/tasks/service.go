// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/audit"
	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/db"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/storage"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

type Service struct {
	storage StorageInterface
	authz   AuthorizerInterface
	audit   AuditInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) CreateTask(ctx context.Context, principal *types.Principal, projectID string, req *CreateTaskRequest) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.CreateTask")
	defer span.End()

	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.TASK_CREATE, authorization.TenantResource(project.TenantID)); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apierror.Validation("title is required")
	}

	status := req.Status
	if status == "" {
		status = types.TaskTodo
	}

	priority := req.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}

	if !status.Valid() {
		return nil, apierror.Validation("status must be one of: todo in_progress completed")
	}

	if !priority.Valid() {
		return nil, apierror.Validation("priority must be one of: high medium low")
	}

	task := &types.Task{
		ProjectID:   project.ID,
		TenantID:    project.TenantID,
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		if err := s.checkAssignee(ctx, project.TenantID, *req.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = req.AssignedTo
	}

	if req.DueDate != nil {
		task.DueDate = &req.DueDate.Time
	}

	created, err := s.storage.CreateTask(ctx, task)
	if err != nil {
		return nil, apierror.Internal(fmt.Errorf("failed to create task: %w", err))
	}

	s.audit.Record(ctx, audit.Entry(created.TenantID, principal.UserID, audit.ActionCreateTask, audit.EntityTask, created.ID))

	return created, nil
}

// ListTasks lists the tasks of filter.ProjectID, scoped to the project's tenant.
func (s *Service) ListTasks(ctx context.Context, principal *types.Principal, filter *types.TaskFilter) (*types.TaskList, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.ListTasks")
	defer span.End()

	project, err := s.loadProject(ctx, filter.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.TASK_LIST, authorization.TenantResource(project.TenantID)); err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apierror.Validation("status must be one of: todo in_progress completed")
	}

	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, apierror.Validation("priority must be one of: high medium low")
	}

	filter.TenantID = project.TenantID
	filter.Search = strings.TrimSpace(filter.Search)

	tasks, total, err := s.storage.ListTasks(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	return &types.TaskList{
		Tasks:      tasks,
		Pagination: db.Paginate(filter.Page, total),
	}, nil
}

func (s *Service) GetTask(ctx context.Context, principal *types.Principal, id string) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.GetTask")
	defer span.End()

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.TASK_READ, authorization.TenantResource(task.TenantID)); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *Service) UpdateTaskStatus(ctx context.Context, principal *types.Principal, id string, status types.TaskStatus) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.UpdateTaskStatus")
	defer span.End()

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.TASK_UPDATE_STATUS, authorization.TenantResource(task.TenantID)); err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, apierror.Validation("status must be one of: todo in_progress completed")
	}

	return s.apply(ctx, principal, id, &types.TaskPatch{Status: types.Some(status)}, audit.ActionUpdateTaskStatus)
}

// UpdateTask applies a partial update. Absent fields are kept, an explicit
// null clears assignee and due date.
func (s *Service) UpdateTask(ctx context.Context, principal *types.Principal, id string, patch *types.TaskPatch) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.UpdateTask")
	defer span.End()

	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.TASK_UPDATE, authorization.TenantResource(task.TenantID)); err != nil {
		return nil, err
	}

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	if patch.AssignedTo.HasValue() {
		if err := s.checkAssignee(ctx, task.TenantID, patch.AssignedTo.Value); err != nil {
			return nil, err
		}
	}

	return s.apply(ctx, principal, id, patch, audit.ActionUpdateTask)
}

func (s *Service) DeleteTask(ctx context.Context, principal *types.Principal, id string) error {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.DeleteTask")
	defer span.End()

	task, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.TASK_DELETE, authorization.TenantResource(task.TenantID)); err != nil {
		return err
	}

	err = s.storage.DeleteTask(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apierror.NotFound("task not found")
	}

	if err != nil {
		return apierror.Internal(err)
	}

	s.audit.Record(ctx, audit.Entry(task.TenantID, principal.UserID, audit.ActionDeleteTask, audit.EntityTask, task.ID))

	return nil
}

func (s *Service) apply(ctx context.Context, principal *types.Principal, id string, patch *types.TaskPatch, action string) (*types.Task, error) {
	err := s.storage.UpdateTask(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("task not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry(updated.TenantID, principal.UserID, action, audit.EntityTask, updated.ID))

	return updated, nil
}

// checkAssignee rejects assignees that are unknown or belong to another tenant.
func (s *Service) checkAssignee(ctx context.Context, tenantID, userID string) error {
	user, err := s.storage.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apierror.Validation("assignedTo must be a user of this tenant")
	}

	if err != nil {
		return apierror.Internal(err)
	}

	if user.TenantIDValue() != tenantID {
		return apierror.Validation("assignedTo must be a user of this tenant")
	}

	return nil
}

func (s *Service) load(ctx context.Context, id string) (*types.Task, error) {
	task, err := s.storage.GetTask(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("task not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	return task, nil
}

func (s *Service) loadProject(ctx context.Context, id string) (*types.Project, error) {
	project, err := s.storage.GetProject(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("project not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	return project, nil
}

func validatePatch(patch *types.TaskPatch) error {
	if patch.Empty() {
		return apierror.Validation("no fields to update")
	}

	if patch.Title.Set {
		if patch.Title.Null || strings.TrimSpace(patch.Title.Value) == "" {
			return apierror.Validation("title cannot be empty")
		}
		patch.Title.Value = strings.TrimSpace(patch.Title.Value)
	}

	if patch.Description.Set && patch.Description.Null {
		return apierror.Validation("description cannot be null")
	}

	if patch.Status.Set && !patch.Status.Value.Valid() {
		return apierror.Validation("status must be one of: todo in_progress completed")
	}

	if patch.Priority.Set && !patch.Priority.Value.Valid() {
		return apierror.Validation("priority must be one of: high medium low")
	}

	// an empty assignee means unassign
	if patch.AssignedTo.HasValue() && patch.AssignedTo.Value == "" {
		patch.AssignedTo = types.Null[string]()
	}

	return nil
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	audit AuditInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.authz = authz
	s.audit = audit

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
