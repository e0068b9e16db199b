// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"context"

	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/types"
)

type ServiceInterface interface {
	CreateTask(ctx context.Context, principal *types.Principal, projectID string, req *CreateTaskRequest) (*types.Task, error)
	ListTasks(ctx context.Context, principal *types.Principal, filter *types.TaskFilter) (*types.TaskList, error)
	GetTask(ctx context.Context, principal *types.Principal, id string) (*types.Task, error)
	UpdateTaskStatus(ctx context.Context, principal *types.Principal, id string, status types.TaskStatus) (*types.Task, error)
	UpdateTask(ctx context.Context, principal *types.Principal, id string, patch *types.TaskPatch) (*types.Task, error)
	DeleteTask(ctx context.Context, principal *types.Principal, id string) error
}

type StorageInterface interface {
	GetProject(ctx context.Context, id string) (*types.Project, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	CreateTask(ctx context.Context, t *types.Task) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, filter *types.TaskFilter) ([]*types.Task, uint64, error)
	UpdateTask(ctx context.Context, id string, patch *types.TaskPatch) error
	DeleteTask(ctx context.Context, id string) error
}

type AuthorizerInterface interface {
	Authorize(ctx context.Context, principal *types.Principal, action authorization.Action, resource authorization.Resource) error
}

type AuditInterface interface {
	Record(ctx context.Context, entry *types.AuditLogEntry)
}
