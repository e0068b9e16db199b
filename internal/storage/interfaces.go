// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/project-service/internal/types"
)

type StorageInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error

	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	LockTenant(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context, filter *types.TenantFilter) ([]*types.Tenant, uint64, error)
	UpdateTenant(ctx context.Context, id string, patch *types.TenantPatch) error
	TenantStats(ctx context.Context, tenantID string) (*types.TenantStats, error)

	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetTenantUserForLogin(ctx context.Context, email, subdomain string) (*types.User, *types.Tenant, error)
	GetPlatformUserByEmail(ctx context.Context, email string) (*types.User, error)
	CountUsers(ctx context.Context, tenantID string) (int, error)
	ListUsers(ctx context.Context, filter *types.UserFilter) ([]*types.User, uint64, error)
	UpdateUser(ctx context.Context, id string, patch *types.UserPatch) error
	DeleteUser(ctx context.Context, id string) error

	CreateProject(ctx context.Context, p *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	CountProjects(ctx context.Context, tenantID string) (int, error)
	ListProjects(ctx context.Context, filter *types.ProjectFilter) ([]*types.Project, uint64, error)
	UpdateProject(ctx context.Context, id string, patch *types.ProjectPatch) error
	DeleteProject(ctx context.Context, id string) error

	CreateTask(ctx context.Context, t *types.Task) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, filter *types.TaskFilter) ([]*types.Task, uint64, error)
	UpdateTask(ctx context.Context, id string, patch *types.TaskPatch) error
	DeleteTask(ctx context.Context, id string) error

	CreateAuditLog(ctx context.Context, entry *types.AuditLogEntry) error
}
