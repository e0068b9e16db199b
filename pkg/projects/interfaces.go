// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"context"

	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/types"
)

type ServiceInterface interface {
	CreateProject(ctx context.Context, principal *types.Principal, req *CreateProjectRequest) (*types.Project, error)
	ListProjects(ctx context.Context, principal *types.Principal, filter *types.ProjectFilter) (*types.ProjectList, error)
	GetProject(ctx context.Context, principal *types.Principal, id string) (*types.Project, error)
	UpdateProject(ctx context.Context, principal *types.Principal, id string, patch *types.ProjectPatch) (*types.Project, error)
	DeleteProject(ctx context.Context, principal *types.Principal, id string) error
}

type StorageInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
	LockTenant(ctx context.Context, id string) (*types.Tenant, error)
	CountProjects(ctx context.Context, tenantID string) (int, error)
	CreateProject(ctx context.Context, p *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context, filter *types.ProjectFilter) ([]*types.Project, uint64, error)
	UpdateProject(ctx context.Context, id string, patch *types.ProjectPatch) error
	DeleteProject(ctx context.Context, id string) error
}

type AuthorizerInterface interface {
	Authorize(ctx context.Context, principal *types.Principal, action authorization.Action, resource authorization.Resource) error
	CheckQuota(ctx context.Context, plan types.Plan, resource authorization.QuotaResource, count int) error
}

type AuditInterface interface {
	Record(ctx context.Context, entry *types.AuditLogEntry)
}
