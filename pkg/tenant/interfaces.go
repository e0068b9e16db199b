// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/types"
)

type ServiceInterface interface {
	RegisterTenant(ctx context.Context, req *RegisterTenantRequest) (*Registration, error)
	ListTenants(ctx context.Context, principal *types.Principal, filter *types.TenantFilter) (*types.TenantList, error)
	GetTenant(ctx context.Context, principal *types.Principal, id string) (*TenantDetail, error)
	UpdateTenant(ctx context.Context, principal *types.Principal, id string, patch *types.TenantPatch) (*types.Tenant, error)
}

type StorageInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context, filter *types.TenantFilter) ([]*types.Tenant, uint64, error)
	UpdateTenant(ctx context.Context, id string, patch *types.TenantPatch) error
	TenantStats(ctx context.Context, tenantID string) (*types.TenantStats, error)
}

type AuthorizerInterface interface {
	Authorize(ctx context.Context, principal *types.Principal, action authorization.Action, resource authorization.Resource) error
	Limits(plan types.Plan) authorization.PlanLimits
}

type HasherInterface interface {
	Hash(plain string) (string, error)
}

type AuditInterface interface {
	Record(ctx context.Context, entry *types.AuditLogEntry)
}
