// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"context"

	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/types"
)

type ServiceInterface interface {
	CreateUser(ctx context.Context, principal *types.Principal, tenantID string, req *CreateUserRequest) (*types.User, error)
	ListUsers(ctx context.Context, principal *types.Principal, filter *types.UserFilter) (*types.UserList, error)
	GetUser(ctx context.Context, principal *types.Principal, id string) (*types.User, error)
	UpdateUser(ctx context.Context, principal *types.Principal, id string, patch *types.UserPatch) (*types.User, error)
	DeleteUser(ctx context.Context, principal *types.Principal, id string) error
}

type StorageInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
	LockTenant(ctx context.Context, id string) (*types.Tenant, error)
	CountUsers(ctx context.Context, tenantID string) (int, error)
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	ListUsers(ctx context.Context, filter *types.UserFilter) ([]*types.User, uint64, error)
	UpdateUser(ctx context.Context, id string, patch *types.UserPatch) error
	DeleteUser(ctx context.Context, id string) error
}

type AuthorizerInterface interface {
	Authorize(ctx context.Context, principal *types.Principal, action authorization.Action, resource authorization.Resource) error
	CheckQuota(ctx context.Context, plan types.Plan, resource authorization.QuotaResource, count int) error
}

type HasherInterface interface {
	Hash(plain string) (string, error)
}

type AuditInterface interface {
	Record(ctx context.Context, entry *types.AuditLogEntry)
}
