// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"context"
	"time"

	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/types"
	"github.com/canonical/project-service/pkg/authentication"
)

type ServiceInterface interface {
	Login(ctx context.Context, req *LoginRequest) (*Session, error)
	Me(ctx context.Context, principal *types.Principal) (*Profile, error)
	Logout(ctx context.Context, principal *types.Principal) error
}

type StorageInterface interface {
	GetTenantUserForLogin(ctx context.Context, email, subdomain string) (*types.User, *types.Tenant, error)
	GetPlatformUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	TenantStats(ctx context.Context, tenantID string) (*types.TenantStats, error)
}

type AuthorizerInterface interface {
	Authorize(ctx context.Context, principal *types.Principal, action authorization.Action, resource authorization.Resource) error
	AuthorizeLogin(ctx context.Context, user *types.User, tenant *types.Tenant) error
}

type HasherInterface interface {
	Compare(hash, plain string) error
}

type TokenManagerInterface interface {
	IssueToken(ctx context.Context, user *types.User) (string, *authentication.Claims, error)
	ExpiresIn() time.Duration
	Revoke(ctx context.Context, principal *types.Principal, expiresAt time.Time) error
}

type AuditInterface interface {
	Record(ctx context.Context, entry *types.AuditLogEntry)
}
