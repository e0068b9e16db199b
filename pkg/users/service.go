// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

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
	hasher  HasherInterface
	audit   AuditInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CreateUser adds a user to tenantID. The tenant row is locked while the
// user quota is counted so concurrent creations cannot overshoot the plan.
func (s *Service) CreateUser(ctx context.Context, principal *types.Principal, tenantID string, req *CreateUserRequest) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.CreateUser")
	defer span.End()

	if err := s.authz.Authorize(ctx, principal, authorization.USER_CREATE, authorization.TenantResource(tenantID)); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = types.RoleUser
	}

	if role != types.RoleUser && role != types.RoleTenantAdmin {
		return nil, apierror.Validation("role must be one of: tenant_admin user")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" {
		return nil, apierror.Validation("email and fullName are required")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apierror.Validation("password is invalid")
	}

	var user *types.User

	err = s.storage.WithTx(ctx, func(ctx context.Context) error {
		tenant, err := s.storage.LockTenant(ctx, tenantID)
		if err != nil {
			return err
		}

		count, err := s.storage.CountUsers(ctx, tenant.ID)
		if err != nil {
			return err
		}

		if err := s.authz.CheckQuota(ctx, tenant.SubscriptionPlan, authorization.QUOTA_USERS, count); err != nil {
			return err
		}

		user, err = s.storage.CreateUser(ctx, &types.User{
			TenantID:     &tenant.ID,
			Email:        email,
			PasswordHash: hash,
			FullName:     fullName,
			Role:         role,
			IsActive:     true,
		})
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return nil, apierror.NotFound("tenant not found")
	case errors.Is(err, storage.ErrDuplicateKey):
		return nil, apierror.Conflict("Email already exists in this tenant")
	case apierror.KindOf(err) == apierror.KindQuotaExceeded:
		return nil, err
	default:
		return nil, apierror.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	s.audit.Record(ctx, audit.Entry(tenantID, principal.UserID, audit.ActionCreateUser, audit.EntityUser, user.ID))
	s.logger.Security().UserCreated(principal.UserID, user.ID)

	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, principal *types.Principal, filter *types.UserFilter) (*types.UserList, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.ListUsers")
	defer span.End()

	if err := s.authz.Authorize(ctx, principal, authorization.USER_LIST, authorization.TenantResource(filter.TenantID)); err != nil {
		return nil, err
	}

	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apierror.Validation("role must be one of: super_admin tenant_admin user")
	}

	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.storage.ListUsers(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	return &types.UserList{
		Users:      users,
		Pagination: db.Paginate(filter.Page, total),
	}, nil
}

func (s *Service) GetUser(ctx context.Context, principal *types.Principal, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.GetUser")
	defer span.End()

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.USER_READ, authorization.OwnedResource(user.TenantIDValue(), user.ID)); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser applies patch. Profile fields may be changed by the user
// themselves, role and activation only by an admin acting on someone else.
func (s *Service) UpdateUser(ctx context.Context, principal *types.Principal, id string, patch *types.UserPatch) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.UpdateUser")
	defer span.End()

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resource := authorization.OwnedResource(user.TenantIDValue(), user.ID)

	// every update needs the profile permission, access changes need more
	if err := s.authz.Authorize(ctx, principal, authorization.USER_UPDATE_PROFILE, resource); err != nil {
		return nil, err
	}

	if patch.TouchesAccess() {
		if err := s.authz.Authorize(ctx, principal, authorization.USER_UPDATE_ACCESS, resource); err != nil {
			return nil, err
		}
	}

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	err = s.storage.UpdateUser(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("user not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry(updated.TenantIDValue(), principal.UserID, audit.ActionUpdateUser, audit.EntityUser, updated.ID))

	if patch.TouchesAccess() {
		s.logger.Security().AdminAction(principal.UserID, audit.ActionUpdateUser, updated.ID)
	}

	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, principal *types.Principal, id string) error {
	ctx, span := s.tracer.Start(ctx, "users.Service.DeleteUser")
	defer span.End()

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.USER_DELETE, authorization.OwnedResource(user.TenantIDValue(), user.ID)); err != nil {
		return err
	}

	err = s.storage.DeleteUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apierror.NotFound("user not found")
	}

	if err != nil {
		return apierror.Internal(err)
	}

	s.audit.Record(ctx, audit.Entry(user.TenantIDValue(), principal.UserID, audit.ActionDeleteUser, audit.EntityUser, user.ID))
	s.logger.Security().UserDeleted(principal.UserID, user.ID)

	return nil
}

func (s *Service) load(ctx context.Context, id string) (*types.User, error) {
	user, err := s.storage.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("user not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	return user, nil
}

func validatePatch(patch *types.UserPatch) error {
	if patch.Empty() {
		return apierror.Validation("no fields to update")
	}

	if patch.FullName.Set {
		if patch.FullName.Null || strings.TrimSpace(patch.FullName.Value) == "" {
			return apierror.Validation("fullName cannot be empty")
		}
		patch.FullName.Value = strings.TrimSpace(patch.FullName.Value)
	}

	if patch.Role.Set && patch.Role.Value != types.RoleUser && patch.Role.Value != types.RoleTenantAdmin {
		return apierror.Validation("role must be one of: tenant_admin user")
	}

	if patch.IsActive.Set && patch.IsActive.Null {
		return apierror.Validation("isActive cannot be null")
	}

	return nil
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	hasher HasherInterface,
	audit AuditInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.authz = authz
	s.hasher = hasher
	s.audit = audit

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
