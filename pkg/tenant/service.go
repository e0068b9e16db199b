// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
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

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

type Service struct {
	storage StorageInterface
	authz   AuthorizerInterface
	hasher  HasherInterface
	audit   AuditInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterTenant creates a tenant and its first admin atomically.
func (s *Service) RegisterTenant(ctx context.Context, req *RegisterTenantRequest) (*Registration, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RegisterTenant")
	defer span.End()

	name := strings.TrimSpace(req.TenantName)
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	email := strings.ToLower(strings.TrimSpace(req.AdminEmail))
	fullName := strings.TrimSpace(req.AdminFullName)

	if name == "" || fullName == "" || email == "" {
		return nil, apierror.Validation("tenantName, adminEmail and adminFullName are required")
	}

	if !subdomainPattern.MatchString(subdomain) {
		return nil, apierror.Validation("subdomain may only contain lowercase letters, digits and hyphens")
	}

	// bcrypt is slow, keep it out of the transaction
	hash, err := s.hasher.Hash(req.AdminPassword)
	if err != nil {
		return nil, apierror.Validation("adminPassword is invalid")
	}

	limits := s.authz.Limits(types.PlanFree)

	var (
		tenant *types.Tenant
		admin  *types.User
	)

	err = s.storage.WithTx(ctx, func(ctx context.Context) error {
		var err error

		tenant, err = s.storage.CreateTenant(ctx, &types.Tenant{
			Name:             name,
			Subdomain:        subdomain,
			Status:           types.TenantActive,
			SubscriptionPlan: types.PlanFree,
			MaxUsers:         limits.MaxUsers,
			MaxProjects:      limits.MaxProjects,
		})
		if err != nil {
			return err
		}

		admin, err = s.storage.CreateUser(ctx, &types.User{
			TenantID:     &tenant.ID,
			Email:        email,
			PasswordHash: hash,
			FullName:     fullName,
			Role:         types.RoleTenantAdmin,
			IsActive:     true,
		})
		return err
	})

	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil, apierror.Conflict("Subdomain or Email already exists")
	}

	if err != nil {
		return nil, apierror.Internal(fmt.Errorf("failed to register tenant: %w", err))
	}

	s.audit.Record(ctx, audit.Entry(tenant.ID, admin.ID, audit.ActionRegisterTenant, audit.EntityTenant, tenant.ID))
	s.logger.Security().UserCreated(admin.ID, admin.ID)

	return &Registration{
		TenantID:  tenant.ID,
		Subdomain: tenant.Subdomain,
		AdminUser: admin,
	}, nil
}

func (s *Service) ListTenants(ctx context.Context, principal *types.Principal, filter *types.TenantFilter) (*types.TenantList, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	if err := s.authz.Authorize(ctx, principal, authorization.TENANT_LIST, authorization.TenantResource("")); err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apierror.Validation("status must be one of: active suspended")
	}

	if filter.Plan != "" && !filter.Plan.Valid() {
		return nil, apierror.Validation("plan must be one of: free pro enterprise")
	}

	tenants, total, err := s.storage.ListTenants(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	return &types.TenantList{
		Tenants:    tenants,
		Pagination: db.Paginate(filter.Page, total),
	}, nil
}

func (s *Service) GetTenant(ctx context.Context, principal *types.Principal, id string) (*TenantDetail, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	if err := s.authz.Authorize(ctx, principal, authorization.TENANT_READ, authorization.TenantResource(id)); err != nil {
		return nil, err
	}

	tenant, err := s.storage.GetTenantByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("tenant not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	stats, err := s.storage.TenantStats(ctx, tenant.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	return &TenantDetail{Tenant: tenant, Stats: stats}, nil
}

// UpdateTenant applies patch. Status and plan changes need the settings permission,
// a plan change also refreshes the stored quota snapshot.
func (s *Service) UpdateTenant(ctx context.Context, principal *types.Principal, id string, patch *types.TenantPatch) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateTenant")
	defer span.End()

	if err := s.authz.Authorize(ctx, principal, authorization.TENANT_UPDATE, authorization.TenantResource(id)); err != nil {
		return nil, err
	}

	if patch.TouchesSettings() {
		if err := s.authz.Authorize(ctx, principal, authorization.TENANT_UPDATE_SETTINGS, authorization.TenantResource(id)); err != nil {
			return nil, err
		}
	}

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	if patch.SubscriptionPlan.HasValue() {
		limits := s.authz.Limits(patch.SubscriptionPlan.Value)
		patch.MaxUsers = types.Some(limits.MaxUsers)
		patch.MaxProjects = types.Some(limits.MaxProjects)
	}

	err := s.storage.UpdateTenant(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("tenant not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	tenant, err := s.storage.GetTenantByID(ctx, id)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	s.audit.Record(ctx, audit.Entry(tenant.ID, principal.UserID, audit.ActionUpdateTenant, audit.EntityTenant, tenant.ID))

	if patch.TouchesSettings() {
		s.logger.Security().AdminAction(principal.UserID, audit.ActionUpdateTenant, tenant.ID)
	}

	return tenant, nil
}

func validatePatch(patch *types.TenantPatch) error {
	if patch.Empty() {
		return apierror.Validation("no fields to update")
	}

	if patch.Name.Set && (patch.Name.Null || strings.TrimSpace(patch.Name.Value) == "") {
		return apierror.Validation("name cannot be empty")
	}

	if patch.Status.Set && !patch.Status.Value.Valid() {
		return apierror.Validation("status must be one of: active suspended")
	}

	if patch.SubscriptionPlan.Set && !patch.SubscriptionPlan.Value.Valid() {
		return apierror.Validation("subscriptionPlan must be one of: free pro enterprise")
	}

	if patch.Name.HasValue() {
		patch.Name.Value = strings.TrimSpace(patch.Name.Value)
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
