// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

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

// CreateProject creates a project in the caller's tenant. Counting and
// inserting happen under the tenant row lock so the plan limit holds.
func (s *Service) CreateProject(ctx context.Context, principal *types.Principal, req *CreateProjectRequest) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.CreateProject")
	defer span.End()

	tenantID := targetTenant(principal, req.TenantID)

	if err := s.authz.Authorize(ctx, principal, authorization.PROJECT_CREATE, authorization.TenantResource(tenantID)); err != nil {
		return nil, err
	}

	if tenantID == "" {
		return nil, apierror.Validation("tenantId is required")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierror.Validation("Project name is required")
	}

	status := req.Status
	if status == "" {
		status = types.ProjectActive
	}

	if !status.Valid() {
		return nil, apierror.Validation("status must be one of: active completed archived")
	}

	var project *types.Project

	err := s.storage.WithTx(ctx, func(ctx context.Context) error {
		tenant, err := s.storage.LockTenant(ctx, tenantID)
		if err != nil {
			return err
		}

		count, err := s.storage.CountProjects(ctx, tenant.ID)
		if err != nil {
			return err
		}

		if err := s.authz.CheckQuota(ctx, tenant.SubscriptionPlan, authorization.QUOTA_PROJECTS, count); err != nil {
			return err
		}

		creator := principal.UserID
		project, err = s.storage.CreateProject(ctx, &types.Project{
			TenantID:    tenant.ID,
			Name:        name,
			Description: req.Description,
			Status:      status,
			CreatedBy:   &creator,
		})
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return nil, apierror.NotFound("tenant not found")
	case apierror.KindOf(err) == apierror.KindQuotaExceeded:
		return nil, err
	default:
		return nil, apierror.Internal(fmt.Errorf("failed to create project: %w", err))
	}

	s.audit.Record(ctx, audit.Entry(project.TenantID, principal.UserID, audit.ActionCreateProject, audit.EntityProject, project.ID))

	return project, nil
}

// ListProjects lists the caller's tenant. Super admins may name any tenant or none.
func (s *Service) ListProjects(ctx context.Context, principal *types.Principal, filter *types.ProjectFilter) (*types.ProjectList, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.ListProjects")
	defer span.End()

	filter.TenantID = targetTenant(principal, filter.TenantID)

	if err := s.authz.Authorize(ctx, principal, authorization.PROJECT_LIST, authorization.TenantResource(filter.TenantID)); err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apierror.Validation("status must be one of: active completed archived")
	}

	filter.Search = strings.TrimSpace(filter.Search)

	projects, total, err := s.storage.ListProjects(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	return &types.ProjectList{
		Projects:   projects,
		Pagination: db.Paginate(filter.Page, total),
	}, nil
}

func (s *Service) GetProject(ctx context.Context, principal *types.Principal, id string) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.GetProject")
	defer span.End()

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.PROJECT_READ, authorization.TenantResource(project.TenantID)); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *Service) UpdateProject(ctx context.Context, principal *types.Principal, id string, patch *types.ProjectPatch) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.UpdateProject")
	defer span.End()

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.PROJECT_UPDATE, ownedBy(project)); err != nil {
		return nil, err
	}

	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	err = s.storage.UpdateProject(ctx, id, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("project not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Entry(updated.TenantID, principal.UserID, audit.ActionUpdateProject, audit.EntityProject, updated.ID))

	return updated, nil
}

// DeleteProject removes the project together with its tasks.
func (s *Service) DeleteProject(ctx context.Context, principal *types.Principal, id string) error {
	ctx, span := s.tracer.Start(ctx, "projects.Service.DeleteProject")
	defer span.End()

	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.Authorize(ctx, principal, authorization.PROJECT_DELETE, ownedBy(project)); err != nil {
		return err
	}

	err = s.storage.DeleteProject(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apierror.NotFound("project not found")
	}

	if err != nil {
		return apierror.Internal(err)
	}

	s.audit.Record(ctx, audit.Entry(project.TenantID, principal.UserID, audit.ActionDeleteProject, audit.EntityProject, project.ID))

	return nil
}

func (s *Service) load(ctx context.Context, id string) (*types.Project, error) {
	project, err := s.storage.GetProject(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("project not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	return project, nil
}

func ownedBy(p *types.Project) authorization.Resource {
	owner := ""
	if p.CreatedBy != nil {
		owner = *p.CreatedBy
	}
	return authorization.OwnedResource(p.TenantID, owner)
}

func targetTenant(principal *types.Principal, requested string) string {
	if principal.IsSuperAdmin() {
		return requested
	}
	if principal == nil {
		return ""
	}
	return principal.TenantID
}

func validatePatch(patch *types.ProjectPatch) error {
	if patch.Empty() {
		return apierror.Validation("no fields to update")
	}

	if patch.Name.Set {
		if patch.Name.Null || strings.TrimSpace(patch.Name.Value) == "" {
			return apierror.Validation("name cannot be empty")
		}
		patch.Name.Value = strings.TrimSpace(patch.Name.Value)
	}

	// send "" to clear a description
	if patch.Description.Set && patch.Description.Null {
		return apierror.Validation("description cannot be null")
	}

	if patch.Status.Set && !patch.Status.Value.Valid() {
		return apierror.Validation("status must be one of: active completed archived")
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
