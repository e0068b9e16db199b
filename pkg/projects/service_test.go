// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/audit"
	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/storage"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package projects -destination ./mock_projects.go -source=./interfaces.go

var (
	superAdmin  = &types.Principal{UserID: "root", Role: types.RoleSuperAdmin}
	tenantAdmin = &types.Principal{UserID: "admin-1", TenantID: "tenant-1", Role: types.RoleTenantAdmin}
	member      = &types.Principal{UserID: "user-1", TenantID: "tenant-1", Role: types.RoleUser}
	colleague   = &types.Principal{UserID: "user-2", TenantID: "tenant-1", Role: types.RoleUser}
	outsider    = &types.Principal{UserID: "user-9", TenantID: "tenant-2", Role: types.RoleUser}
)

func projectBy(creator string) *types.Project {
	return &types.Project{ID: "project-1", TenantID: "tenant-1", Name: "Roadmap", Status: types.ProjectActive, CreatedBy: &creator}
}

func newTestService(ctrl *gomock.Controller) (*Service, *MockStorageInterface, *MockAuditInterface) {
	mockStorage := NewMockStorageInterface(ctrl)
	mockAudit := NewMockAuditInterface(ctrl)

	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test")
	logger := logging.NewNoopLogger()

	authz := authorization.NewAuthorizer(authorization.DefaultLimits(), tracer, monitor, logger)

	return NewService(mockStorage, authz, mockAudit, tracer, monitor, logger), mockStorage, mockAudit
}

// TestService_CreateProject_FreePlanQuota creates projects against an
// in-memory tenant until the free plan limit of three is hit.
func TestService_CreateProject_FreePlanQuota(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, mockAudit := newTestService(ctrl)

	tenant := &types.Tenant{ID: "tenant-1", SubscriptionPlan: types.PlanFree, Status: types.TenantActive}
	created := make([]*types.Project, 0)

	mockStorage.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).Times(4)
	mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-1").Return(tenant, nil).Times(4)
	mockStorage.EXPECT().CountProjects(gomock.Any(), "tenant-1").DoAndReturn(
		func(context.Context, string) (int, error) {
			return len(created), nil
		},
	).Times(4)
	mockStorage.EXPECT().CreateProject(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *types.Project) (*types.Project, error) {
			if p.CreatedBy == nil || *p.CreatedBy != member.UserID {
				t.Errorf("expected creator %s", member.UserID)
			}
			if p.Status != types.ProjectActive {
				t.Errorf("expected default status active, got %s", p.Status)
			}
			stored := *p
			stored.ID = fmt.Sprintf("project-%d", len(created)+1)
			created = append(created, &stored)
			return &stored, nil
		},
	).Times(3)
	mockAudit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(3)

	for i := 1; i <= 3; i++ {
		if _, err := s.CreateProject(context.Background(), member, &CreateProjectRequest{Name: fmt.Sprintf("Project %d", i)}); err != nil {
			t.Fatalf("project %d: unexpected error: %v", i, err)
		}
	}

	_, err := s.CreateProject(context.Background(), member, &CreateProjectRequest{Name: "Project 4"})
	if kind := apierror.KindOf(err); kind != apierror.KindQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %q (%v)", kind, err)
	}

	if len(created) != 3 {
		t.Errorf("expected 3 projects, got %d", len(created))
	}
}

func TestService_CreateProject(t *testing.T) {
	testCases := []struct {
		name         string
		principal    *types.Principal
		req          *CreateProjectRequest
		setupMocks   func(*MockStorageInterface)
		expectedKind apierror.Kind
	}{
		{
			name:         "blank name",
			principal:    member,
			req:          &CreateProjectRequest{Name: "  "},
			setupMocks:   func(*MockStorageInterface) {},
			expectedKind: apierror.KindValidation,
		},
		{
			name:         "unknown status",
			principal:    member,
			req:          &CreateProjectRequest{Name: "Roadmap", Status: "paused"},
			setupMocks:   func(*MockStorageInterface) {},
			expectedKind: apierror.KindValidation,
		},
		{
			name:         "super admin without tenant",
			principal:    superAdmin,
			req:          &CreateProjectRequest{Name: "Roadmap"},
			setupMocks:   func(*MockStorageInterface) {},
			expectedKind: apierror.KindValidation,
		},
		{
			name:         "anonymous",
			principal:    nil,
			req:          &CreateProjectRequest{Name: "Roadmap"},
			setupMocks:   func(*MockStorageInterface) {},
			expectedKind: apierror.KindUnauthenticated,
		},
		{
			name:      "requested tenant is ignored for tenant users",
			principal: member,
			req:       &CreateProjectRequest{Name: "Roadmap", TenantID: "tenant-2"},
			setupMocks: func(mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, fn func(context.Context) error) error {
						return fn(ctx)
					},
				)
				mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-1").Return(nil, storage.ErrNotFound)
			},
			expectedKind: apierror.KindNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, _ := newTestService(ctrl)
			tc.setupMocks(mockStorage)

			_, err := s.CreateProject(context.Background(), tc.principal, tc.req)

			if kind := apierror.KindOf(err); kind != tc.expectedKind {
				t.Errorf("expected kind %q, got %q (%v)", tc.expectedKind, kind, err)
			}
		})
	}
}

func TestService_UpdateProject(t *testing.T) {
	testCases := []struct {
		name         string
		principal    *types.Principal
		patch        *types.ProjectPatch
		expectUpdate bool
		expectedKind apierror.Kind
	}{
		{
			name:         "creator updates",
			principal:    member,
			patch:        &types.ProjectPatch{Status: types.Some(types.ProjectCompleted)},
			expectUpdate: true,
		},
		{
			name:         "admin updates",
			principal:    tenantAdmin,
			patch:        &types.ProjectPatch{Description: types.Some("")},
			expectUpdate: true,
		},
		{
			name:         "null description",
			principal:    tenantAdmin,
			patch:        &types.ProjectPatch{Description: types.Null[string]()},
			expectedKind: apierror.KindValidation,
		},
		{
			name:         "other user cannot update",
			principal:    colleague,
			patch:        &types.ProjectPatch{Name: types.Some("Mine")},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "other tenant cannot update",
			principal:    outsider,
			patch:        &types.ProjectPatch{Name: types.Some("Mine")},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "null name",
			principal:    member,
			patch:        &types.ProjectPatch{Name: types.Null[string]()},
			expectedKind: apierror.KindValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit := newTestService(ctrl)
			mockStorage.EXPECT().GetProject(gomock.Any(), "project-1").Return(projectBy("user-1"), nil).AnyTimes()

			if tc.expectUpdate {
				mockStorage.EXPECT().UpdateProject(gomock.Any(), "project-1", tc.patch).Return(nil)
				mockAudit.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
					func(_ context.Context, entry *types.AuditLogEntry) {
						if entry.Action != audit.ActionUpdateProject {
							t.Errorf("expected %s, got %s", audit.ActionUpdateProject, entry.Action)
						}
					},
				)
			}

			_, err := s.UpdateProject(context.Background(), tc.principal, "project-1", tc.patch)

			if kind := apierror.KindOf(err); kind != tc.expectedKind {
				t.Errorf("expected kind %q, got %q (%v)", tc.expectedKind, kind, err)
			}
		})
	}
}

func TestService_DeleteProject(t *testing.T) {
	testCases := []struct {
		name         string
		principal    *types.Principal
		creator      string
		expectDelete bool
		expectedKind apierror.Kind
	}{
		{name: "creator deletes", principal: member, creator: "user-1", expectDelete: true},
		{name: "admin deletes", principal: tenantAdmin, creator: "user-1", expectDelete: true},
		{name: "super admin deletes", principal: superAdmin, creator: "user-1", expectDelete: true},
		{name: "other user", principal: colleague, creator: "user-1", expectedKind: apierror.KindForbidden},
		{name: "other tenant", principal: outsider, creator: "user-1", expectedKind: apierror.KindForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit := newTestService(ctrl)
			mockStorage.EXPECT().GetProject(gomock.Any(), "project-1").Return(projectBy(tc.creator), nil)

			if tc.expectDelete {
				mockStorage.EXPECT().DeleteProject(gomock.Any(), "project-1").Return(nil)
				mockAudit.EXPECT().Record(gomock.Any(), gomock.Any())
			}

			err := s.DeleteProject(context.Background(), tc.principal, "project-1")

			if kind := apierror.KindOf(err); kind != tc.expectedKind {
				t.Errorf("expected kind %q, got %q (%v)", tc.expectedKind, kind, err)
			}
		})
	}
}

func TestService_GetProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, _ := newTestService(ctrl)
	mockStorage.EXPECT().GetProject(gomock.Any(), "project-1").Return(projectBy("user-1"), nil).Times(2)
	mockStorage.EXPECT().GetProject(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	if _, err := s.GetProject(context.Background(), colleague, "project-1"); err != nil {
		t.Errorf("expected tenant member to read project, got %v", err)
	}

	if _, err := s.GetProject(context.Background(), outsider, "project-1"); apierror.KindOf(err) != apierror.KindForbidden {
		t.Errorf("expected forbidden for another tenant, got %v", err)
	}

	if _, err := s.GetProject(context.Background(), member, "missing"); apierror.KindOf(err) != apierror.KindNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_ListProjects_ScopesTenant(t *testing.T) {
	testCases := []struct {
		name           string
		principal      *types.Principal
		requested      string
		expectedTenant string
	}{
		{name: "member is pinned to own tenant", principal: member, requested: "tenant-2", expectedTenant: "tenant-1"},
		{name: "super admin lists everything", principal: superAdmin, requested: "", expectedTenant: ""},
		{name: "super admin picks a tenant", principal: superAdmin, requested: "tenant-2", expectedTenant: "tenant-2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, _ := newTestService(ctrl)
			mockStorage.EXPECT().ListProjects(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, filter *types.ProjectFilter) ([]*types.Project, uint64, error) {
					if filter.TenantID != tc.expectedTenant {
						t.Errorf("expected tenant %q, got %q", tc.expectedTenant, filter.TenantID)
					}
					return []*types.Project{}, 0, nil
				},
			)

			list, err := s.ListProjects(context.Background(), tc.principal, &types.ProjectFilter{TenantID: tc.requested})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if list.Pagination.CurrentPage != 1 || list.Pagination.Limit != 10 {
				t.Errorf("unexpected pagination %+v", list.Pagination)
			}
		})
	}
}
