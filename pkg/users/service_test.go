// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/audit"
	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/password"
	"github.com/canonical/project-service/internal/storage"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package users -destination ./mock_users.go -source=./interfaces.go

var (
	superAdmin  = &types.Principal{UserID: "root", Role: types.RoleSuperAdmin}
	tenantAdmin = &types.Principal{UserID: "admin-1", TenantID: "tenant-1", Role: types.RoleTenantAdmin}
	member      = &types.Principal{UserID: "user-1", TenantID: "tenant-1", Role: types.RoleUser}
	outsider    = &types.Principal{UserID: "admin-2", TenantID: "tenant-2", Role: types.RoleTenantAdmin}
)

func userIn(tenantID, id string, role types.Role) *types.User {
	return &types.User{ID: id, TenantID: &tenantID, Email: id + "@acme.io", FullName: id, Role: role, IsActive: true}
}

func newTestService(ctrl *gomock.Controller) (*Service, *MockStorageInterface, *MockAuditInterface) {
	mockStorage := NewMockStorageInterface(ctrl)
	mockAudit := NewMockAuditInterface(ctrl)

	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test")
	logger := logging.NewNoopLogger()

	authz := authorization.NewAuthorizer(authorization.DefaultLimits(), tracer, monitor, logger)

	s := NewService(mockStorage, authz, password.NewHasher(bcrypt.MinCost), mockAudit, tracer, monitor, logger)
	return s, mockStorage, mockAudit
}

func runInTx(mockStorage *MockStorageInterface) {
	mockStorage.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
}

func TestService_CreateUser(t *testing.T) {
	freeTenant := &types.Tenant{ID: "tenant-1", SubscriptionPlan: types.PlanFree, Status: types.TenantActive}
	req := &CreateUserRequest{Email: " Bob@Acme.io ", Password: "s3cretpass", FullName: "Bob"}

	testCases := []struct {
		name         string
		principal    *types.Principal
		tenantID     string
		req          *CreateUserRequest
		setupMocks   func(*MockStorageInterface, *MockAuditInterface)
		expectedKind apierror.Kind
	}{
		{
			name:      "admin adds user under quota",
			principal: tenantAdmin,
			tenantID:  "tenant-1",
			req:       req,
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditInterface) {
				runInTx(mockStorage)
				mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-1").Return(freeTenant, nil)
				mockStorage.EXPECT().CountUsers(gomock.Any(), "tenant-1").Return(4, nil)
				mockStorage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, u *types.User) (*types.User, error) {
						if u.Email != "bob@acme.io" || u.Role != types.RoleUser || u.TenantIDValue() != "tenant-1" {
							t.Errorf("unexpected user %+v", u)
						}
						created := *u
						created.ID = "user-2"
						return &created, nil
					},
				)
				mockAudit.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
					func(_ context.Context, entry *types.AuditLogEntry) {
						if entry.Action != audit.ActionCreateUser || *entry.EntityID != "user-2" {
							t.Errorf("unexpected audit entry %+v", entry)
						}
					},
				)
			},
		},
		{
			name:      "user quota reached",
			principal: tenantAdmin,
			tenantID:  "tenant-1",
			req:       req,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockAuditInterface) {
				runInTx(mockStorage)
				mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-1").Return(freeTenant, nil)
				mockStorage.EXPECT().CountUsers(gomock.Any(), "tenant-1").Return(5, nil)
			},
			expectedKind: apierror.KindQuotaExceeded,
		},
		{
			name:      "duplicate email",
			principal: tenantAdmin,
			tenantID:  "tenant-1",
			req:       req,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockAuditInterface) {
				runInTx(mockStorage)
				mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-1").Return(freeTenant, nil)
				mockStorage.EXPECT().CountUsers(gomock.Any(), "tenant-1").Return(1, nil)
				mockStorage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("failed to insert user: %w", storage.ErrDuplicateKey))
			},
			expectedKind: apierror.KindConflict,
		},
		{
			name:      "super admin adds user to missing tenant",
			principal: superAdmin,
			tenantID:  "tenant-9",
			req:       req,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockAuditInterface) {
				runInTx(mockStorage)
				mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-9").Return(nil, storage.ErrNotFound)
			},
			expectedKind: apierror.KindNotFound,
		},
		{
			name:         "regular user cannot add users",
			principal:    member,
			tenantID:     "tenant-1",
			req:          req,
			setupMocks:   func(*MockStorageInterface, *MockAuditInterface) {},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "admin of another tenant",
			principal:    outsider,
			tenantID:     "tenant-1",
			req:          req,
			setupMocks:   func(*MockStorageInterface, *MockAuditInterface) {},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "super admin role cannot be granted",
			principal:    tenantAdmin,
			tenantID:     "tenant-1",
			req:          &CreateUserRequest{Email: "eve@acme.io", Password: "s3cretpass", FullName: "Eve", Role: types.RoleSuperAdmin},
			setupMocks:   func(*MockStorageInterface, *MockAuditInterface) {},
			expectedKind: apierror.KindValidation,
		},
		{
			name:      "storage failure",
			principal: tenantAdmin,
			tenantID:  "tenant-1",
			req:       req,
			setupMocks: func(mockStorage *MockStorageInterface, _ *MockAuditInterface) {
				runInTx(mockStorage)
				mockStorage.EXPECT().LockTenant(gomock.Any(), "tenant-1").Return(nil, errors.New("connection reset"))
			},
			expectedKind: apierror.KindInternal,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit := newTestService(ctrl)
			tc.setupMocks(mockStorage, mockAudit)

			user, err := s.CreateUser(context.Background(), tc.principal, tc.tenantID, tc.req)

			if kind := apierror.KindOf(err); kind != tc.expectedKind {
				t.Fatalf("expected kind %q, got %q (%v)", tc.expectedKind, kind, err)
			}

			if err == nil && user.ID != "user-2" {
				t.Errorf("unexpected user %+v", user)
			}
		})
	}
}

func TestService_DeleteUser(t *testing.T) {
	testCases := []struct {
		name         string
		principal    *types.Principal
		target       *types.User
		setupMocks   func(*MockStorageInterface, *MockAuditInterface)
		expectedKind apierror.Kind
	}{
		{
			name:      "admin deletes another user",
			principal: tenantAdmin,
			target:    userIn("tenant-1", "user-2", types.RoleUser),
			setupMocks: func(mockStorage *MockStorageInterface, mockAudit *MockAuditInterface) {
				mockStorage.EXPECT().DeleteUser(gomock.Any(), "user-2").Return(nil)
				mockAudit.EXPECT().Record(gomock.Any(), gomock.Any())
			},
		},
		{
			name:         "admin cannot delete self",
			principal:    tenantAdmin,
			target:       userIn("tenant-1", "admin-1", types.RoleTenantAdmin),
			setupMocks:   func(*MockStorageInterface, *MockAuditInterface) {},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "regular user cannot delete",
			principal:    member,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			setupMocks:   func(*MockStorageInterface, *MockAuditInterface) {},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "admin of another tenant",
			principal:    outsider,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			setupMocks:   func(*MockStorageInterface, *MockAuditInterface) {},
			expectedKind: apierror.KindForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit := newTestService(ctrl)
			mockStorage.EXPECT().GetUserByID(gomock.Any(), tc.target.ID).Return(tc.target, nil)
			tc.setupMocks(mockStorage, mockAudit)

			err := s.DeleteUser(context.Background(), tc.principal, tc.target.ID)

			if kind := apierror.KindOf(err); kind != tc.expectedKind {
				t.Errorf("expected kind %q, got %q (%v)", tc.expectedKind, kind, err)
			}
		})
	}
}

func TestService_DeleteUser_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, _ := newTestService(ctrl)
	mockStorage.EXPECT().GetUserByID(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)

	if kind := apierror.KindOf(s.DeleteUser(context.Background(), tenantAdmin, "ghost")); kind != apierror.KindNotFound {
		t.Errorf("expected not found, got %q", kind)
	}
}

func TestService_UpdateUser(t *testing.T) {
	testCases := []struct {
		name         string
		principal    *types.Principal
		target       *types.User
		patch        *types.UserPatch
		expectUpdate bool
		expectedKind apierror.Kind
	}{
		{
			name:         "user renames self",
			principal:    member,
			target:       userIn("tenant-1", "user-1", types.RoleUser),
			patch:        &types.UserPatch{FullName: types.Some("Ursula")},
			expectUpdate: true,
		},
		{
			name:         "user cannot rename others",
			principal:    member,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			patch:        &types.UserPatch{FullName: types.Some("Mallory")},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "user cannot promote self",
			principal:    member,
			target:       userIn("tenant-1", "user-1", types.RoleUser),
			patch:        &types.UserPatch{Role: types.Some(types.RoleTenantAdmin)},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "admin cannot deactivate self",
			principal:    tenantAdmin,
			target:       userIn("tenant-1", "admin-1", types.RoleTenantAdmin),
			patch:        &types.UserPatch{IsActive: types.Some(false)},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "admin promotes another user",
			principal:    tenantAdmin,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			patch:        &types.UserPatch{Role: types.Some(types.RoleTenantAdmin)},
			expectUpdate: true,
		},
		{
			name:         "super admin role cannot be granted",
			principal:    tenantAdmin,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			patch:        &types.UserPatch{Role: types.Some(types.RoleSuperAdmin)},
			expectedKind: apierror.KindValidation,
		},
		{
			name:         "admin of another tenant",
			principal:    outsider,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			patch:        &types.UserPatch{FullName: types.Some("Hijacked")},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "empty patch from another tenant",
			principal:    outsider,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			patch:        &types.UserPatch{},
			expectedKind: apierror.KindForbidden,
		},
		{
			name:         "empty patch",
			principal:    tenantAdmin,
			target:       userIn("tenant-1", "user-2", types.RoleUser),
			patch:        &types.UserPatch{},
			expectedKind: apierror.KindValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s, mockStorage, mockAudit := newTestService(ctrl)
			mockStorage.EXPECT().GetUserByID(gomock.Any(), tc.target.ID).Return(tc.target, nil).AnyTimes()

			if tc.expectUpdate {
				mockStorage.EXPECT().UpdateUser(gomock.Any(), tc.target.ID, tc.patch).Return(nil)
				mockAudit.EXPECT().Record(gomock.Any(), gomock.Any())
			}

			_, err := s.UpdateUser(context.Background(), tc.principal, tc.target.ID, tc.patch)

			if kind := apierror.KindOf(err); kind != tc.expectedKind {
				t.Errorf("expected kind %q, got %q (%v)", tc.expectedKind, kind, err)
			}
		})
	}
}

func TestService_ListUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, mockStorage, _ := newTestService(ctrl)

	filter := &types.UserFilter{TenantID: "tenant-1", Search: "  bob ", Page: types.Page{Page: 1, Limit: 10}}
	mockStorage.EXPECT().ListUsers(gomock.Any(), filter).DoAndReturn(
		func(_ context.Context, f *types.UserFilter) ([]*types.User, uint64, error) {
			if f.Search != "bob" {
				t.Errorf("expected trimmed search, got %q", f.Search)
			}
			return []*types.User{userIn("tenant-1", "user-2", types.RoleUser)}, 1, nil
		},
	)

	list, err := s.ListUsers(context.Background(), member, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(list.Users) != 1 || list.Pagination.Total != 1 || list.Pagination.TotalPages != 1 {
		t.Errorf("unexpected list %+v", list)
	}

	if _, err := s.ListUsers(context.Background(), outsider, &types.UserFilter{TenantID: "tenant-1"}); apierror.KindOf(err) != apierror.KindForbidden {
		t.Errorf("expected forbidden for another tenant, got %v", err)
	}
}
