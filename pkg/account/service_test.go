// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"context"
	"errors"
	"testing"
	"time"

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
	"github.com/canonical/project-service/pkg/authentication"
)

//go:generate mockgen -build_flags=--mod=mod -package account -destination ./mock_account.go -source=./interfaces.go

const secret = "test-secret-with-enough-entropy"

var hasher = password.NewHasher(bcrypt.MinCost)

type fixture struct {
	service *Service
	storage *MockStorageInterface
	audit   *MockAuditInterface
	tokens  *authentication.JWTManager
}

func newFixture(ctrl *gomock.Controller) *fixture {
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test")
	logger := logging.NewNoopLogger()

	f := new(fixture)
	f.storage = NewMockStorageInterface(ctrl)
	f.audit = NewMockAuditInterface(ctrl)
	f.tokens = authentication.NewJWTManager(secret, 24*time.Hour, nil, tracer, monitor, logger)

	authz := authorization.NewAuthorizer(authorization.DefaultLimits(), tracer, monitor, logger)
	f.service = NewService(f.storage, authz, hasher, f.tokens, f.audit, tracer, monitor, logger)

	return f
}

func acme() *types.Tenant {
	return &types.Tenant{ID: "tenant-1", Name: "Acme", Subdomain: "acme", Status: types.TenantActive, SubscriptionPlan: types.PlanFree}
}

func acmeAdmin(t *testing.T) *types.User {
	t.Helper()

	hash, err := hasher.Hash("Passw0rd!")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	tenantID := "tenant-1"
	return &types.User{
		ID:           "admin-1",
		TenantID:     &tenantID,
		Email:        "a@acme.com",
		PasswordHash: hash,
		FullName:     "Alice",
		Role:         types.RoleTenantAdmin,
		IsActive:     true,
	}
}

func TestService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	f.storage.EXPECT().GetTenantUserForLogin(gomock.Any(), "a@acme.com", "acme").Return(acmeAdmin(t), acme(), nil)
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *types.AuditLogEntry) {
			if entry.Action != audit.ActionLogin {
				t.Errorf("expected %s, got %s", audit.ActionLogin, entry.Action)
			}
		},
	)

	session, err := f.service.Login(context.Background(), &LoginRequest{Email: " A@acme.com ", Password: "Passw0rd!", TenantSubdomain: "ACME"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.ExpiresIn != int64((24 * time.Hour).Seconds()) {
		t.Errorf("expected 24h expiry, got %d", session.ExpiresIn)
	}

	if session.User.Role != types.RoleTenantAdmin || session.User.ID != "admin-1" {
		t.Errorf("unexpected session user %+v", session.User)
	}

	principal, err := f.tokens.VerifyToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}

	if principal.UserID != "admin-1" || principal.TenantID != "tenant-1" || principal.Role != types.RoleTenantAdmin {
		t.Errorf("unexpected principal %+v", principal)
	}
}

func TestService_Login_SuperAdminWithoutSubdomain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hash, _ := hasher.Hash("r00t-passw0rd")

	f := newFixture(ctrl)
	f.storage.EXPECT().GetPlatformUserByEmail(gomock.Any(), "root@platform.io").Return(
		&types.User{ID: "root", Email: "root@platform.io", PasswordHash: hash, Role: types.RoleSuperAdmin},
		nil,
	)
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any())

	session, err := f.service.Login(context.Background(), &LoginRequest{Email: "root@platform.io", Password: "r00t-passw0rd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.User.TenantID != nil {
		t.Errorf("expected no tenant for super admin, got %v", *session.User.TenantID)
	}
}

// every failure path must be indistinguishable to the caller
func TestService_Login_FailuresLookAlike(t *testing.T) {
	testCases := []struct {
		name       string
		req        *LoginRequest
		setupMocks func(*testing.T, *MockStorageInterface)
	}{
		{
			name: "unknown email",
			req:  &LoginRequest{Email: "nobody@acme.com", Password: "Passw0rd!", TenantSubdomain: "acme"},
			setupMocks: func(_ *testing.T, mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetTenantUserForLogin(gomock.Any(), "nobody@acme.com", "acme").Return(nil, nil, storage.ErrNotFound)
				mockStorage.EXPECT().GetPlatformUserByEmail(gomock.Any(), "nobody@acme.com").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name: "wrong subdomain",
			req:  &LoginRequest{Email: "a@acme.com", Password: "Passw0rd!", TenantSubdomain: "wrong"},
			setupMocks: func(_ *testing.T, mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetTenantUserForLogin(gomock.Any(), "a@acme.com", "wrong").Return(nil, nil, storage.ErrNotFound)
				mockStorage.EXPECT().GetPlatformUserByEmail(gomock.Any(), "a@acme.com").Return(nil, storage.ErrNotFound)
			},
		},
		{
			name: "wrong password",
			req:  &LoginRequest{Email: "a@acme.com", Password: "not-the-password", TenantSubdomain: "acme"},
			setupMocks: func(t *testing.T, mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetTenantUserForLogin(gomock.Any(), "a@acme.com", "acme").Return(acmeAdmin(t), acme(), nil)
			},
		},
		{
			name: "tenant user without subdomain",
			req:  &LoginRequest{Email: "a@acme.com", Password: "Passw0rd!"},
			setupMocks: func(_ *testing.T, mockStorage *MockStorageInterface) {
				mockStorage.EXPECT().GetPlatformUserByEmail(gomock.Any(), "a@acme.com").Return(nil, storage.ErrNotFound)
			},
		},
	}

	var reference *apierror.Error

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(ctrl)
			tc.setupMocks(t, f.storage)

			_, err := f.service.Login(context.Background(), tc.req)

			var apiErr *apierror.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected an api error, got %v", err)
			}

			if apiErr.Kind != apierror.KindInvalidCredentials {
				t.Errorf("expected %q, got %q", apierror.KindInvalidCredentials, apiErr.Kind)
			}

			if reference == nil {
				reference = apiErr
				return
			}

			if apiErr.Message != reference.Message {
				t.Errorf("expected message %q, got %q", reference.Message, apiErr.Message)
			}
		})
	}
}

func TestService_Login_Suspended(t *testing.T) {
	testCases := []struct {
		name   string
		tenant func() *types.Tenant
		user   func(*testing.T) *types.User
	}{
		{
			name: "suspended tenant",
			tenant: func() *types.Tenant {
				t := acme()
				t.Status = types.TenantSuspended
				return t
			},
			user: acmeAdmin,
		},
		{
			name:   "deactivated user",
			tenant: acme,
			user: func(t *testing.T) *types.User {
				u := acmeAdmin(t)
				u.IsActive = false
				return u
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(ctrl)
			f.storage.EXPECT().GetTenantUserForLogin(gomock.Any(), "a@acme.com", "acme").Return(tc.user(t), tc.tenant(), nil)

			_, err := f.service.Login(context.Background(), &LoginRequest{Email: "a@acme.com", Password: "Passw0rd!", TenantSubdomain: "acme"})

			if kind := apierror.KindOf(err); kind != apierror.KindAccountSuspended {
				t.Errorf("expected %q, got %q", apierror.KindAccountSuspended, kind)
			}
		})
	}
}

func TestService_Login_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newFixture(ctrl)
	f.storage.EXPECT().GetTenantUserForLogin(gomock.Any(), "a@acme.com", "acme").Return(nil, nil, errors.New("connection reset"))

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "a@acme.com", Password: "Passw0rd!", TenantSubdomain: "acme"})

	if kind := apierror.KindOf(err); kind != apierror.KindInternal {
		t.Errorf("expected %q, got %q", apierror.KindInternal, kind)
	}
}

func TestService_Me(t *testing.T) {
	testCases := []struct {
		name          string
		principal     *types.Principal
		user          *types.User
		expectedScope string
		expectTenant  bool
	}{
		{
			name:          "tenant user sees tenant stats",
			principal:     &types.Principal{UserID: "admin-1", TenantID: "tenant-1", Role: types.RoleTenantAdmin},
			expectedScope: "tenant-1",
			expectTenant:  true,
		},
		{
			name:          "super admin sees global stats",
			principal:     &types.Principal{UserID: "root", Role: types.RoleSuperAdmin},
			user:          &types.User{ID: "root", Role: types.RoleSuperAdmin},
			expectedScope: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			user := tc.user
			if user == nil {
				user = acmeAdmin(t)
			}

			f := newFixture(ctrl)
			f.storage.EXPECT().GetUserByID(gomock.Any(), tc.principal.UserID).Return(user, nil)
			if tc.expectTenant {
				f.storage.EXPECT().GetTenantByID(gomock.Any(), "tenant-1").Return(acme(), nil)
			}
			f.storage.EXPECT().TenantStats(gomock.Any(), tc.expectedScope).Return(&types.TenantStats{TotalUsers: 2, TotalProjects: 1}, nil)

			profile, err := f.service.Me(context.Background(), tc.principal)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if (profile.Tenant != nil) != tc.expectTenant {
				t.Errorf("unexpected tenant %+v", profile.Tenant)
			}

			if profile.Stats.TotalUsers != 2 {
				t.Errorf("unexpected stats %+v", profile.Stats)
			}
		})
	}
}

func TestService_Logout_RevokesToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test")
	logger := logging.NewNoopLogger()

	revoker := authentication.NewMockRevokerInterface(ctrl)
	tokens := authentication.NewJWTManager(secret, time.Hour, revoker, tracer, monitor, logger)
	mockAudit := NewMockAuditInterface(ctrl)

	authz := authorization.NewAuthorizer(authorization.DefaultLimits(), tracer, monitor, logger)
	s := NewService(NewMockStorageInterface(ctrl), authz, hasher, tokens, mockAudit, tracer, monitor, logger)

	principal := &types.Principal{UserID: "user-1", TenantID: "tenant-1", Role: types.RoleUser, TokenID: "jti-1"}

	revoker.EXPECT().Revoke(gomock.Any(), "jti-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, until time.Time) error {
			if until.Before(time.Now().Add(59 * time.Minute)) {
				t.Errorf("expected revocation until token expiry, got %v", until)
			}
			return nil
		},
	)
	mockAudit.EXPECT().Record(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *types.AuditLogEntry) {
			if entry.Action != audit.ActionLogout {
				t.Errorf("expected %s, got %s", audit.ActionLogout, entry.Action)
			}
		},
	)

	if err := s.Logout(context.Background(), principal); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := s.Logout(context.Background(), nil); apierror.KindOf(err) != apierror.KindUnauthenticated {
		t.Errorf("expected unauthenticated, got %v", err)
	}
}
