// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/project-service/internal/apierror"
	httptypes "github.com/canonical/project-service/internal/http/types"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
	"github.com/canonical/project-service/pkg/authentication"
)

func newTestRouter(ctrl *gomock.Controller) (*chi.Mux, *MockServiceInterface) {
	mockService := NewMockServiceInterface(ctrl)
	api := NewAPI(mockService, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())

	mux := chi.NewMux()
	api.RegisterPublicEndpoints(mux)
	api.RegisterEndpoints(mux)

	return mux, mockService
}

func TestAPI_RegisterTenant(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: `{"tenantName":"Acme","subdomain":"acme","adminEmail":"admin@acme.io","adminPassword":"s3cretpass","adminFullName":"Ada"}`,
			setupMocks: func(mockSvc *MockServiceInterface) {
				mockSvc.EXPECT().RegisterTenant(gomock.Any(), gomock.Any()).Return(&Registration{TenantID: "tenant-1", Subdomain: "acme"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "password too short",
			body:           `{"tenantName":"Acme","subdomain":"acme","adminEmail":"admin@acme.io","adminPassword":"short","adminFullName":"Ada"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   string(apierror.KindValidation),
		},
		{
			name:           "missing fields",
			body:           `{"tenantName":"Acme"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   string(apierror.KindValidation),
		},
		{
			name: "conflict",
			body: `{"tenantName":"Acme","subdomain":"acme","adminEmail":"admin@acme.io","adminPassword":"s3cretpass","adminFullName":"Ada"}`,
			setupMocks: func(mockSvc *MockServiceInterface) {
				mockSvc.EXPECT().RegisterTenant(gomock.Any(), gomock.Any()).Return(nil, apierror.Conflict("Subdomain or Email already exists"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   string(apierror.KindConflict),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mux, mockSvc := newTestRouter(ctrl)
			tt.setupMocks(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register-tenant", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			var resp httptypes.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Code != tt.expectedCode {
				t.Errorf("expected code %q, got %q", tt.expectedCode, resp.Code)
			}

			if tt.expectedCode == "" && (!resp.Success || resp.Message != "Tenant registered successfully") {
				t.Errorf("unexpected success envelope %+v", resp)
			}
		})
	}
}

func TestAPI_UpdateTenant_PassesPrincipalAndPatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mux, mockSvc := newTestRouter(ctrl)

	mockSvc.EXPECT().UpdateTenant(gomock.Any(), tenantAdmin, "tenant-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *types.Principal, _ string, patch *types.TenantPatch) (*types.Tenant, error) {
			if !patch.Name.HasValue() || patch.Name.Value != "Acme Corp" {
				t.Errorf("expected name in patch, got %+v", patch.Name)
			}
			if patch.Status.Set || patch.SubscriptionPlan.Set {
				t.Errorf("expected absent settings fields to stay unset")
			}
			return &types.Tenant{ID: "tenant-1", Name: "Acme Corp"}, nil
		},
	)

	req := httptest.NewRequest(http.MethodPut, "/api/tenants/tenant-1", strings.NewReader(`{"name":"Acme Corp"}`))
	req = req.WithContext(authentication.WithPrincipal(req.Context(), tenantAdmin))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestAPI_ListTenants_ParsesQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mux, mockSvc := newTestRouter(ctrl)

	mockSvc.EXPECT().ListTenants(gomock.Any(), superAdmin, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *types.Principal, filter *types.TenantFilter) (*types.TenantList, error) {
			if filter.Status != types.TenantSuspended || filter.Plan != types.PlanPro {
				t.Errorf("unexpected filter %+v", filter)
			}
			if filter.Page.Page != 2 || filter.Limit != 5 {
				t.Errorf("unexpected paging %+v", filter.Page)
			}
			return &types.TenantList{Tenants: []*types.Tenant{}}, nil
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/tenants?status=suspended&plan=pro&page=2&limit=5", nil)
	req = req.WithContext(authentication.WithPrincipal(req.Context(), superAdmin))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestAPI_GetTenant_Forbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mux, mockSvc := newTestRouter(ctrl)
	mockSvc.EXPECT().GetTenant(gomock.Any(), member, "tenant-2").Return(nil, apierror.Forbidden("access denied to this tenant"))

	req := httptest.NewRequest(http.MethodGet, "/api/tenants/tenant-2", nil)
	req = req.WithContext(authentication.WithPrincipal(req.Context(), member))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}
