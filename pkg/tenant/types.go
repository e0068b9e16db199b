// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import "github.com/canonical/project-service/internal/types"

type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName" validate:"required,max=255"`
	Subdomain     string `json:"subdomain" validate:"required,min=3,max=63"`
	AdminEmail    string `json:"adminEmail" validate:"required,email,max=255"`
	AdminPassword string `json:"adminPassword" validate:"required,min=8,max=72"`
	AdminFullName string `json:"adminFullName" validate:"required,max=255"`
}

type Registration struct {
	TenantID  string      `json:"tenantId"`
	Subdomain string      `json:"subdomain"`
	AdminUser *types.User `json:"adminUser"`
}

// TenantDetail is a tenant with its resource counts.
type TenantDetail struct {
	*types.Tenant
	Stats *types.TenantStats `json:"stats"`
}
