// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import "github.com/canonical/project-service/internal/types"

type CreateProjectRequest struct {
	Name        string              `json:"name" validate:"required,max=255"`
	Description string              `json:"description"`
	Status      types.ProjectStatus `json:"status" validate:"omitempty,oneof=active completed archived"`

	// honoured for super admins only, everyone else creates in their own tenant
	TenantID string `json:"tenantId"`
}
