// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import "github.com/canonical/project-service/internal/types"

type CreateUserRequest struct {
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	FullName string     `json:"fullName" validate:"required,max=255"`
	Role     types.Role `json:"role" validate:"omitempty,oneof=tenant_admin user"`
}
