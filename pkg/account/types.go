// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"github.com/canonical/project-service/internal/types"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// TenantSubdomain may be omitted by platform super admins only.
	TenantSubdomain string `json:"tenantSubdomain"`
}

// SessionUser holds the public fields returned with a token.
type SessionUser struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"fullName"`
	Role     types.Role `json:"role"`
	TenantID *string    `json:"tenantId"`
}

type Session struct {
	Token     string       `json:"token"`
	User      *SessionUser `json:"user"`
	ExpiresIn int64        `json:"expiresIn"`
}

// Profile is the current user with their tenant and dashboard counts.
// Stats are global for super admins.
type Profile struct {
	User   *types.User        `json:"user"`
	Tenant *types.Tenant      `json:"tenant,omitempty"`
	Stats  *types.TenantStats `json:"stats"`
}
