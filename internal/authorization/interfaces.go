// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/project-service/internal/types"
)

type AuthorizerInterface interface {
	Authorize(context.Context, *types.Principal, Action, Resource) error
	AuthorizeLogin(context.Context, *types.User, *types.Tenant) error
	CheckQuota(context.Context, types.Plan, QuotaResource, int) error
	Limits(types.Plan) PlanLimits
}
