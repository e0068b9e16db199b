// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"fmt"

	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/types"
)

type PlanLimits struct {
	MaxUsers    int
	MaxProjects int
}

// Limits maps each plan to its quota, it is the only source of truth for enforcement.
type Limits map[types.Plan]PlanLimits

func DefaultLimits() Limits {
	return Limits{
		types.PlanFree:       {MaxUsers: 5, MaxProjects: 3},
		types.PlanPro:        {MaxUsers: 25, MaxProjects: 15},
		types.PlanEnterprise: {MaxUsers: 100, MaxProjects: 50},
	}
}

// For returns the limits of plan, unknown plans fall back to free.
func (l Limits) For(plan types.Plan) PlanLimits {
	if pl, ok := l[plan]; ok {
		return pl
	}
	return l[types.PlanFree]
}

// CheckQuota fails with QuotaExceeded once count has reached the plan limit.
func (l Limits) CheckQuota(plan types.Plan, resource QuotaResource, count int) error {
	pl := l.For(plan)

	var max int
	switch resource {
	case QUOTA_USERS:
		max = pl.MaxUsers
	case QUOTA_PROJECTS:
		max = pl.MaxProjects
	default:
		return apierror.Internal(fmt.Errorf("unknown quota resource %q", resource))
	}

	if count >= max {
		return apierror.QuotaExceeded(fmt.Sprintf("%s limit reached for %s plan (%d)", resource, plan, max))
	}

	return nil
}
