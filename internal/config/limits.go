// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/types"
)

// PlanLimits builds the quota table from the environment.
func (s *EnvSpec) PlanLimits() authorization.Limits {
	return authorization.Limits{
		types.PlanFree:       {MaxUsers: s.PlanFreeMaxUsers, MaxProjects: s.PlanFreeMaxProjects},
		types.PlanPro:        {MaxUsers: s.PlanProMaxUsers, MaxProjects: s.PlanProMaxProjects},
		types.PlanEnterprise: {MaxUsers: s.PlanEnterpriseMaxUsers, MaxProjects: s.PlanEnterpriseMaxProjects},
	}
}
