// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

// Action is a closed set of operations the policy knows about.
type Action string

const (
	TENANT_LIST            Action = "tenant.list"
	TENANT_READ            Action = "tenant.read"
	TENANT_UPDATE          Action = "tenant.update"
	TENANT_UPDATE_SETTINGS Action = "tenant.update_settings"

	USER_CREATE         Action = "user.create"
	USER_LIST           Action = "user.list"
	USER_READ           Action = "user.read"
	USER_UPDATE_PROFILE Action = "user.update_profile"
	USER_UPDATE_ACCESS  Action = "user.update_access"
	USER_DELETE         Action = "user.delete"

	PROJECT_CREATE Action = "project.create"
	PROJECT_LIST   Action = "project.list"
	PROJECT_READ   Action = "project.read"
	PROJECT_UPDATE Action = "project.update"
	PROJECT_DELETE Action = "project.delete"

	TASK_CREATE        Action = "task.create"
	TASK_LIST          Action = "task.list"
	TASK_READ          Action = "task.read"
	TASK_UPDATE        Action = "task.update"
	TASK_UPDATE_STATUS Action = "task.update_status"
	TASK_DELETE        Action = "task.delete"
)

// QuotaResource is a countable resource bounded by the tenant plan.
type QuotaResource string

const (
	QUOTA_USERS    QuotaResource = "users"
	QUOTA_PROJECTS QuotaResource = "projects"
)

// Resource describes the target of an action. OwnerID is the target user for
// user actions and the creator for project actions.
type Resource struct {
	TenantID string
	OwnerID  string
}

func TenantResource(tenantID string) Resource {
	return Resource{TenantID: tenantID}
}

func OwnedResource(tenantID, ownerID string) Resource {
	return Resource{TenantID: tenantID, OwnerID: ownerID}
}
