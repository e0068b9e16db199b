// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/types"
)

type rule struct {
	roles map[types.Role]bool
	// owner lets a role outside roles through when it owns the resource
	owner bool
	// notSelf denies acting on your own account
	notSelf bool
}

func allow(roles ...types.Role) rule {
	r := rule{roles: make(map[types.Role]bool, len(roles))}
	for _, role := range roles {
		r.roles[role] = true
	}
	return r
}

func (r rule) orOwner() rule {
	r.owner = true
	return r
}

func (r rule) exceptSelf() rule {
	r.notSelf = true
	return r
}

var (
	everyone = []types.Role{types.RoleSuperAdmin, types.RoleTenantAdmin, types.RoleUser}
	admins   = []types.Role{types.RoleSuperAdmin, types.RoleTenantAdmin}
)

func defaultRules() map[Action]rule {
	return map[Action]rule{
		TENANT_LIST:            allow(types.RoleSuperAdmin),
		TENANT_READ:            allow(everyone...),
		TENANT_UPDATE:          allow(admins...),
		TENANT_UPDATE_SETTINGS: allow(types.RoleSuperAdmin),

		USER_CREATE:         allow(admins...),
		USER_LIST:           allow(everyone...),
		USER_READ:           allow(everyone...),
		USER_UPDATE_PROFILE: allow(admins...).orOwner(),
		USER_UPDATE_ACCESS:  allow(admins...).exceptSelf(),
		USER_DELETE:         allow(admins...).exceptSelf(),

		PROJECT_CREATE: allow(everyone...),
		PROJECT_LIST:   allow(everyone...),
		PROJECT_READ:   allow(everyone...),
		PROJECT_UPDATE: allow(admins...).orOwner(),
		PROJECT_DELETE: allow(admins...).orOwner(),

		TASK_CREATE:        allow(everyone...),
		TASK_LIST:          allow(everyone...),
		TASK_READ:          allow(everyone...),
		TASK_UPDATE:        allow(everyone...),
		TASK_UPDATE_STATUS: allow(everyone...),
		TASK_DELETE:        allow(everyone...),
	}
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Kind    apierror.Kind
	Reason  string
}

// Err converts a denial into an *apierror.Error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apierror.New(d.Kind, d.Reason)
}

func permit() Decision {
	return Decision{Allowed: true}
}

func deny(kind apierror.Kind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Policy is the single table of who may do what.
type Policy struct {
	rules map[Action]rule
}

// Authorize evaluates principal against the table. It performs no I/O.
func (p *Policy) Authorize(principal *types.Principal, action Action, resource Resource) Decision {
	if principal == nil || principal.UserID == "" || !principal.Role.Valid() {
		return deny(apierror.KindUnauthenticated, "authentication required")
	}

	if !principal.IsSuperAdmin() && principal.TenantID != resource.TenantID {
		return deny(apierror.KindForbidden, "access denied to this tenant")
	}

	r, ok := p.rules[action]
	if !ok {
		return deny(apierror.KindForbidden, "action not permitted")
	}

	isOwner := resource.OwnerID != "" && resource.OwnerID == principal.UserID

	if r.notSelf && isOwner {
		return deny(apierror.KindForbidden, "cannot perform this action on your own account")
	}

	if r.roles[principal.Role] || (r.owner && isOwner) {
		return permit()
	}

	return deny(apierror.KindForbidden, "insufficient permissions")
}

// AuthorizeLogin rejects logins into suspended tenants or deactivated accounts.
// Platform super admins are not bound to a tenant and skip the check.
func (p *Policy) AuthorizeLogin(user *types.User, tenant *types.Tenant) Decision {
	if user == nil {
		return deny(apierror.KindInvalidCredentials, apierror.InvalidCredentials().Message)
	}

	if user.Role == types.RoleSuperAdmin {
		return permit()
	}

	if tenant != nil && tenant.Status != types.TenantActive {
		return deny(apierror.KindAccountSuspended, "tenant account is suspended")
	}

	if !user.IsActive {
		return deny(apierror.KindAccountSuspended, "user account is deactivated")
	}

	return permit()
}

func NewPolicy() *Policy {
	return &Policy{rules: defaultRules()}
}
