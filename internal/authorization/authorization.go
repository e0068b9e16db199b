// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

// Authorizer wraps the Policy and the plan Limits with tracing and security logging.
type Authorizer struct {
	policy *Policy
	limits Limits

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Authorize(ctx context.Context, principal *types.Principal, action Action, resource Resource) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.Authorize")
	defer span.End()

	d := a.policy.Authorize(principal, action, resource)
	if !d.Allowed && principal != nil {
		a.logger.Security().AuthzFailure(principal.UserID, string(action))
	}

	a.record(string(action), d.Err())

	return d.Err()
}

func (a *Authorizer) AuthorizeLogin(ctx context.Context, user *types.User, tenant *types.Tenant) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.AuthorizeLogin")
	defer span.End()

	err := a.policy.AuthorizeLogin(user, tenant).Err()
	a.record("login", err)

	return err
}

func (a *Authorizer) CheckQuota(ctx context.Context, plan types.Plan, resource QuotaResource, count int) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.CheckQuota")
	defer span.End()

	err := a.limits.CheckQuota(plan, resource, count)
	a.record("quota."+string(resource), err)

	return err
}

func (a *Authorizer) record(action string, err error) {
	outcome := "allowed"
	if err != nil {
		outcome = string(apierror.KindOf(err))
	}

	if mErr := a.monitor.IncAuthorizationDecision(map[string]string{"action": action, "outcome": outcome}); mErr != nil {
		a.logger.Debugf("failed to record authorization decision: %v", mErr)
	}
}

// Limits returns the configured limits of plan.
func (a *Authorizer) Limits(plan types.Plan) PlanLimits {
	return a.limits.For(plan)
}

func NewAuthorizer(limits Limits, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	a := new(Authorizer)
	a.policy = NewPolicy()
	a.limits = limits
	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
