// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/project-service/internal/apierror"
	"github.com/canonical/project-service/internal/audit"
	"github.com/canonical/project-service/internal/authorization"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/password"
	"github.com/canonical/project-service/internal/storage"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

type Service struct {
	storage StorageInterface
	authz   AuthorizerInterface
	hasher  HasherInterface
	tokens  TokenManagerInterface
	audit   AuditInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Login resolves the account by (email, subdomain), falling back to platform
// super admins by email. Unknown accounts, wrong subdomains and wrong passwords
// all fail with the same InvalidCredentials error.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "account.Service.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	subdomain := strings.ToLower(strings.TrimSpace(req.TenantSubdomain))

	user, tenant, err := s.lookup(ctx, email, subdomain)
	if err != nil {
		return nil, apierror.Internal(fmt.Errorf("failed to look up account: %w", err))
	}

	if user == nil {
		// keep the response time of unknown accounts close to a real compare
		_ = s.hasher.Compare("", req.Password)
		s.logger.Security().AuthnLoginFail(email)

		return nil, apierror.InvalidCredentials()
	}

	if err := s.authz.AuthorizeLogin(ctx, user, tenant); err != nil {
		s.logger.Security().AuthnLoginFail(user.ID)
		return nil, err
	}

	err = s.hasher.Compare(user.PasswordHash, req.Password)
	if errors.Is(err, password.ErrMismatch) {
		s.logger.Security().AuthnLoginFail(user.ID)
		return nil, apierror.InvalidCredentials()
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	token, _, err := s.tokens.IssueToken(ctx, user)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	s.audit.Record(ctx, audit.Entry(user.TenantIDValue(), user.ID, audit.ActionLogin, audit.EntityUser, user.ID))
	s.logger.Security().AuthnLoginSuccess(user.ID)

	return &Session{
		Token: token,
		User: &SessionUser{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
			TenantID: user.TenantID,
		},
		ExpiresIn: int64(s.tokens.ExpiresIn() / time.Second),
	}, nil
}

// lookup returns a nil user when no account matches.
func (s *Service) lookup(ctx context.Context, email, subdomain string) (*types.User, *types.Tenant, error) {
	if subdomain != "" {
		user, tenant, err := s.storage.GetTenantUserForLogin(ctx, email, subdomain)
		if err == nil {
			return user, tenant, nil
		}

		if !errors.Is(err, storage.ErrNotFound) {
			return nil, nil, err
		}
	}

	user, err := s.storage.GetPlatformUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil
	}

	if err != nil {
		return nil, nil, err
	}

	if user.Role != types.RoleSuperAdmin {
		return nil, nil, nil
	}

	return user, nil, nil
}

func (s *Service) Me(ctx context.Context, principal *types.Principal) (*Profile, error) {
	ctx, span := s.tracer.Start(ctx, "account.Service.Me")
	defer span.End()

	if principal == nil {
		return nil, apierror.Unauthenticated("authentication required")
	}

	user, err := s.storage.GetUserByID(ctx, principal.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("user not found")
	}

	if err != nil {
		return nil, apierror.Internal(err)
	}

	tenantID := user.TenantIDValue()
	if err := s.authz.Authorize(ctx, principal, authorization.USER_READ, authorization.OwnedResource(tenantID, user.ID)); err != nil {
		return nil, err
	}

	profile := &Profile{User: user}

	if tenantID != "" {
		profile.Tenant, err = s.storage.GetTenantByID(ctx, tenantID)
		if err != nil {
			return nil, apierror.Internal(fmt.Errorf("failed to load tenant: %w", err))
		}
	}

	scope := tenantID
	if principal.IsSuperAdmin() {
		scope = ""
	}

	profile.Stats, err = s.storage.TenantStats(ctx, scope)
	if err != nil {
		return nil, apierror.Internal(fmt.Errorf("failed to load stats: %w", err))
	}

	return profile, nil
}

// Logout records the event and denies the presented token until it expires.
// Without a revocation store the token stays valid until its natural expiry.
func (s *Service) Logout(ctx context.Context, principal *types.Principal) error {
	ctx, span := s.tracer.Start(ctx, "account.Service.Logout")
	defer span.End()

	if principal == nil {
		return apierror.Unauthenticated("authentication required")
	}

	if err := s.tokens.Revoke(ctx, principal, time.Now().Add(s.tokens.ExpiresIn())); err != nil {
		return apierror.Internal(fmt.Errorf("failed to revoke token: %w", err))
	}

	s.audit.Record(ctx, audit.Entry(principal.TenantID, principal.UserID, audit.ActionLogout, audit.EntityUser, principal.UserID))
	s.logger.Security().AuthnTokenRevoked(principal.UserID)

	return nil
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	hasher HasherInterface,
	tokens TokenManagerInterface,
	audit AuditInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.authz = authz
	s.hasher = hasher
	s.tokens = tokens
	s.audit = audit

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
