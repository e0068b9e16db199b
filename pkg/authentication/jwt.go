// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims is the payload of issued tokens.
type Claims struct {
	UserID   string     `json:"userId"`
	TenantID *string    `json:"tenantId"`
	Role     types.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens.
type JWTManager struct {
	secret  []byte
	ttl     time.Duration
	revoker RevokerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (m *JWTManager) ExpiresIn() time.Duration {
	return m.ttl
}

func (m *JWTManager) IssueToken(ctx context.Context, user *types.User) (string, *Claims, error) {
	_, span := m.tracer.Start(ctx, "authentication.JWTManager.IssueToken")
	defer span.End()

	jti, err := uuid.NewRandom()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := time.Now().UTC()
	claims := &Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

func (m *JWTManager) parse(rawToken string) (*Claims, error) {
	claims := new(Claims)

	token, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *JWTManager) VerifyToken(ctx context.Context, rawToken string) (*types.Principal, error) {
	ctx, span := m.tracer.Start(ctx, "authentication.JWTManager.VerifyToken")
	defer span.End()

	claims, err := m.parse(rawToken)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		// fail closed
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	p := &types.Principal{
		UserID:  claims.UserID,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.TenantID != nil {
		p.TenantID = *claims.TenantID
	}

	return p, nil
}

// Revoke denies the token until its natural expiry.
func (m *JWTManager) Revoke(ctx context.Context, principal *types.Principal, expiresAt time.Time) error {
	ctx, span := m.tracer.Start(ctx, "authentication.JWTManager.Revoke")
	defer span.End()

	if principal == nil || principal.TokenID == "" {
		return nil
	}

	return m.revoker.Revoke(ctx, principal.TokenID, expiresAt)
}

func NewJWTManager(secret string, ttl time.Duration, revoker RevokerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *JWTManager {
	m := new(JWTManager)
	m.secret = []byte(secret)
	m.ttl = ttl
	m.revoker = revoker

	if m.revoker == nil {
		m.revoker = NewNoopRevoker()
	}

	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	return m
}
