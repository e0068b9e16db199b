// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"time"

	"github.com/canonical/project-service/internal/types"
)

type TokenVerifierInterface interface {
	// VerifyToken validates a raw JWT and returns the principal it was issued to
	VerifyToken(ctx context.Context, rawToken string) (*types.Principal, error)
}

type TokenIssuerInterface interface {
	// IssueToken signs a token for user and returns it with its claims
	IssueToken(ctx context.Context, user *types.User) (string, *Claims, error)
	// ExpiresIn is the lifetime of issued tokens
	ExpiresIn() time.Duration
}

type RevokerInterface interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
