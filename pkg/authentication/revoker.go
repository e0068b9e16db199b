// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked_token:"

// RedisRevoker keeps a deny-list of token ids that expire with the token.
type RedisRevoker struct {
	client redis.UniversalClient
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return n > 0, nil
}

func NewRedisRevoker(client redis.UniversalClient) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// NoopRevoker never revokes, tokens stay valid until they expire.
type NoopRevoker struct{}

func (n *NoopRevoker) Revoke(context.Context, string, time.Time) error {
	return nil
}

func (n *NoopRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}

func NewNoopRevoker() *NoopRevoker {
	return &NoopRevoker{}
}
