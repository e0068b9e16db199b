// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/project-service/internal/types"
)

func (s *Storage) CreateAuditLog(ctx context.Context, entry *types.AuditLogEntry) error {
	ctx, span := s.tracer.Start(ctx, "storage.CreateAuditLog")
	defer span.End()

	id, err := newID()
	if err != nil {
		return err
	}

	_, err = s.db.Statement(ctx).
		Insert("audit_logs").
		Columns("id", "tenant_id", "user_id", "action", "entity_type", "entity_id", "ip_address").
		Values(id, entry.TenantID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.IPAddress).
		ExecContext(ctx)

	return mapError(err, "failed to insert audit log")
}
