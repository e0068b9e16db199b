// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"

	"github.com/canonical/project-service/internal/types"
)

type StorageInterface interface {
	CreateAuditLog(context.Context, *types.AuditLogEntry) error
}

type RecorderInterface interface {
	Record(context.Context, *types.AuditLogEntry)
}
