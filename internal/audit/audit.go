// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"time"

	"github.com/canonical/project-service/internal/db"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

const (
	ActionRegisterTenant   = "REGISTER_TENANT"
	ActionLogin            = "LOGIN"
	ActionLogout           = "LOGOUT"
	ActionUpdateTenant     = "UPDATE_TENANT"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionDeleteUser       = "DELETE_USER"
	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionDeleteProject    = "DELETE_PROJECT"
	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionUpdateTaskStatus = "UPDATE_TASK_STATUS"
	ActionDeleteTask       = "DELETE_TASK"

	EntityTenant  = "tenant"
	EntityUser    = "user"
	EntityProject = "project"
	EntityTask    = "task"
)

const recordTimeout = 5 * time.Second

// Recorder persists audit entries on a best-effort basis: failures are logged
// and never reach the caller, and writes never join the caller's transaction.
type Recorder struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Recorder) Record(ctx context.Context, entry *types.AuditLogEntry) {
	if entry == nil {
		return
	}

	if entry.IPAddress == "" {
		entry.IPAddress = ClientIP(ctx)
	}

	ctx, cancel := context.WithTimeout(db.WithoutTx(context.WithoutCancel(ctx)), recordTimeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "audit.Recorder.Record")
	defer span.End()

	if err := r.storage.CreateAuditLog(ctx, entry); err != nil {
		r.logger.Errorf("failed to record audit entry %s for %s: %v", entry.Action, entry.EntityType, err)
	}
}

// Entry builds an audit entry, empty ids are stored as NULL.
func Entry(tenantID, userID, action, entityType, entityID string) *types.AuditLogEntry {
	return &types.AuditLogEntry{
		TenantID:   nullable(tenantID),
		UserID:     nullable(userID),
		Action:     action,
		EntityType: entityType,
		EntityID:   nullable(entityID),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NewRecorder(storage StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Recorder {
	r := new(Recorder)
	r.storage = storage
	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
