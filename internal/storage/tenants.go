// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/project-service/internal/db"
	"github.com/canonical/project-service/internal/types"
)

var tenantColumns = []string{
	"id", "name", "subdomain", "status", "subscription_plan",
	"max_users", "max_projects", "created_at", "updated_at",
}

type scanner interface {
	Scan(...interface{}) error
}

func scanTenant(row scanner) (*types.Tenant, error) {
	var t types.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.SubscriptionPlan,
		&t.MaxUsers, &t.MaxProjects, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	row := s.db.Statement(ctx).
		Insert("tenants").
		Columns("id", "name", "subdomain", "status", "subscription_plan", "max_users", "max_projects").
		Values(id, t.Name, t.Subdomain, t.Status, t.SubscriptionPlan, t.MaxUsers, t.MaxProjects).
		Suffix("RETURNING " + joinColumns(tenantColumns)).
		QueryRowContext(ctx)

	created, err := scanTenant(row)
	if err != nil {
		return nil, mapError(err, "failed to insert tenant")
	}

	return created, nil
}

func (s *Storage) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantByID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		return nil, mapError(err, "failed to get tenant")
	}

	return t, nil
}

func (s *Storage) GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySubdomain")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"subdomain": subdomain}).
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		return nil, mapError(err, "failed to get tenant")
	}

	return t, nil
}

// LockTenant reads the tenant row with FOR UPDATE, it must run inside WithTx.
// Concurrent quota checks for the same tenant queue on this lock.
func (s *Storage) LockTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.LockTenant")
	defer span.End()

	if !db.InTx(ctx) {
		return nil, fmt.Errorf("failed to lock tenant: no transaction in context")
	}

	row := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		QueryRowContext(ctx)

	t, err := scanTenant(row)
	if err != nil {
		return nil, mapError(err, "failed to lock tenant")
	}

	return t, nil
}

func (s *Storage) ListTenants(ctx context.Context, filter *types.TenantFilter) ([]*types.Tenant, uint64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	where := sq.And{}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.Plan != "" {
		where = append(where, sq.Eq{"subscription_plan": filter.Plan})
	}

	total, err := s.count(ctx, "tenants", where)
	if err != nil {
		return nil, 0, err
	}

	size := db.PageSize(filter.Limit)
	rows, err := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		Where(where).
		OrderBy("created_at DESC").
		Limit(size).
		Offset(db.Offset(filter.Page.Page, size)).
		QueryContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*types.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, total, nil
}

// UpdateTenant applies the fields set in patch in one statement.
func (s *Storage) UpdateTenant(ctx context.Context, id string, patch *types.TenantPatch) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenant")
	defer span.End()

	updateMap := make(map[string]interface{})
	if patch.Name.HasValue() {
		updateMap["name"] = patch.Name.Value
	}
	if patch.Status.HasValue() {
		updateMap["status"] = patch.Status.Value
	}
	if patch.SubscriptionPlan.HasValue() {
		updateMap["subscription_plan"] = patch.SubscriptionPlan.Value
	}
	if patch.MaxUsers.HasValue() {
		updateMap["max_users"] = patch.MaxUsers.Value
	}
	if patch.MaxProjects.HasValue() {
		updateMap["max_projects"] = patch.MaxProjects.Value
	}

	if len(updateMap) == 0 {
		return nil
	}
	updateMap["updated_at"] = sq.Expr("NOW()")

	res, err := s.db.Statement(ctx).
		Update("tenants").
		SetMap(updateMap).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to update tenant")
	}

	return expectAffected(res)
}

// TenantStats counts users, projects and tasks of tenantID, an empty id counts everything.
func (s *Storage) TenantStats(ctx context.Context, tenantID string) (*types.TenantStats, error) {
	ctx, span := s.tracer.Start(ctx, "storage.TenantStats")
	defer span.End()

	where := sq.And{}
	if tenantID != "" {
		where = append(where, sq.Eq{"tenant_id": tenantID})
	}

	var stats types.TenantStats
	counters := []struct {
		table string
		dst   *int
	}{
		{"users", &stats.TotalUsers},
		{"projects", &stats.TotalProjects},
		{"tasks", &stats.TotalTasks},
	}

	for _, c := range counters {
		n, err := s.count(ctx, c.table, where)
		if err != nil {
			return nil, err
		}
		*c.dst = int(n)
	}

	return &stats, nil
}
