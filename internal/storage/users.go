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

var userColumns = []string{
	"u.id", "u.tenant_id", "u.email", "u.password_hash", "u.full_name",
	"u.role", "u.is_active", "u.created_at", "u.updated_at",
}

func scanUser(row scanner, extra ...interface{}) (*types.User, error) {
	var u types.User
	dest := []interface{}{
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.FullName,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateUser")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	row := s.db.Statement(ctx).
		Insert("users AS u").
		Columns("id", "tenant_id", "email", "password_hash", "full_name", "role", "is_active").
		Values(id, u.TenantID, u.Email, u.PasswordHash, u.FullName, u.Role, u.IsActive).
		Suffix("RETURNING " + joinColumns(userColumns)).
		QueryRowContext(ctx)

	created, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "failed to insert user")
	}

	return created, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(userColumns...).
		From("users u").
		Where(sq.Eq{"u.id": id}).
		QueryRowContext(ctx)

	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "failed to get user")
	}

	return u, nil
}

// GetTenantUserForLogin resolves the account identified by (email, subdomain) together with its tenant.
func (s *Storage) GetTenantUserForLogin(ctx context.Context, email, subdomain string) (*types.User, *types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantUserForLogin")
	defer span.End()

	columns := append([]string{}, userColumns...)
	for _, c := range tenantColumns {
		columns = append(columns, "t."+c)
	}

	row := s.db.Statement(ctx).
		Select(columns...).
		From("users u").
		Join("tenants t ON t.id = u.tenant_id").
		Where(sq.Eq{"u.email": email, "t.subdomain": subdomain}).
		QueryRowContext(ctx)

	var t types.Tenant
	u, err := scanUser(row,
		&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.SubscriptionPlan,
		&t.MaxUsers, &t.MaxProjects, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, nil, mapError(err, "failed to get user for login")
	}

	return u, &t, nil
}

// GetPlatformUserByEmail looks up users without a tenant, i.e. super admins.
func (s *Storage) GetPlatformUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetPlatformUserByEmail")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(userColumns...).
		From("users u").
		Where(sq.Eq{"u.email": email, "u.tenant_id": nil}).
		QueryRowContext(ctx)

	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "failed to get platform user")
	}

	return u, nil
}

func (s *Storage) CountUsers(ctx context.Context, tenantID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountUsers")
	defer span.End()

	n, err := s.count(ctx, "users", sq.Eq{"tenant_id": tenantID})
	return int(n), err
}

func (s *Storage) ListUsers(ctx context.Context, filter *types.UserFilter) ([]*types.User, uint64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListUsers")
	defer span.End()

	where := sq.And{sq.Eq{"u.tenant_id": filter.TenantID}}
	if filter.Role != "" {
		where = append(where, sq.Eq{"u.role": filter.Role})
	}
	if filter.Search != "" {
		where = append(where, sq.Or{
			sq.ILike{"u.full_name": ilike(filter.Search)},
			sq.ILike{"u.email": ilike(filter.Search)},
		})
	}

	total, err := s.count(ctx, "users u", where)
	if err != nil {
		return nil, 0, err
	}

	size := db.PageSize(filter.Limit)
	rows, err := s.db.Statement(ctx).
		Select(userColumns...).
		From("users u").
		Where(where).
		OrderBy("u.created_at DESC").
		Limit(size).
		Offset(db.Offset(filter.Page.Page, size)).
		QueryContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, total, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, patch *types.UserPatch) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateUser")
	defer span.End()

	updateMap := make(map[string]interface{})
	if patch.FullName.HasValue() {
		updateMap["full_name"] = patch.FullName.Value
	}
	if patch.Role.HasValue() {
		updateMap["role"] = patch.Role.Value
	}
	if patch.IsActive.HasValue() {
		updateMap["is_active"] = patch.IsActive.Value
	}

	if len(updateMap) == 0 {
		return nil
	}
	updateMap["updated_at"] = sq.Expr("NOW()")

	res, err := s.db.Statement(ctx).
		Update("users").
		SetMap(updateMap).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to update user")
	}

	return expectAffected(res)
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteUser")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("users").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to delete user")
	}

	return expectAffected(res)
}
