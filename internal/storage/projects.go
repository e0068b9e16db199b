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

var projectColumns = []string{
	"p.id", "p.tenant_id", "p.name", "p.description", "p.status",
	"p.created_by", "p.created_at", "p.updated_at",
	"u.full_name AS creator_name",
	"(SELECT COUNT(*) FROM tasks tk WHERE tk.project_id = p.id) AS task_count",
	"(SELECT COUNT(*) FROM tasks tk WHERE tk.project_id = p.id AND tk.status = 'completed') AS completed_task_count",
}

func scanProject(row scanner) (*types.Project, error) {
	var p types.Project
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.CreatorName, &p.TaskCount, &p.CompletedTasks,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) projects(ctx context.Context) sq.SelectBuilder {
	return s.db.Statement(ctx).
		Select(projectColumns...).
		From("projects p").
		LeftJoin("users u ON u.id = p.created_by")
}

func (s *Storage) CreateProject(ctx context.Context, p *types.Project) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateProject")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	_, err = s.db.Statement(ctx).
		Insert("projects").
		Columns("id", "tenant_id", "name", "description", "status", "created_by").
		Values(id, p.TenantID, p.Name, p.Description, p.Status, p.CreatedBy).
		ExecContext(ctx)
	if err != nil {
		return nil, mapError(err, "failed to insert project")
	}

	return s.GetProject(ctx, id)
}

func (s *Storage) GetProject(ctx context.Context, id string) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProject")
	defer span.End()

	p, err := scanProject(s.projects(ctx).Where(sq.Eq{"p.id": id}).QueryRowContext(ctx))
	if err != nil {
		return nil, mapError(err, "failed to get project")
	}

	return p, nil
}

func (s *Storage) CountProjects(ctx context.Context, tenantID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountProjects")
	defer span.End()

	n, err := s.count(ctx, "projects", sq.Eq{"tenant_id": tenantID})
	return int(n), err
}

func (s *Storage) ListProjects(ctx context.Context, filter *types.ProjectFilter) ([]*types.Project, uint64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListProjects")
	defer span.End()

	// an empty tenant lists every tenant's projects
	where := sq.And{}
	if filter.TenantID != "" {
		where = append(where, sq.Eq{"p.tenant_id": filter.TenantID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"p.status": filter.Status})
	}
	if filter.Search != "" {
		where = append(where, sq.Or{
			sq.ILike{"p.name": ilike(filter.Search)},
			sq.ILike{"p.description": ilike(filter.Search)},
		})
	}

	total, err := s.count(ctx, "projects p", where)
	if err != nil {
		return nil, 0, err
	}

	size := db.PageSize(filter.Limit)
	rows, err := s.projects(ctx).
		Where(where).
		OrderBy("p.created_at DESC").
		Limit(size).
		Offset(db.Offset(filter.Page.Page, size)).
		QueryContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*types.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return projects, total, nil
}

func (s *Storage) UpdateProject(ctx context.Context, id string, patch *types.ProjectPatch) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateProject")
	defer span.End()

	updateMap := make(map[string]interface{})
	if patch.Name.HasValue() {
		updateMap["name"] = patch.Name.Value
	}
	if patch.Description.HasValue() {
		updateMap["description"] = patch.Description.Value
	}
	if patch.Status.HasValue() {
		updateMap["status"] = patch.Status.Value
	}

	if len(updateMap) == 0 {
		return nil
	}
	updateMap["updated_at"] = sq.Expr("NOW()")

	res, err := s.db.Statement(ctx).
		Update("projects").
		SetMap(updateMap).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to update project")
	}

	return expectAffected(res)
}

// DeleteProject removes the project, its tasks go with it through ON DELETE CASCADE.
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteProject")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("projects").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to delete project")
	}

	return expectAffected(res)
}
