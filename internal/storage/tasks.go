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

var taskColumns = []string{
	"t.id", "t.project_id", "t.tenant_id", "t.title", "t.description", "t.status",
	"t.priority", "t.assigned_to", "t.due_date", "t.created_at", "t.updated_at",
	"u.full_name AS assignee_name",
}

const priorityRank = "CASE t.priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END"

func scanTask(row scanner) (*types.Task, error) {
	var t types.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.TenantID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.AssignedTo, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		&t.AssigneeName,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) tasks(ctx context.Context) sq.SelectBuilder {
	return s.db.Statement(ctx).
		Select(taskColumns...).
		From("tasks t").
		LeftJoin("users u ON u.id = t.assigned_to")
}

func (s *Storage) CreateTask(ctx context.Context, t *types.Task) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTask")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	_, err = s.db.Statement(ctx).
		Insert("tasks").
		Columns("id", "project_id", "tenant_id", "title", "description", "status", "priority", "assigned_to", "due_date").
		Values(id, t.ProjectID, t.TenantID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.DueDate).
		ExecContext(ctx)
	if err != nil {
		return nil, mapError(err, "failed to insert task")
	}

	return s.GetTask(ctx, id)
}

func (s *Storage) GetTask(ctx context.Context, id string) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTask")
	defer span.End()

	t, err := scanTask(s.tasks(ctx).Where(sq.Eq{"t.id": id}).QueryRowContext(ctx))
	if err != nil {
		return nil, mapError(err, "failed to get task")
	}

	return t, nil
}

// ListTasks orders by priority rank, then due date with undated tasks last, then newest first.
func (s *Storage) ListTasks(ctx context.Context, filter *types.TaskFilter) ([]*types.Task, uint64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTasks")
	defer span.End()

	where := sq.And{sq.Eq{"t.tenant_id": filter.TenantID}}
	if filter.ProjectID != "" {
		where = append(where, sq.Eq{"t.project_id": filter.ProjectID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"t.status": filter.Status})
	}
	if filter.Priority != "" {
		where = append(where, sq.Eq{"t.priority": filter.Priority})
	}
	if filter.AssignedTo != "" {
		where = append(where, sq.Eq{"t.assigned_to": filter.AssignedTo})
	}
	if filter.Search != "" {
		where = append(where, sq.Or{
			sq.ILike{"t.title": ilike(filter.Search)},
			sq.ILike{"t.description": ilike(filter.Search)},
		})
	}

	total, err := s.count(ctx, "tasks t", where)
	if err != nil {
		return nil, 0, err
	}

	size := db.PageSize(filter.Limit)
	rows, err := s.tasks(ctx).
		Where(where).
		OrderBy(priorityRank, "t.due_date ASC NULLS LAST", "t.created_at DESC").
		Limit(size).
		Offset(db.Offset(filter.Page.Page, size)).
		QueryContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*types.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return tasks, total, nil
}

// UpdateTask applies every field set in patch, explicit nulls clear assignee and due date.
func (s *Storage) UpdateTask(ctx context.Context, id string, patch *types.TaskPatch) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTask")
	defer span.End()

	updateMap := make(map[string]interface{})
	if patch.Title.HasValue() {
		updateMap["title"] = patch.Title.Value
	}
	if patch.Description.HasValue() {
		updateMap["description"] = patch.Description.Value
	}
	if patch.Status.HasValue() {
		updateMap["status"] = patch.Status.Value
	}
	if patch.Priority.HasValue() {
		updateMap["priority"] = patch.Priority.Value
	}
	if patch.AssignedTo.Set {
		updateMap["assigned_to"] = patch.AssignedTo.Column()
	}
	if patch.DueDate.Set {
		updateMap["due_date"] = patch.DueDate.Column()
	}

	if len(updateMap) == 0 {
		return nil
	}
	updateMap["updated_at"] = sq.Expr("NOW()")

	res, err := s.db.Statement(ctx).
		Update("tasks").
		SetMap(updateMap).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to update task")
	}

	return expectAffected(res)
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteTask")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("tasks").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return mapError(err, "failed to delete task")
	}

	return expectAffected(res)
}
