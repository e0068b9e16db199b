// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import "github.com/canonical/project-service/internal/types"

type CreateTaskRequest struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Description string           `json:"description"`
	Status      types.TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    types.Priority   `json:"priority" validate:"omitempty,oneof=high medium low"`
	AssignedTo  *string          `json:"assignedTo"`
	DueDate     *types.Date      `json:"dueDate"`
}

type UpdateStatusRequest struct {
	Status types.TaskStatus `json:"status" validate:"required,oneof=todo in_progress completed"`
}
