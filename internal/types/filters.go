// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

type Page struct {
	Page  int64
	Limit int64
}

// Pagination is the page metadata returned with every list.
type Pagination struct {
	CurrentPage uint64 `json:"currentPage"`
	TotalPages  uint64 `json:"totalPages"`
	Total       uint64 `json:"total"`
	Limit       uint64 `json:"limit"`
}

type TenantFilter struct {
	Status TenantStatus
	Plan   Plan
	Page
}

type UserFilter struct {
	TenantID string
	Search   string
	Role     Role
	Page
}

type ProjectFilter struct {
	TenantID string
	Status   ProjectStatus
	Search   string
	Page
}

type TaskFilter struct {
	TenantID   string
	ProjectID  string
	Status     TaskStatus
	Priority   Priority
	AssignedTo string
	Search     string
	Page
}

type TenantList struct {
	Tenants    []*Tenant  `json:"tenants"`
	Pagination Pagination `json:"pagination"`
}

type UserList struct {
	Users      []*User    `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type ProjectList struct {
	Projects   []*Project `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

type TaskList struct {
	Tasks      []*Task    `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
