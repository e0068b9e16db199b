// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"database/sql/driver"
	"time"
)

type TenantPatch struct {
	Name             Optional[string]       `json:"name"`
	Status           Optional[TenantStatus] `json:"status"`
	SubscriptionPlan Optional[Plan]         `json:"subscriptionPlan"`

	// quota snapshot, filled by the service when the plan changes
	MaxUsers    Optional[int] `json:"-"`
	MaxProjects Optional[int] `json:"-"`
}

// TouchesSettings reports whether the patch changes status or plan.
func (p *TenantPatch) TouchesSettings() bool {
	return p.Status.Set || p.SubscriptionPlan.Set
}

func (p *TenantPatch) Empty() bool {
	return !p.Name.Set && !p.TouchesSettings()
}

type UserPatch struct {
	FullName Optional[string] `json:"fullName"`
	Role     Optional[Role]   `json:"role"`
	IsActive Optional[bool]   `json:"isActive"`
}

// TouchesAccess reports whether the patch changes role or activation.
func (p *UserPatch) TouchesAccess() bool {
	return p.Role.Set || p.IsActive.Set
}

func (p *UserPatch) Empty() bool {
	return !p.FullName.Set && !p.TouchesAccess()
}

type ProjectPatch struct {
	Name        Optional[string]        `json:"name"`
	Description Optional[string]        `json:"description"`
	Status      Optional[ProjectStatus] `json:"status"`
}

func (p *ProjectPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set && !p.Status.Set
}

type TaskPatch struct {
	Title       Optional[string]     `json:"title"`
	Description Optional[string]     `json:"description"`
	Status      Optional[TaskStatus] `json:"status"`
	Priority    Optional[Priority]   `json:"priority"`
	AssignedTo  Optional[string]     `json:"assignedTo"`
	DueDate     Optional[Date]       `json:"dueDate"`
}

func (p *TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.Priority.Set && !p.AssignedTo.Set && !p.DueDate.Set
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: dateLayout, Value: s}
	}
	s = s[1 : len(s)-1]

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		// full timestamps are accepted, the day is taken in their own offset
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}

	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}
