// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

//go:build e2e

package e2e

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestRegistrationAndLogin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := newAPIClient()
	reg, email, password := registerTenant(t, ctx, c, "acme")

	if reg.AdminUser.Role != "tenant_admin" {
		t.Errorf("expected admin role tenant_admin, got %s", reg.AdminUser.Role)
	}

	s := login(t, ctx, c, email, password, reg.Subdomain)
	if s.Token == "" {
		t.Fatal("expected a token")
	}

	t.Run("Tenant Starts On Free Plan", func(t *testing.T) {
		tenant := new(entity)
		c.withToken(s.Token).mustDo(t, ctx, http.MethodGet, "/api/tenants/"+reg.TenantID, nil, http.StatusOK, tenant)

		if tenant.Plan != "free" {
			t.Errorf("expected plan free, got %s", tenant.Plan)
		}
	})

	t.Run("Login Failures Look Alike", func(t *testing.T) {
		_, wrongSubdomain, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
			"email": email, "password": password, "tenantSubdomain": "wrong",
		})
		if err != nil {
			t.Fatal(err)
		}

		_, unknownUser, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "nobody@example.com", "password": password, "tenantSubdomain": reg.Subdomain,
		})
		if err != nil {
			t.Fatal(err)
		}

		if wrongSubdomain.Code != unknownUser.Code || wrongSubdomain.Message != unknownUser.Message {
			t.Errorf("expected identical failures, got %+v and %+v", wrongSubdomain, unknownUser)
		}

		if wrongSubdomain.Code != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %s", wrongSubdomain.Code)
		}
	})

	t.Run("Duplicate Subdomain", func(t *testing.T) {
		code, env, err := c.do(ctx, http.MethodPost, "/api/auth/register-tenant", map[string]string{
			"tenantName":    "again",
			"subdomain":     reg.Subdomain,
			"adminEmail":    "other@example.com",
			"adminPassword": password,
			"adminFullName": "Other",
		})
		if err != nil {
			t.Fatal(err)
		}

		if code != http.StatusConflict || env.Code != "CONFLICT" {
			t.Errorf("expected 409 CONFLICT, got %d %s", code, env.Code)
		}
	})
}

func TestProjectQuota(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := newAPIClient()
	reg, email, password := registerTenant(t, ctx, c, "quota")
	admin := c.withToken(login(t, ctx, c, email, password, reg.Subdomain).Token)

	for i := 0; i < 3; i++ {
		admin.mustDo(t, ctx, http.MethodPost, "/api/projects", map[string]string{"name": "project"}, http.StatusCreated, nil)
	}

	code, env, err := admin.do(ctx, http.MethodPost, "/api/projects", map[string]string{"name": "one too many"})
	if err != nil {
		t.Fatal(err)
	}

	if code != http.StatusForbidden || env.Code != "QUOTA_EXCEEDED" {
		t.Errorf("expected 403 QUOTA_EXCEEDED, got %d %s", code, env.Code)
	}

	list := new(projectList)
	admin.mustDo(t, ctx, http.MethodGet, "/api/projects", nil, http.StatusOK, list)

	if len(list.Projects) != 3 {
		t.Errorf("expected 3 projects, got %d", len(list.Projects))
	}
}

func TestUserDeletion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := newAPIClient()
	reg, email, password := registerTenant(t, ctx, c, "people")
	admin := c.withToken(login(t, ctx, c, email, password, reg.Subdomain).Token)

	createUser := func(name string) *entity {
		u := new(entity)
		admin.mustDo(t, ctx, http.MethodPost, "/api/users", map[string]string{
			"email":    name + "@" + reg.Subdomain + ".example.com",
			"password": password,
			"fullName": name,
			"role":     "user",
		}, http.StatusCreated, u)
		return u
	}

	b := createUser("bob")
	carol := createUser("carol")
	member := c.withToken(login(t, ctx, c, "carol@"+reg.Subdomain+".example.com", password, reg.Subdomain).Token)

	t.Run("Member Cannot Delete", func(t *testing.T) {
		code, _, err := member.do(ctx, http.MethodDelete, "/api/users/"+b.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", code)
		}
	})

	t.Run("Admin Cannot Delete Self", func(t *testing.T) {
		code, _, err := admin.do(ctx, http.MethodDelete, "/api/users/"+reg.AdminUser.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", code)
		}
	})

	t.Run("Admin Deletes Member", func(t *testing.T) {
		admin.mustDo(t, ctx, http.MethodDelete, "/api/users/"+b.ID, nil, http.StatusOK, nil)
		admin.mustDo(t, ctx, http.MethodGet, "/api/users/"+b.ID, nil, http.StatusNotFound, nil)
		admin.mustDo(t, ctx, http.MethodGet, "/api/users/"+carol.ID, nil, http.StatusOK, nil)
	})
}

func TestTenantIsolation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := newAPIClient()

	regA, emailA, password := registerTenant(t, ctx, c, "alpha")
	regB, emailB, _ := registerTenant(t, ctx, c, "beta")

	alpha := c.withToken(login(t, ctx, c, emailA, password, regA.Subdomain).Token)
	beta := c.withToken(login(t, ctx, c, emailB, password, regB.Subdomain).Token)

	project := new(entity)
	alpha.mustDo(t, ctx, http.MethodPost, "/api/projects", map[string]string{"name": "secret"}, http.StatusCreated, project)

	task := new(entity)
	alpha.mustDo(t, ctx, http.MethodPost, "/api/projects/"+project.ID+"/tasks", map[string]string{"title": "hidden"}, http.StatusCreated, task)

	for _, path := range []string{
		"/api/projects/" + project.ID,
		"/api/projects/" + project.ID + "/tasks",
		"/api/tasks/" + task.ID,
		"/api/tenants/" + regA.TenantID,
	} {
		code, _, err := beta.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if code != http.StatusForbidden {
			t.Errorf("GET %s: expected 403, got %d", path, code)
		}
	}

	list := new(projectList)
	beta.mustDo(t, ctx, http.MethodGet, "/api/projects", nil, http.StatusOK, list)

	for _, p := range list.Projects {
		if p.TenantID != regB.TenantID {
			t.Errorf("project %s of tenant %s leaked into tenant %s", p.ID, p.TenantID, regB.TenantID)
		}
	}
}
