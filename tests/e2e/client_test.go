// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// envelope mirrors the response body every endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: testEnv.BaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) withToken(token string) *apiClient {
	return &apiClient{baseURL: c.baseURL, token: token, http: c.http}
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (int, *envelope, error) {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return 0, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	env := new(envelope)
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}

	return resp.StatusCode, env, nil
}

// mustDo fails the test on transport errors or an unexpected status and
// decodes data into out when out is not nil.
func (c *apiClient) mustDo(t *testing.T, ctx context.Context, method, path string, body any, expected int, out any) *envelope {
	t.Helper()

	code, env, err := c.do(ctx, method, path, body)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	if code != expected {
		t.Fatalf("%s %s: expected status %d, got %d (%s: %s)", method, path, expected, code, env.Code, env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: failed to decode data: %v", method, path, err)
		}
	}

	return env
}

type registered struct {
	TenantID  string `json:"tenantId"`
	Subdomain string `json:"subdomain"`
	AdminUser struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"adminUser"`
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

type entity struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Plan     string `json:"subscriptionPlan"`
}

type projectList struct {
	Projects []entity `json:"projects"`
}

// registerTenant creates a tenant with a unique subdomain and returns the
// registration with the admin credentials.
func registerTenant(t *testing.T, ctx context.Context, c *apiClient, prefix string) (*registered, string, string) {
	t.Helper()

	subdomain := fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	email := "admin@" + subdomain + ".example.com"
	password := "Passw0rd!"

	out := new(registered)
	c.mustDo(t, ctx, http.MethodPost, "/api/auth/register-tenant", map[string]string{
		"tenantName":    prefix,
		"subdomain":     subdomain,
		"adminEmail":    email,
		"adminPassword": password,
		"adminFullName": "Admin " + prefix,
	}, http.StatusCreated, out)

	return out, email, password
}

func login(t *testing.T, ctx context.Context, c *apiClient, email, password, subdomain string) *session {
	t.Helper()

	out := new(session)
	c.mustDo(t, ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":           email,
		"password":        password,
		"tenantSubdomain": subdomain,
	}, http.StatusOK, out)

	return out
}
