// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/canonical/project-service/internal/logging"
)

func TestMonitorRecordsMetrics(t *testing.T) {
	m := NewMonitor("test-service", logging.NewNoopLogger())

	if m.GetService() != "test-service" {
		t.Errorf("unexpected service %s", m.GetService())
	}

	if err := m.SetResponseTimeMetric(map[string]string{"route": "GET/api/health", "status": "200"}, 0.2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.SetDependencyAvailability(map[string]string{"component": "database"}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := testutil.ToFloat64(m.dependencyAvailability.WithLabelValues("database")); v != 1 {
		t.Errorf("expected gauge to be 1, got %v", v)
	}

	for i := 0; i < 2; i++ {
		if err := m.IncAuthorizationDecision(map[string]string{"action": "project.create", "outcome": "QUOTA_EXCEEDED"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if v := testutil.ToFloat64(m.authzDecisions.WithLabelValues("project.create", "QUOTA_EXCEEDED")); v != 2 {
		t.Errorf("expected counter to be 2, got %v", v)
	}
}

func TestMonitorUninitialised(t *testing.T) {
	m := new(Monitor)

	if err := m.SetResponseTimeMetric(nil, 1); err == nil {
		t.Error("expected error for missing histogram")
	}

	if err := m.SetDependencyAvailability(nil, 1); err == nil {
		t.Error("expected error for missing gauge")
	}

	if err := m.IncAuthorizationDecision(nil); err == nil {
		t.Error("expected error for missing counter")
	}
}
