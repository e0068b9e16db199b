// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/mock/gomock"

	"github.com/canonical/project-service/internal/db"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_audit.go -source=./interfaces.go

func TestRecorder_Record(t *testing.T) {
	tests := []struct {
		name       string
		storageErr error
	}{
		{name: "success"},
		{name: "storage failure is swallowed", storageErr: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			r := NewRecorder(mockStorage, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())

			mockStorage.EXPECT().
				CreateAuditLog(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, entry *types.AuditLogEntry) error {
					if db.InTx(ctx) {
						t.Errorf("audit write must not join the caller transaction")
					}
					if entry.IPAddress != "192.0.2.10" {
						t.Errorf("expected client ip from context, got %q", entry.IPAddress)
					}
					if entry.TenantID != nil {
						t.Errorf("expected null tenant, got %v", *entry.TenantID)
					}
					return tt.storageErr
				})

			ctx := WithClientIP(context.Background(), "192.0.2.10")
			r.Record(ctx, Entry("", "user-1", ActionLogin, EntityUser, "user-1"))
		})
	}
}

func TestRecorder_RecordInsideTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer conn.Close()

	tracer := tracing.NewNoopTracer()
	client := db.NewDBClientFromDB(conn, tracer, monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())

	mockStorage := NewMockStorageInterface(ctrl)
	r := NewRecorder(mockStorage, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())

	mockStorage.EXPECT().
		CreateAuditLog(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *types.AuditLogEntry) error {
			if db.InTx(ctx) {
				t.Errorf("audit write must not join the caller transaction")
			}
			return nil
		})

	err = client.WithTx(context.Background(), func(ctx context.Context) error {
		if !db.InTx(ctx) {
			t.Fatalf("expected transaction scope")
		}
		r.Record(ctx, Entry("tenant-1", "user-1", ActionCreateProject, EntityProject, "project-1"))
		return nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClientIPMiddleware(t *testing.T) {
	var got string
	h := ClientIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.7" {
		t.Errorf("expected host part of remote addr, got %q", got)
	}
}
