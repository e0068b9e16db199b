// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

func newMockClient(t *testing.T) (*DBClient, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewDBClientFromDB(conn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()), mock
}

func TestWithTx_CommitsWhenStatementsRan(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tenants").WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		if !InTx(ctx) {
			t.Errorf("expected a transaction scope in context")
		}
		_, err := client.Statement(ctx).Insert("tenants").Columns("id").Values("t-1").ExecContext(ctx)
		return err
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	client, mock := newMockClient(t)
	boom := errors.New("second insert failed")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tenants").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO users").WillReturnError(boom)
	mock.ExpectRollback()

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		if _, err := client.Statement(ctx).Insert("tenants").Columns("id").Values("t-1").ExecContext(ctx); err != nil {
			return err
		}
		_, err := client.Statement(ctx).Insert("users").Columns("id").Values("u-1").ExecContext(ctx)
		return err
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithTx_NoStatementsNoTransaction(t *testing.T) {
	client, mock := newMockClient(t)

	if err := client.WithTx(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestWithoutTx_EscapesTransaction(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	err := client.WithTx(context.Background(), func(ctx context.Context) error {
		detached := WithoutTx(ctx)
		if InTx(detached) {
			t.Errorf("detached context must not carry a transaction")
		}
		_, err := client.Statement(detached).Insert("audit_logs").Columns("id").Values("a-1").ExecContext(detached)
		return err
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStatement_OutsideTx(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectExec("DELETE FROM tasks").WillReturnResult(sqlmock.NewResult(0, 2))

	if InTx(context.Background()) {
		t.Errorf("background context must not carry a transaction")
	}

	if _, err := client.Statement(context.Background()).Delete("tasks").ExecContext(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPing(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer conn.Close()

	client := NewDBClientFromDB(conn, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())

	mock.ExpectPing().WillReturnError(errors.New("down"))

	if err := client.Ping(context.Background()); err == nil {
		t.Errorf("expected ping error")
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int64
		limit      int64
		wantSize   uint64
		wantOffset uint64
	}{
		{"defaults", 0, 0, 10, 0},
		{"second page", 2, 10, 10, 10},
		{"clamped to max", 1, 500, 100, 0},
		{"negative page", -3, 20, 20, 0},
		{"third page of 25", 3, 25, 25, 50},
		{"huge page is clamped", math.MaxInt64, 100, 100, (maxPage - 1) * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := PageSize(tt.limit)
			if size != tt.wantSize {
				t.Errorf("expected size %d, got %d", tt.wantSize, size)
			}
			if offset := Offset(tt.page, size); offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, offset)
			}
		})
	}

	if offset := Offset(1000000000000000000, maxPageSize); offset > math.MaxInt64 {
		t.Errorf("offset %d overflows bigint", offset)
	}

	if got := TotalPages(21, 10); got != 3 {
		t.Errorf("expected 3 pages, got %d", got)
	}
	if got := TotalPages(0, 10); got != 0 {
		t.Errorf("expected 0 pages, got %d", got)
	}
}

func TestPaginate(t *testing.T) {
	got := Paginate(types.Page{Page: 2, Limit: 10}, 25)

	want := types.Pagination{CurrentPage: 2, TotalPages: 3, Total: 25, Limit: 10}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	got = Paginate(types.Page{Page: math.MaxInt64, Limit: 10}, 25)
	if got.CurrentPage != maxPage {
		t.Errorf("expected current page clamped to %d, got %d", maxPage, got.CurrentPage)
	}

	got = Paginate(types.Page{}, 0)
	if got.CurrentPage != 1 || got.Limit != 10 || got.TotalPages != 0 {
		t.Errorf("unexpected defaults %+v", got)
	}
}
