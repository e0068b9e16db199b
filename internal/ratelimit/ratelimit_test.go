// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canonical/project-service/internal/logging"
)

func TestLimiter_Middleware(t *testing.T) {
	l := NewLimiter(1, 2, logging.NewNoopLogger())
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return frozen }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("198.51.100.1:4000"); code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, code)
		}
	}

	if code := call("198.51.100.1:4001"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %d", code)
	}

	if code := call("198.51.100.2:4000"); code != http.StatusNoContent {
		t.Errorf("other clients keep their own bucket, got %d", code)
	}

	frozen = frozen.Add(2 * time.Second)
	if code := call("198.51.100.1:4000"); code != http.StatusNoContent {
		t.Errorf("expected bucket to refill, got %d", code)
	}
}

func TestLimiter_SweepsIdleBuckets(t *testing.T) {
	l := NewLimiter(1, 1, logging.NewNoopLogger())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	l.allow("a")
	now = now.Add(idleTTL + time.Second)
	l.allow("b")

	if _, ok := l.buckets["a"]; ok {
		t.Errorf("expected idle bucket to be swept")
	}
	if len(l.buckets) != 1 {
		t.Errorf("expected one bucket, got %d", len(l.buckets))
	}
}
