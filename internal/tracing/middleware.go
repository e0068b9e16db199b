// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
)

// Middleware opens a server span for every HTTP request
type Middleware struct {
	service string

	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// OpenTelemetry wraps handler, health and metrics scrapes are not traced
func (mdw *Middleware) OpenTelemetry(handler http.Handler) http.Handler {
	return otelhttp.NewHandler(
		handler,
		mdw.service,
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/api/health" && !strings.HasPrefix(r.URL.Path, "/api/v0/metrics")
		}),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return operation + " " + r.Method
		}),
	)
}

// NewMiddleware returns a Middleware naming its spans after service
func NewMiddleware(service string, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	mdw := new(Middleware)

	mdw.service = service
	mdw.monitor = monitor
	mdw.logger = logger

	return mdw
}
