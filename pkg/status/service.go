// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"time"

	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/version"
)

const pingTimeout = 2 * time.Second

type Service struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Check probes storage connectivity and publishes it as a dependency gauge.
func (s *Service) Check(ctx context.Context) *Health {
	ctx, span := s.tracer.Start(ctx, "status.Service.Check")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	h := &Health{
		Status:    StatusOK,
		Database:  DatabaseConnected,
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
	}

	available := 1.0
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Errorf("health check failed: %v", err)

		h.Status = StatusError
		h.Database = DatabaseDisconnected
		available = 0
	}

	if err := s.monitor.SetDependencyAvailability(map[string]string{"component": "database"}, available); err != nil {
		s.logger.Debugf("error setting dependency metric: %v", err)
	}

	return h
}

func NewService(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.db = db

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
