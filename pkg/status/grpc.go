// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	grpcstatus "google.golang.org/grpc/status"
)

// ServiceName is the name probes may pass in HealthCheckRequest.Service.
const ServiceName = "project-service"

// HealthServer implements grpc.health.v1.Health on top of the storage probe.
type HealthServer struct {
	healthpb.UnimplementedHealthServer

	service ServiceInterface
}

func (h *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, grpcstatus.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if !h.service.Check(ctx).Healthy() {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

func (h *HealthServer) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, h)
}

func NewHealthServer(service ServiceInterface) *HealthServer {
	h := new(HealthServer)
	h.service = service

	return h
}
