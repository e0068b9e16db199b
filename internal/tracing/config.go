// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"github.com/canonical/project-service/internal/logging"
)

type Config struct {
	OtelHTTPEndpoint string
	OtelGRPCEndpoint string
	ServiceVersion   string
	// SampleRatio is the share of root spans kept, children follow their parent
	SampleRatio float64
	Logger      logging.LoggerInterface

	Enabled bool
}

// NewConfig builds a tracing Config, ratios outside [0, 1] are clamped
func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint, serviceVersion string, sampleRatio float64, logger logging.LoggerInterface) *Config {
	c := new(Config)

	c.OtelGRPCEndpoint = otelGRPCEndpoint
	c.OtelHTTPEndpoint = otelHTTPEndpoint
	c.ServiceVersion = serviceVersion
	c.SampleRatio = min(max(sampleRatio, 0), 1)
	c.Logger = logger
	c.Enabled = enabled

	return c
}

func NewNoopConfig() *Config {
	c := new(Config)
	c.Enabled = false
	c.Logger = logging.NewNoopLogger()
	return c
}
