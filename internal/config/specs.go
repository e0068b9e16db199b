// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	TracingSampleRatio float64 `envconfig:"tracing_sample_ratio" default:"1"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	JWTSecret string        `envconfig:"jwt_secret" required:"true"`
	JWTExpiry time.Duration `envconfig:"jwt_expiry" default:"24h"`

	BcryptCost int `envconfig:"bcrypt_cost" default:"10"`

	RedisAddr     string `envconfig:"redis_addr"`
	RedisPassword string `envconfig:"redis_password"`
	RedisDB       int    `envconfig:"redis_db" default:"0"`

	AuthRateLimit float64 `envconfig:"auth_rate_limit" default:"5"`
	AuthRateBurst int     `envconfig:"auth_rate_burst" default:"10"`

	PlanFreeMaxUsers          int `envconfig:"plan_free_max_users" default:"5"`
	PlanFreeMaxProjects       int `envconfig:"plan_free_max_projects" default:"3"`
	PlanProMaxUsers           int `envconfig:"plan_pro_max_users" default:"25"`
	PlanProMaxProjects        int `envconfig:"plan_pro_max_projects" default:"15"`
	PlanEnterpriseMaxUsers    int `envconfig:"plan_enterprise_max_users" default:"100"`
	PlanEnterpriseMaxProjects int `envconfig:"plan_enterprise_max_projects" default:"50"`
}
