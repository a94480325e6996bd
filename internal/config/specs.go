// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

// EnvSpec is the environment configuration shared by every command
type EnvSpec struct {
	ConfigDir string `envconfig:"hedwig2omp_dir"`

	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"false"`

	LogLevel string `envconfig:"log_level" default:"info"`
	Debug    bool   `envconfig:"debug" default:"false"`

	PushgatewayURL string `envconfig:"pushgateway_url"`

	DBMaxOpenConns int `envconfig:"db_max_open_conns" default:"4"`
}
