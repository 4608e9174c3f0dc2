// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads vidfetch configuration. Precedence is
// ENV > YAML file > defaults.
package config

import "time"

// Delivery modes.
const (
	DeliverySave = "save"
	DeliveryOpen = "open"
	DeliveryNone = "none"
)

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	Version  string
	LogLevel string

	// APIOrigin is the base URL of the remote video service API.
	APIOrigin string
	// FileOrigin is where produced artifacts are served from. It is never
	// derived from APIOrigin.
	FileOrigin string
	Timeout    time.Duration

	DeliveryMode string
	DownloadDir  string

	ListenAddr string
	RateLimit  int // requests per minute per client, 0 disables

	Telemetry TelemetryConfig
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML file. Pointer fields distinguish "unset" from
// the zero value.
type FileConfig struct {
	LogLevel  string              `yaml:"logLevel,omitempty"`
	Service   ServiceFileConfig   `yaml:"service,omitempty"`
	Delivery  DeliveryFileConfig  `yaml:"delivery,omitempty"`
	API       APIFileConfig       `yaml:"api,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

type ServiceFileConfig struct {
	APIOrigin  string `yaml:"apiOrigin,omitempty"`
	FileOrigin string `yaml:"fileOrigin,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
}

type DeliveryFileConfig struct {
	Mode string `yaml:"mode,omitempty"`
	Dir  string `yaml:"dir,omitempty"`
}

type APIFileConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
	RateLimit  *int   `yaml:"rateLimit,omitempty"`
}

type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
