// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/vidfetch/internal/telemetry"
	"github.com/ManuGH/vidfetch/internal/validate"
)

// Validate checks a resolved configuration. Both origins are required and
// checked independently.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Origin("APIOrigin", cfg.APIOrigin)
	v.Origin("FileOrigin", cfg.FileOrigin)
	v.Positive("Timeout", int64(cfg.Timeout))

	v.LogLevel("LogLevel", cfg.LogLevel)

	v.OneOf("DeliveryMode", cfg.DeliveryMode, []string{DeliverySave, DeliveryOpen, DeliveryNone})
	if cfg.DeliveryMode == DeliverySave {
		v.Directory("DownloadDir", cfg.DownloadDir)
	}

	v.ListenAddr("ListenAddr", cfg.ListenAddr)
	v.Range("RateLimit", cfg.RateLimit, 0, 100000)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{telemetry.ExporterGRPC, telemetry.ExporterHTTP})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.Fraction("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate)
	}

	return v.Err()
}
