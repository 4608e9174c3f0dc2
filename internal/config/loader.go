// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment keys.
const (
	EnvAPIOrigin    = "VIDFETCH_API_ORIGIN"
	EnvFileOrigin   = "VIDFETCH_FILE_ORIGIN"
	EnvTimeout      = "VIDFETCH_TIMEOUT"
	EnvDownloadDir  = "VIDFETCH_DOWNLOAD_DIR"
	EnvDelivery     = "VIDFETCH_DELIVERY"
	EnvLogLevel     = "LOG_LEVEL"
	EnvListen       = "VIDFETCH_LISTEN"
	EnvRateLimit    = "VIDFETCH_RATE_LIMIT"
	EnvOTelEnabled  = "VIDFETCH_OTEL_ENABLED"
	EnvOTelExporter = "VIDFETCH_OTEL_EXPORTER"
	EnvOTelEndpoint = "VIDFETCH_OTEL_ENDPOINT"
	EnvOTelSampling = "VIDFETCH_OTEL_SAMPLING_RATE"
)

const (
	defaultTimeout   = 2 * time.Minute
	defaultListen    = "127.0.0.1:8088"
	defaultRateLimit = 60
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	overrides       []func(*AppConfig)
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a loader. configPath may be empty.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Override registers fn to run after the environment is merged and before
// validation. Command-line flags use it to take precedence over ENV.
func (l *Loader) Override(fn func(*AppConfig)) *Loader {
	l.overrides = append(l.overrides, fn)
	return l
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load resolves defaults, then the file, then the environment, and validates
// the result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	for _, fn := range l.overrides {
		fn(&cfg)
	}
	cfg.Version = l.version
	cfg.APIOrigin = strings.TrimRight(strings.TrimSpace(cfg.APIOrigin), "/")
	cfg.FileOrigin = strings.TrimRight(strings.TrimSpace(cfg.FileOrigin), "/")
	cfg.DeliveryMode = strings.ToLower(strings.TrimSpace(cfg.DeliveryMode))

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() AppConfig {
	return AppConfig{
		LogLevel:     "info",
		Timeout:      defaultTimeout,
		DeliveryMode: DeliverySave,
		DownloadDir:  ".",
		ListenAddr:   defaultListen,
		RateLimit:    defaultRateLimit,
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// LoadFileConfig parses a YAML config file without defaults or env overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}

// loadFile parses the YAML file strictly. Unknown fields are fatal.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, ErrMultipleDocuments
	}

	return &fileCfg, nil
}

func mergeFileConfig(cfg *AppConfig, f *FileConfig) error {
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.Service.APIOrigin != "" {
		cfg.APIOrigin = expandEnv(f.Service.APIOrigin)
	}
	if f.Service.FileOrigin != "" {
		cfg.FileOrigin = expandEnv(f.Service.FileOrigin)
	}
	if f.Service.Timeout != "" {
		d, err := time.ParseDuration(f.Service.Timeout)
		if err != nil {
			return fmt.Errorf("service.timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if f.Delivery.Mode != "" {
		cfg.DeliveryMode = f.Delivery.Mode
	}
	if f.Delivery.Dir != "" {
		cfg.DownloadDir = expandEnv(f.Delivery.Dir)
	}
	if f.API.ListenAddr != "" {
		cfg.ListenAddr = f.API.ListenAddr
	}
	if f.API.RateLimit != nil {
		cfg.RateLimit = *f.API.RateLimit
	}
	if f.Telemetry.Enabled != nil {
		cfg.Telemetry.Enabled = *f.Telemetry.Enabled
	}
	if f.Telemetry.Exporter != "" {
		cfg.Telemetry.Exporter = f.Telemetry.Exporter
	}
	if f.Telemetry.Endpoint != "" {
		cfg.Telemetry.Endpoint = f.Telemetry.Endpoint
	}
	if f.Telemetry.SamplingRate != nil {
		cfg.Telemetry.SamplingRate = *f.Telemetry.SamplingRate
	}
	return nil
}

// mergeEnvConfig applies environment overrides, the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)

	cfg.APIOrigin = l.envString(EnvAPIOrigin, cfg.APIOrigin)
	cfg.FileOrigin = l.envString(EnvFileOrigin, cfg.FileOrigin)
	cfg.Timeout = l.envDuration(EnvTimeout, cfg.Timeout)

	cfg.DeliveryMode = l.envString(EnvDelivery, cfg.DeliveryMode)
	cfg.DownloadDir = l.envString(EnvDownloadDir, cfg.DownloadDir)

	cfg.ListenAddr = l.envString(EnvListen, cfg.ListenAddr)
	cfg.RateLimit = l.envInt(EnvRateLimit, cfg.RateLimit)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString(EnvOTelExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSampling, cfg.Telemetry.SamplingRate)
}
