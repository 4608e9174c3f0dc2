// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ManuGH/vidfetch/internal/config"
	"github.com/ManuGH/vidfetch/internal/delivery"
	xglog "github.com/ManuGH/vidfetch/internal/log"
	"github.com/ManuGH/vidfetch/internal/service"
	"github.com/ManuGH/vidfetch/internal/session"
	"github.com/ManuGH/vidfetch/internal/telemetry"
	"github.com/ManuGH/vidfetch/internal/version"
)

// globalFlags override the loaded configuration.
type globalFlags struct {
	configPath string
	apiOrigin  string
	fileOrigin string
	delivery   string
	logLevel   string
	listen     string // serve only
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "vidfetch",
		Short:         "Fetch video metadata and artifacts from a vidfetch service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to config file (YAML)")
	pf.StringVar(&g.apiOrigin, "api-origin", "", "service API origin (overrides "+config.EnvAPIOrigin+")")
	pf.StringVar(&g.fileOrigin, "file-origin", "", "artifact file origin (overrides "+config.EnvFileOrigin+")")
	pf.StringVar(&g.delivery, "delivery", "", "delivery mode: save, open or none (overrides "+config.EnvDelivery+")")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (overrides "+config.EnvLogLevel+")")

	root.AddCommand(
		newInfoCmd(&g),
		newDebugCmd(&g),
		newInspectCmd(&g),
		newDownloadCmd(&g),
		newServeCmd(&g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

// app is the wiring shared by every command.
type app struct {
	cfg       config.AppConfig
	ctrl      *session.Controller
	saver     *delivery.Saver
	recorder  *delivery.Recorder
	telemetry *telemetry.Provider
}

func newApp(ctx context.Context, cmd *cobra.Command, g *globalFlags) (*app, error) {
	// Safe defaults until the config is loaded.
	xglog.Configure(xglog.Config{Output: cmd.ErrOrStderr(), Service: "vidfetch", Version: version.Version})

	cfg, err := config.NewLoader(g.configPath, version.Version).
		Override(func(c *config.AppConfig) {
			setIf(&c.APIOrigin, g.apiOrigin)
			setIf(&c.FileOrigin, g.fileOrigin)
			setIf(&c.DeliveryMode, g.delivery)
			setIf(&c.LogLevel, g.logLevel)
			setIf(&c.ListenAddr, g.listen)
		}).
		Load()
	if err != nil {
		return nil, err
	}
	xglog.Reconfigure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  cmd.ErrOrStderr(),
		Service: "vidfetch",
		Version: cfg.Version,
	})

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "vidfetch",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	a := &app{cfg: cfg, telemetry: provider}
	var deliverer delivery.Deliverer
	switch cfg.DeliveryMode {
	case config.DeliverySave:
		a.saver = delivery.NewSaver(cfg.DownloadDir, nil)
		deliverer = a.saver
	case config.DeliveryOpen:
		deliverer = &delivery.Opener{}
	default:
		a.recorder = &delivery.Recorder{}
		deliverer = a.recorder
	}

	client := service.New(cfg.APIOrigin, service.WithTimeout(cfg.Timeout))
	a.ctrl = session.NewController(client, deliverer, cfg.FileOrigin)

	logger := xglog.WithComponent("cli")
	logger.Debug().
		Str(xglog.FieldSessionID, a.ctrl.ID()).
		Str("api_origin", cfg.APIOrigin).
		Str("file_origin", cfg.FileOrigin).
		Str("delivery", cfg.DeliveryMode).
		Msg("session ready")
	return a, nil
}

// close waits for saves to finish and flushes traces.
func (a *app) close(ctx context.Context) {
	if a.saver != nil {
		a.saver.Wait()
	}
	if err := a.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		logger := xglog.WithComponent("cli")
		logger.Warn().Err(err).Msg("telemetry shutdown failed")
	}
}

// echo prints each new session message or error to w as it happens.
func (a *app) echo(w io.Writer) {
	var (
		mu   sync.Mutex
		last string
	)
	a.ctrl.Subscribe(func(s session.Session) {
		mu.Lock()
		defer mu.Unlock()
		line := s.Message
		if s.Error != "" {
			line = "error: " + s.Error
		}
		if line == "" || line == last {
			return
		}
		last = line
		_, _ = fmt.Fprintln(w, line)
	})
}

func setIf(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
