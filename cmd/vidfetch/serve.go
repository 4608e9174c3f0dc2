// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/vidfetch/internal/api"
	xglog "github.com/ManuGH/vidfetch/internal/log"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			handler := api.New(api.Config{
				Controller:     a.ctrl,
				Version:        a.cfg.Version,
				RateLimit:      a.cfg.RateLimit,
				TracingService: tracingService(a.cfg.Telemetry.Enabled),
			}).Handler()

			ln, err := net.Listen("tcp", a.cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return serve(ctx, ln, handler, cmd)
		},
	}
	cmd.Flags().StringVar(&g.listen, "listen", "", "listen address (overrides VIDFETCH_LISTEN)")
	return cmd
}

func tracingService(enabled bool) string {
	if enabled {
		return "vidfetch"
	}
	return ""
}

// serve runs until ctx is done, then shuts the server down gracefully.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, cmd *cobra.Command) error {
	logger := xglog.WithComponent("api")
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("control API listening")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "listening on http://%s\n", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info().Msg("control API stopped")
	return nil
}
