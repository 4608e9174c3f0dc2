// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vidfetch/internal/quality"
	"github.com/ManuGH/vidfetch/internal/session"
)

func newInfoCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info URL",
		Short: "Show title, author and available qualities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			a.echo(cmd.ErrOrStderr())

			a.ctrl.SetURL(ctx, args[0])
			if err := a.ctrl.RequestInfo(ctx); err != nil {
				return err
			}
			printMetadata(cmd.OutOrStdout(), a.ctrl.Snapshot().Metadata)
			return nil
		},
	}
}

func newDebugCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "debug URL",
		Short: "List every raw format the service sees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			a.echo(cmd.ErrOrStderr())

			a.ctrl.SetURL(ctx, args[0])
			if err := a.ctrl.RequestDebug(ctx); err != nil {
				return err
			}
			return printDebugReport(cmd.OutOrStdout(), a.ctrl.Snapshot().DebugReport)
		},
	}
}

func newInspectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect URL",
		Short: "Fetch metadata and the format report concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			a.echo(cmd.ErrOrStderr())

			a.ctrl.SetURL(ctx, args[0])
			// Both sub-flows share one session; neither cancels the other.
			var eg errgroup.Group
			eg.Go(func() error { return a.ctrl.RequestInfo(ctx) })
			eg.Go(func() error { return a.ctrl.RequestDebug(ctx) })
			if err := eg.Wait(); err != nil {
				return err
			}

			s := a.ctrl.Snapshot()
			out := cmd.OutOrStdout()
			printMetadata(out, s.Metadata)
			_, _ = fmt.Fprintln(out)
			return printDebugReport(out, s.DebugReport)
		},
	}
}

type downloadFlags struct {
	format       string
	videoQuality string
	audioQuality string
}

func newDownloadCmd(g *globalFlags) *cobra.Command {
	var f downloadFlags
	cmd := &cobra.Command{
		Use:   "download URL",
		Short: "Request an MP4 or MP3 artifact and deliver it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd, g)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			a.echo(cmd.ErrOrStderr())

			a.ctrl.SetURL(ctx, args[0])
			if err := a.ctrl.RequestInfo(ctx); err != nil {
				return err
			}
			if err := a.ctrl.SelectFormat(ctx, session.Format(f.format)); err != nil {
				return err
			}
			if err := a.ctrl.SelectVideoQuality(ctx, f.videoQuality); err != nil {
				return err
			}
			if err := a.ctrl.SelectAudioQuality(ctx, f.audioQuality); err != nil {
				return err
			}
			if err := a.ctrl.RequestDownload(ctx); err != nil {
				return err
			}

			if a.recorder != nil {
				for _, d := range a.recorder.Deliveries() {
					if d.Err != nil {
						return d.Err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.Locator)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", string(session.FormatVideo), "output format: mp4 or mp3")
	cmd.Flags().StringVar(&f.videoQuality, "video-quality", quality.Best, "video quality token, e.g. 720p")
	cmd.Flags().StringVar(&f.audioQuality, "audio-quality", quality.Best, "audio quality token, e.g. 128kbps")
	return cmd
}
