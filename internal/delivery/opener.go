package delivery

import (
	"context"
	"os/exec"
	"runtime"

	xglog "github.com/ManuGH/vidfetch/internal/log"
	"github.com/ManuGH/vidfetch/internal/metrics"
	"github.com/ManuGH/vidfetch/internal/service"
)

// Opener passes the resolved locator to the desktop's URL handler, which
// performs the actual retrieval (typically a browser download).
type Opener struct {
	// Launch starts the handler without waiting for it. Nil means the
	// platform default.
	Launch func(ctx context.Context, locator string) error
}

// Deliver resolves the locator and launches the host handler for it.
func (o *Opener) Deliver(ctx context.Context, d service.Descriptor, fileOrigin string) {
	logger := xglog.WithComponentFromContext(ctx, "delivery")

	locator, err := Resolve(d.DownloadURL, fileOrigin)
	if err != nil {
		metrics.RecordDelivery("open", "failed")
		logger.Error().Err(err).Str(xglog.FieldFilename, d.Filename).Msg("cannot resolve artifact locator")
		return
	}

	launch := o.Launch
	if launch == nil {
		launch = launchDefault
	}
	if err := launch(ctx, locator); err != nil {
		metrics.RecordDelivery("open", "failed")
		logger.Error().Err(err).Str(xglog.FieldURL, locator).Msg("cannot hand artifact to host")
		return
	}
	metrics.RecordDelivery("open", "started")
	logger.Info().Str(xglog.FieldURL, locator).Str(xglog.FieldFilename, d.Filename).Msg("artifact handed to host")
}

func launchDefault(_ context.Context, locator string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", locator)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", locator)
	default:
		cmd = exec.Command("xdg-open", locator)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
