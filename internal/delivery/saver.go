// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	xglog "github.com/ManuGH/vidfetch/internal/log"
	"github.com/ManuGH/vidfetch/internal/metrics"
	"github.com/ManuGH/vidfetch/internal/platform/httpx"
	"github.com/ManuGH/vidfetch/internal/service"
)

// Saver downloads the artifact into a local directory. Each delivery runs in
// its own goroutine; Wait blocks until all of them are done.
type Saver struct {
	dir  string
	http *http.Client
	wg   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSaver returns a Saver writing into dir. A nil client gets the artifact
// client, which only bounds the wait for response headers.
func NewSaver(dir string, client *http.Client) *Saver {
	if client == nil {
		client = httpx.NewArtifactClient()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Saver{dir: dir, http: client, ctx: ctx, cancel: cancel}
}

// Deliver resolves the locator and starts the save in the background.
func (s *Saver) Deliver(ctx context.Context, d service.Descriptor, fileOrigin string) {
	logger := xglog.WithComponentFromContext(ctx, "delivery")

	locator, err := Resolve(d.DownloadURL, fileOrigin)
	if err != nil {
		metrics.RecordDelivery("save", "failed")
		logger.Error().Err(err).Str(xglog.FieldFilename, d.Filename).Msg("cannot resolve artifact locator")
		return
	}
	target := filepath.Join(s.dir, SafeFilename(d.Filename, locator))

	metrics.RecordDelivery("save", "started")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The intent's context may end with the request that triggered it.
		fetchCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
		defer stop()
		unregister := context.AfterFunc(s.ctx, stop)
		defer unregister()

		start := time.Now()
		n, err := s.save(fetchCtx, locator, target)
		if err != nil {
			metrics.RecordDelivery("save", "failed")
			logger.Error().Err(err).Str(xglog.FieldURL, locator).Str(xglog.FieldFilename, target).Msg("artifact retrieval failed")
			return
		}
		metrics.RecordDelivery("save", "saved")
		logger.Info().
			Str(xglog.FieldFilename, target).
			Int64("bytes", n).
			Int64(xglog.FieldDurationMS, time.Since(start).Milliseconds()).
			Msg("artifact saved")
	}()
}

// Wait blocks until every started delivery has finished.
func (s *Saver) Wait() {
	s.wg.Wait()
}

// Close aborts in-flight deliveries and waits for them to return.
func (s *Saver) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Saver) save(ctx context.Context, locator, target string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	res, err := s.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch artifact: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch artifact: unexpected status %d", res.StatusCode)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create download dir: %w", err)
	}

	// renameio handles temp file creation, fsync, atomic rename and cleanup.
	pending, err := renameio.NewPendingFile(target, renameio.WithPermissions(0o644))
	if err != nil {
		return 0, fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	n, err := io.Copy(pending, res.Body)
	if err != nil {
		return n, fmt.Errorf("write artifact: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return n, fmt.Errorf("atomically replace %s: %w", target, err)
	}
	return n, nil
}
