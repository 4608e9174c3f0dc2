// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/vidfetch/internal/service"
)

func TestSaver_WritesArtifact(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/downloads/song.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ID3-bytes"))
	}))
	defer files.Close()

	dir := t.TempDir()
	s := NewSaver(dir, files.Client())
	s.Deliver(context.Background(), service.Descriptor{DownloadURL: "/downloads/song.mp3", Filename: "song.mp3"}, files.URL)
	s.Wait()
	files.CloseClientConnections()

	data, err := os.ReadFile(filepath.Join(dir, "song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "ID3-bytes", string(data))
}

func TestSaver_FailureLeavesNoFile(t *testing.T) {
	files := httptest.NewServer(http.NotFoundHandler())
	defer files.Close()

	dir := t.TempDir()
	s := NewSaver(dir, files.Client())
	s.Deliver(context.Background(), service.Descriptor{DownloadURL: "/missing.mp4", Filename: "missing.mp4"}, files.URL)
	s.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "a broken link must not leave partial files")
}

func TestSaver_UnresolvableOriginIsDropped(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir, nil)
	s.Deliver(context.Background(), service.Descriptor{DownloadURL: "/a.mp4", Filename: "a.mp4"}, "not-an-origin")
	s.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaver_SurvivesCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte("late"))
	}))
	defer files.Close()

	dir := t.TempDir()
	s := NewSaver(dir, files.Client())
	ctx, cancel := context.WithCancel(context.Background())
	s.Deliver(ctx, service.Descriptor{DownloadURL: "/late.mp4", Filename: "late.mp4"}, files.URL)
	cancel()
	close(release)
	s.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "late.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "late", string(data))
}

func TestSaver_CloseAbortsInFlight(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer files.Close()

	dir := t.TempDir()
	s := NewSaver(dir, files.Client())
	s.Deliver(context.Background(), service.Descriptor{DownloadURL: "/slow.mp4", Filename: "slow.mp4"}, files.URL)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not abort the in-flight delivery")
	}
	_, err := os.Stat(filepath.Join(dir, "slow.mp4"))
	assert.True(t, os.IsNotExist(err))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Deliver(context.Background(), service.Descriptor{DownloadURL: "/downloads/a.mp4", Filename: "a.mp4"}, "http://localhost:5000")
	r.Deliver(context.Background(), service.Descriptor{DownloadURL: "/b.mp4"}, "bad")

	got := r.Deliveries()
	require.Len(t, got, 2)
	assert.Equal(t, "http://localhost:5000/downloads/a.mp4", got[0].Locator)
	assert.NoError(t, got[0].Err)
	assert.ErrorIs(t, got[1].Err, ErrBadOrigin)
}

func TestOpener(t *testing.T) {
	var mu sync.Mutex
	var opened []string
	o := &Opener{Launch: func(_ context.Context, locator string) error {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, locator)
		return nil
	}}
	o.Deliver(context.Background(), service.Descriptor{DownloadURL: "/downloads/a.mp4", Filename: "a.mp4"}, "https://files.example.test")
	require.Equal(t, []string{"https://files.example.test/downloads/a.mp4"}, opened)

	o.Deliver(context.Background(), service.Descriptor{DownloadURL: "file:///etc/passwd"}, "https://files.example.test")
	require.Len(t, opened, 1, "non-http locators never reach the host handler")

	failing := &Opener{Launch: func(context.Context, string) error { return errors.New("no handler") }}
	assert.NotPanics(t, func() {
		failing.Deliver(context.Background(), service.Descriptor{DownloadURL: "/a.mp4"}, "https://files.example.test")
	})
}
