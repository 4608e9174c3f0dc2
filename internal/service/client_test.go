// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestClient(base string) *Client {
	return New(base, WithHTTPClient(&http.Client{Timeout: 500 * time.Millisecond}))
}

func TestFetchMetadata_Success(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	c := newTestClient(mock.URL())
	md, err := c.FetchMetadata(context.Background(), testURL)
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", md.Title)
	assert.Equal(t, []string{"1080p", "720p"}, md.AvailableQualities.Video)
	assert.Equal(t, []string{"160kbps", "128kbps"}, md.AvailableQualities.Audio)
	assert.Equal(t, int64(213), md.DurationSeconds())
	assert.Equal(t, int64(1234567), md.Views())

	reqs := mock.Requests(EndpointVideoInfo)
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.Equal(t, map[string]any{"url": testURL}, reqs[0].Body)
}

func TestFetchMetadata_ServiceErrorMessage(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetFailures(EndpointVideoInfo, 1, http.StatusBadRequest, "unavailable")

	_, err := newTestClient(mock.URL()).FetchMetadata(context.Background(), testURL)
	require.Error(t, err)
	assert.Equal(t, "unavailable", err.Error())
	assert.ErrorIs(t, err, ErrService)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpMetadata, se.Operation)
	assert.Equal(t, http.StatusBadRequest, se.Status)
}

func TestFallbackMessages(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	c := newTestClient(mock.URL())
	ctx := context.Background()

	mock.SetFailures(EndpointVideoInfo, 1, http.StatusInternalServerError, "")
	_, err := c.FetchMetadata(ctx, testURL)
	assert.EqualError(t, err, "Failed to get video info")

	mock.SetFailures(EndpointDebugFormats, 1, http.StatusInternalServerError, "")
	_, err = c.FetchDebugReport(ctx, testURL)
	assert.EqualError(t, err, "Failed to get debug info")

	mock.SetFailures(EndpointDownload, 1, http.StatusInternalServerError, "")
	_, err = c.RequestArtifact(ctx, ArtifactRequest{URL: testURL, Format: FormatMP4, Quality: "best"})
	assert.EqualError(t, err, "Download failed")
}

func TestNonJSONErrorBodyUsesFallback(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetRawFailure(EndpointDebugFormats, http.StatusBadGateway, "<html>bad gateway</html>")

	_, err := newTestClient(mock.URL()).FetchDebugReport(context.Background(), testURL)
	assert.EqualError(t, err, "Failed to get debug info")
	assert.ErrorIs(t, err, ErrService)
}

func TestSuccessStatusWithErrorBody(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"video is private"}`))
	}))
	defer s.Close()

	_, err := newTestClient(s.URL).FetchMetadata(context.Background(), testURL)
	assert.EqualError(t, err, "video is private")
}

func TestInvalidJSONUsesFallback(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not-json"))
	}))
	defer s.Close()

	_, err := newTestClient(s.URL).FetchMetadata(context.Background(), testURL)
	assert.EqualError(t, err, "Failed to get video info")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Error(t, se.Err, "decode cause is kept for logs")
}

func TestTransportFailureUsesFallback(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := s.URL
	s.Close()

	_, err := newTestClient(base).RequestArtifact(context.Background(), ArtifactRequest{URL: testURL, Format: FormatMP3, Quality: "best"})
	assert.EqualError(t, err, "Download failed")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Zero(t, se.Status)
}

func TestTimeoutSurfacesAsServiceError(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.SetDelay(EndpointVideoInfo, 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := newTestClient(mock.URL()).FetchMetadata(ctx, testURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrService)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "cause should stay inspectable: %v", err)
}

func TestRequestArtifact_SendsBody(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	d, err := newTestClient(mock.URL()).RequestArtifact(context.Background(), ArtifactRequest{
		URL: testURL, Format: FormatMP3, Quality: "128kbps",
	})
	require.NoError(t, err)
	assert.Equal(t, "/downloads/never-gonna-give-you-up.mp4", d.DownloadURL)
	assert.Equal(t, "never-gonna-give-you-up.mp4", d.Filename)

	reqs := mock.Requests(EndpointDownload)
	require.Len(t, reqs, 1)
	assert.Equal(t, map[string]any{"url": testURL, "format": "mp3", "quality": "128kbps"}, reqs[0].Body)
}

func TestRequestArtifact_RejectsUnknownFormatLocally(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	_, err := newTestClient(mock.URL()).RequestArtifact(context.Background(), ArtifactRequest{URL: testURL, Format: "webm"})
	assert.ErrorIs(t, err, ErrService)
	assert.Empty(t, mock.Requests(EndpointDownload))
}

func TestEmptyURLNeverReachesNetwork(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	_, err := newTestClient(mock.URL()).FetchMetadata(context.Background(), "  ")
	assert.EqualError(t, err, "Failed to get video info")
	assert.Empty(t, mock.Requests(EndpointVideoInfo))
}

func TestNew_TrimsOrigin(t *testing.T) {
	c := New("http://api.example.test/")
	assert.Equal(t, "http://api.example.test", c.Origin())
}
