// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package service is the client of the remote extraction/encoding service.
// Each method is a single POST round trip; nothing is retried here.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	xglog "github.com/ManuGH/vidfetch/internal/log"
	"github.com/ManuGH/vidfetch/internal/metrics"
	"github.com/ManuGH/vidfetch/internal/platform/httpx"
)

const (
	pathVideoInfo    = "/video-info"
	pathDebugFormats = "/debug-formats"
	pathDownload     = "/download"

	// maxResponseBytes bounds how much of a reply is read. Debug reports for
	// long videos list a few hundred formats, far below this.
	maxResponseBytes = 8 << 20
)

// Client talks to one service API origin. It is safe for concurrent use.
type Client struct {
	base string
	http *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the round-trip timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = httpx.NewTracedClient(d)
	}
}

// New returns a client for the service API at apiOrigin.
func New(apiOrigin string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(apiOrigin, "/"),
		http: httpx.NewTracedClient(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin returns the API origin the client talks to.
func (c *Client) Origin() string {
	return c.base
}

// FetchMetadata resolves title, author and available qualities for url.
func (c *Client) FetchMetadata(ctx context.Context, url string) (*VideoMetadata, error) {
	if err := requireURL(OpMetadata, url); err != nil {
		return nil, err
	}
	var out VideoMetadata
	if err := c.post(ctx, OpMetadata, pathVideoInfo, map[string]string{"url": url}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchDebugReport lists every raw format the service sees for url.
func (c *Client) FetchDebugReport(ctx context.Context, url string) (*DebugReport, error) {
	if err := requireURL(OpDebug, url); err != nil {
		return nil, err
	}
	var out DebugReport
	if err := c.post(ctx, OpDebug, pathDebugFormats, map[string]string{"url": url}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestArtifact asks the service to encode a file and returns where to fetch it.
func (c *Client) RequestArtifact(ctx context.Context, req ArtifactRequest) (*Descriptor, error) {
	if err := requireURL(OpArtifact, req.URL); err != nil {
		return nil, err
	}
	if !req.Format.Valid() {
		return nil, newError(OpArtifact, 0, "", fmt.Errorf("unsupported format %q", req.Format))
	}
	var out Descriptor
	if err := c.post(ctx, OpArtifact, pathDownload, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) post(ctx context.Context, op Operation, path string, in, out any) (err error) {
	logger := xglog.WithComponentFromContext(ctx, "service")
	start := time.Now()
	outcome := "success"
	defer func() {
		elapsed := time.Since(start)
		metrics.RecordServiceRequest(string(op), outcome, elapsed)
		ev := logger.Debug()
		if err != nil {
			ev = logger.Warn().Str("error_detail", detail(err))
		}
		ev.Str(xglog.FieldOperation, string(op)).
			Str("outcome", outcome).
			Int64(xglog.FieldDurationMS, elapsed.Milliseconds()).
			Msg("service round trip")
	}()

	payload, err := json.Marshal(in)
	if err != nil {
		outcome = "bad_request"
		return newError(op, 0, "", fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		outcome = "bad_request"
		return newError(op, 0, "", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if rid := xglog.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	res, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		return newError(op, 0, "", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		outcome = "transport_error"
		return newError(op, res.StatusCode, "", fmt.Errorf("read body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		outcome = "service_error"
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return newError(op, res.StatusCode, strings.TrimSpace(eb.Error), nil)
	}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && strings.TrimSpace(eb.Error) != "" {
		outcome = "service_error"
		return newError(op, res.StatusCode, strings.TrimSpace(eb.Error), nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		outcome = "bad_response"
		return newError(op, res.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func requireURL(op Operation, url string) error {
	if strings.TrimSpace(url) == "" {
		return newError(op, 0, "", errors.New("empty source url"))
	}
	return nil
}

func detail(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Detail()
	}
	return err.Error()
}
