// Package httpx builds the outbound HTTP clients. Every client has bounded
// dial and handshake timeouts; nothing in the module uses http.DefaultClient.
package httpx

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// APITimeout bounds one service round trip. The service encodes the
	// artifact before answering a download request.
	APITimeout = 2 * time.Minute
	// ArtifactHeaderTimeout bounds the wait for the first byte of a file.
	// The body itself is bounded only by the caller's context.
	ArtifactHeaderTimeout = 30 * time.Second

	maxDialTimeout = 5 * time.Second
	keepAlive      = 30 * time.Second
	idleTimeout    = 30 * time.Second
	idlePerHost    = 4
	idleTotal      = 16
)

func transport(headerTimeout time.Duration) *http.Transport {
	dial := min(headerTimeout, maxDialTimeout)
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dial, KeepAlive: keepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   dial,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: time.Second,
		IdleConnTimeout:       idleTimeout,
		MaxIdleConns:          idleTotal,
		MaxIdleConnsPerHost:   idlePerHost,
	}
}

// NewClient returns a client for service API calls. A non-positive timeout
// selects APITimeout. The header timeout equals the overall timeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &http.Client{Timeout: timeout, Transport: transport(timeout)}
}

// NewTracedClient is NewClient with an otelhttp transport, so service calls
// join the caller's trace.
func NewTracedClient(timeout time.Duration) *http.Client {
	c := NewClient(timeout)
	c.Transport = otelhttp.NewTransport(c.Transport)
	return c
}

// NewArtifactClient returns a traced client for streaming large files. It
// has no overall timeout; cancel the request context to abort.
func NewArtifactClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(transport(ArtifactHeaderTimeout))}
}
