// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/session/info", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 3, WindowSize: time.Second})(okHandler)

	for i := range 3 {
		require.Equal(t, http.StatusOK, hit(h, "192.168.1.1:1234").Code, "request %d", i+1)
	}

	rec := hit(h, "192.168.1.1:1234")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestRateLimit_BucketsPerIP(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Second})(okHandler)

	hit(h, "192.168.1.1:1234")
	hit(h, "192.168.1.1:1234")
	assert.Equal(t, http.StatusOK, hit(h, "192.168.1.2:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.168.1.1:1234").Code)
}

func TestAPIRateLimit_PerMinute(t *testing.T) {
	h := APIRateLimit(5)(okHandler)
	for range 5 {
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1").Code)
	}
	rec := hit(h, "10.0.0.1:1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
