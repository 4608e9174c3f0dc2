package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestError_UnwrapAndDetail(t *testing.T) {
	cases := []struct {
		name    string
		err     *Error
		message string
		cause   error
	}{
		{
			name:    "service message",
			err:     newError(OpMetadata, 404, "Video unavailable", nil),
			message: "Video unavailable",
		},
		{
			name:    "fallback with cause",
			err:     newError(OpDebug, 0, "", context.DeadlineExceeded),
			message: "Failed to get debug info",
			cause:   context.DeadlineExceeded,
		},
		{
			name:    "artifact fallback",
			err:     newError(OpArtifact, 500, "", nil),
			message: "Download failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Error() != tc.message {
				t.Errorf("Error() = %q, want %q", tc.err.Error(), tc.message)
			}
			if !errors.Is(tc.err, ErrService) {
				t.Error("expected errors.Is(err, ErrService)")
			}
			if tc.cause != nil && !errors.Is(tc.err, tc.cause) {
				t.Errorf("expected cause %v to be reachable", tc.cause)
			}
			if !strings.Contains(tc.err.Detail(), string(tc.err.Operation)) {
				t.Errorf("Detail() = %q, missing operation", tc.err.Detail())
			}
			if tc.err.Status > 0 && !strings.Contains(tc.err.Detail(), "HTTP") {
				t.Errorf("Detail() = %q, missing status", tc.err.Detail())
			}
		})
	}
}
