// Package source validates user-supplied video page URLs before any remote call.
package source

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("Please enter a YouTube URL")
	// ErrInvalid is returned for input that is not a recognised video page URL.
	ErrInvalid = errors.New("Please enter a valid YouTube URL")
)

// Canonical hosts of the supported platform.
const (
	HostLong  = "youtube.com"
	HostShort = "youtu.be"
)

var pattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)

// IsValidURL reports whether candidate plausibly points at a video on the
// supported platform. The check is purely syntactic.
func IsValidURL(candidate string) bool {
	if strings.TrimSpace(candidate) == "" {
		return false
	}
	return pattern.MatchString(candidate)
}

// Check is IsValidURL with a reason attached.
func Check(candidate string) error {
	if strings.TrimSpace(candidate) == "" {
		return ErrEmpty
	}
	if !pattern.MatchString(candidate) {
		return ErrInvalid
	}
	return nil
}
