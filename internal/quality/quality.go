// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package quality turns raw quality tokens reported by the remote service into
// display labels and checks requested selections against the capability set.
//
// The "best" sentinel is never resolved locally: it is sent verbatim and the
// service picks the concrete rendition.
package quality

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Best is the sentinel selection deferring the choice to the service.
const Best = "best"

// ErrUnavailable is returned when a requested token is not in the capability set.
var ErrUnavailable = errors.New("quality not available")

var videoNames = map[string]string{
	"2160p": "4K",
	"1440p": "2K",
	"1080p": "Full HD",
	"720p":  "HD",
	"480p":  "SD",
}

// DescribeVideo returns the display label for a resolution token. Unknown
// tokens, and the small resolutions without a common name, pass through.
func DescribeVideo(token string) string {
	if name, ok := videoNames[token]; ok {
		return token + " (" + name + ")"
	}
	return token
}

// audioTiers is ordered from the highest threshold down.
var audioTiers = []struct {
	min  int
	name string
}{
	{320, "Very High"},
	{256, "High"},
	{192, "Good"},
	{128, "Standard"},
}

// DescribeAudio returns the display label for a "<n>kbps" bitrate token.
// Tokens that do not parse are returned as-is.
func DescribeAudio(token string) string {
	kbps, ok := Bitrate(token)
	if !ok {
		return token
	}
	for _, tier := range audioTiers {
		if kbps >= tier.min {
			return token + " (" + tier.name + ")"
		}
	}
	return token
}

// Bitrate parses the integer part of a "<n>kbps" token.
func Bitrate(token string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(token, "kbps")))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Resolve validates requested against the available tokens. An empty request
// or Best yields Best unchanged.
func Resolve(requested string, available []string) (string, error) {
	if requested == "" || requested == Best {
		return Best, nil
	}
	if slices.Contains(available, requested) {
		return requested, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnavailable, requested)
}

// Capabilities is the set of tokens the service offers for one video.
type Capabilities struct {
	Video []string
	Audio []string
}

// ValidateVideo reports whether token is Best or an offered video token.
func (c Capabilities) ValidateVideo(token string) error {
	_, err := Resolve(token, c.Video)
	return err
}

// ValidateAudio reports whether token is Best or an offered audio token.
func (c Capabilities) ValidateAudio(token string) error {
	_, err := Resolve(token, c.Audio)
	return err
}

// Option is one selectable entry for a presentation layer.
type Option struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// Options lists Best followed by the given tokens in service order, labelled
// with describe.
func Options(tokens []string, describe func(string) string) []Option {
	out := make([]Option, 0, len(tokens)+1)
	out = append(out, Option{Token: Best, Label: "Best Available"})
	for _, t := range tokens {
		out = append(out, Option{Token: t, Label: describe(t)})
	}
	return out
}
