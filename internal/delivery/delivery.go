// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package delivery hands a produced artifact to the host environment.
// Delivery is fire-and-forget: adapters log failures, they never report them
// back to the session.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/vidfetch/internal/service"
)

// Deliverer starts retrieval of a completed artifact.
type Deliverer interface {
	Deliver(ctx context.Context, d service.Descriptor, fileOrigin string)
}

var (
	ErrBadOrigin  = errors.New("delivery: file origin must be an absolute http(s) URL")
	ErrEmptyPath  = errors.New("delivery: descriptor has no download URL")
	ErrBadLocator = errors.New("delivery: download URL does not parse")
	ErrBadScheme  = errors.New("delivery: download URL must be http(s)")
)

// Resolve turns the service's relative download locator into an absolute URL
// under fileOrigin. A path prefix on the origin is kept, so
// ("/downloads/a.mp4", "http://h/files") gives "http://h/files/downloads/a.mp4".
// Absolute http(s) locators are returned unchanged; any other scheme is
// rejected so a reply cannot point the host at a local file or handler.
func Resolve(downloadURL, fileOrigin string) (string, error) {
	if strings.TrimSpace(downloadURL) == "" {
		return "", ErrEmptyPath
	}
	base, err := url.Parse(strings.TrimSpace(fileOrigin))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadOrigin, fileOrigin)
	}
	ref, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadLocator, err)
	}
	if ref.IsAbs() {
		if s := strings.ToLower(ref.Scheme); s != "http" && s != "https" {
			return "", fmt.Errorf("%w: %q", ErrBadScheme, ref.Scheme)
		}
		return ref.String(), nil
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		if base.RawPath != "" {
			base.RawPath += "/"
		}
	}
	ref.Path = strings.TrimPrefix(ref.Path, "/")
	ref.RawPath = strings.TrimPrefix(ref.RawPath, "/")
	return base.ResolveReference(ref).String(), nil
}

// SafeFilename reduces name to a single path element. When nothing usable is
// left it falls back to the last element of locator, then to "download".
func SafeFilename(name, locator string) string {
	if s := cleanName(name); s != "" {
		return s
	}
	if u, err := url.Parse(locator); err == nil {
		if s := cleanName(path.Base(u.Path)); s != "" {
			return s
		}
	}
	return "download"
}

func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	switch name {
	case "", ".", "..", "/":
		return ""
	}
	return norm.NFC.String(strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name))
}
