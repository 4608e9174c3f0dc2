// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session owns the download workflow state. Session is a plain,
// serialisable record; Apply is the pure transition function over it and
// Controller drives Apply around the remote calls.
package session

import (
	"strings"

	"github.com/ManuGH/vidfetch/internal/quality"
	"github.com/ManuGH/vidfetch/internal/service"
)

// Format is the selected container family.
type Format = service.Format

const (
	FormatVideo     = service.FormatMP4
	FormatAudioOnly = service.FormatMP3
)

// Subflow names one of the independent request/response cycles.
type Subflow string

const (
	SubflowInfo     Subflow = "info"
	SubflowDebug    Subflow = "debug"
	SubflowDownload Subflow = "download"
)

// Phase is the coarse, derived view of what the session is doing.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhaseFetchingInfo  Phase = "FETCHING_INFO"
	PhaseFetchingDebug Phase = "FETCHING_DEBUG"
	PhaseDownloading   Phase = "DOWNLOADING"
)

// Status is the state of one sub-flow.
type Status string

const (
	StatusIdle Status = "idle"
	StatusBusy Status = "busy"
)

// Flow tracks one sub-flow. InFlight counts outstanding requests; it only
// exceeds one when a caller re-issues an intent without waiting.
type Flow struct {
	Status   Status `json:"status"`
	InFlight int    `json:"inFlight"`
}

// Busy reports whether a request of this sub-flow is outstanding.
func (f Flow) Busy() bool {
	return f.Status == StatusBusy
}

// Session is the state of one workflow instance.
type Session struct {
	ID           string                 `json:"id"`
	URL          string                 `json:"url"`
	Format       Format                 `json:"format"`
	VideoQuality string                 `json:"videoQuality"`
	AudioQuality string                 `json:"audioQuality"`
	Metadata     *service.VideoMetadata `json:"metadata,omitempty"`
	DebugReport  *service.DebugReport   `json:"debugReport,omitempty"`
	Info         Flow                   `json:"info"`
	Debug        Flow                   `json:"debug"`
	Download     Flow                   `json:"download"`
	Progress     int                    `json:"progress"`
	Message      string                 `json:"message,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// New returns an idle session with video output and best qualities.
func New(id string) Session {
	return Session{
		ID:           id,
		Format:       FormatVideo,
		VideoQuality: quality.Best,
		AudioQuality: quality.Best,
		Info:         Flow{Status: StatusIdle},
		Debug:        Flow{Status: StatusIdle},
		Download:     Flow{Status: StatusIdle},
	}
}

// Phase derives the coarse phase. When several sub-flows are busy the
// download wins, then info, then debug.
func (s Session) Phase() Phase {
	switch {
	case s.Download.Busy():
		return PhaseDownloading
	case s.Info.Busy():
		return PhaseFetchingInfo
	case s.Debug.Busy():
		return PhaseFetchingDebug
	default:
		return PhaseIdle
	}
}

// FetchBusy is the advisory flag shared by the info and debug sub-flows, meant
// for disabling the controls that trigger them. It does not block anything.
func (s Session) FetchBusy() bool {
	return s.Info.Busy() || s.Debug.Busy()
}

// DownloadBusy is the independent flag of the download sub-flow.
func (s Session) DownloadBusy() bool {
	return s.Download.Busy()
}

// SelectedQuality is the token sent with an artifact request: the audio
// selection for audio-only output, the video selection otherwise.
func (s Session) SelectedQuality() string {
	if s.Format == FormatAudioOnly {
		return s.AudioQuality
	}
	return s.VideoQuality
}

// ArtifactRequest builds the request for the current selection.
func (s Session) ArtifactRequest() service.ArtifactRequest {
	return service.ArtifactRequest{
		URL:     s.URL,
		Format:  s.Format,
		Quality: s.SelectedQuality(),
	}
}

// Capabilities returns the offered tokens, empty when no metadata is loaded.
func (s Session) Capabilities() quality.Capabilities {
	if s.Metadata == nil {
		return quality.Capabilities{}
	}
	return quality.Capabilities{
		Video: s.Metadata.AvailableQualities.Video,
		Audio: s.Metadata.AvailableQualities.Audio,
	}
}

func (s *Session) setMessage(msg string) {
	s.Message = msg
	s.Error = ""
}

func (s *Session) setError(msg string) {
	s.Error = msg
	s.Message = ""
}

func formatLabel(f Format) string {
	return strings.ToUpper(string(f))
}
