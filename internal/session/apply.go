// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/vidfetch/internal/fsm"
	"github.com/ManuGH/vidfetch/internal/quality"
	"github.com/ManuGH/vidfetch/internal/source"
)

type flowEvent string

const (
	flowStart  flowEvent = "start"
	flowSettle flowEvent = "settle" // one of several outstanding requests returned
	flowFinish flowEvent = "finish" // the last outstanding request returned
)

// flowTable is shared by all three sub-flows. Starting while busy is legal:
// re-entrancy is the caller's concern, and overlapping replies resolve
// last-write-wins.
var flowTable = fsm.MustNew([]fsm.Transition[Status, flowEvent]{
	{From: StatusIdle, Event: flowStart, To: StatusBusy},
	{From: StatusBusy, Event: flowStart, To: StatusBusy},
	{From: StatusBusy, Event: flowSettle, To: StatusBusy},
	{From: StatusBusy, Event: flowFinish, To: StatusIdle},
})

func startFlow(f Flow) (Flow, error) {
	to, err := flowTable.Next(f.Status, flowStart)
	if err != nil {
		return f, err
	}
	return Flow{Status: to, InFlight: f.InFlight + 1}, nil
}

func endFlow(f Flow) (Flow, error) {
	ev := flowFinish
	if f.InFlight > 1 {
		ev = flowSettle
	}
	to, err := flowTable.Next(f.Status, ev)
	if err != nil {
		return f, err
	}
	return Flow{Status: to, InFlight: max(f.InFlight-1, 0)}, nil
}

// Apply returns the session that results from ev.
//
// A rejected intent yields a *ValidationError together with a session whose
// Error field is set and which is otherwise unchanged; the caller should keep
// that session. An outcome for a sub-flow with nothing outstanding yields
// fsm.ErrInvalidTransition and the input session unchanged.
func Apply(s Session, ev Event) (Session, error) {
	switch e := ev.(type) {
	case URLChanged:
		s.URL = e.URL
		return s, nil

	case FormatSelected:
		if !e.Format.Valid() {
			return reject(s, invalid(ReasonUnknownFormat, fmt.Sprintf("Unsupported format %q", e.Format)))
		}
		s.Format = e.Format
		if e.Format == FormatAudioOnly {
			s.AudioQuality = quality.Best
		} else {
			s.VideoQuality = quality.Best
		}
		return s, nil

	case VideoQualitySelected:
		// Video tokens are not checked while the output is audio only;
		// switching back to video resets the selection to best.
		if s.Format == FormatAudioOnly {
			s.VideoQuality = e.Token
			if e.Token == "" {
				s.VideoQuality = quality.Best
			}
			return s, nil
		}
		token, err := quality.Resolve(e.Token, s.Capabilities().Video)
		if err != nil {
			return reject(s, invalid(ReasonUnknownQuality, fmt.Sprintf("Video quality %s is not available", e.Token)))
		}
		s.VideoQuality = token
		return s, nil

	case AudioQualitySelected:
		token, err := quality.Resolve(e.Token, s.Capabilities().Audio)
		if err != nil {
			return reject(s, invalid(ReasonUnknownQuality, fmt.Sprintf("Audio quality %s is not available", e.Token)))
		}
		s.AudioQuality = token
		return s, nil

	case InfoRequested:
		if verr := checkURL(s.URL); verr != nil {
			return reject(s, verr)
		}
		flow, err := startFlow(s.Info)
		if err != nil {
			return s, err
		}
		s.Info = flow
		s.setMessage("Getting video information...")
		return s, nil

	case InfoSucceeded:
		flow, err := endFlow(s.Info)
		if err != nil {
			return s, err
		}
		s.Info = flow
		s.Metadata = e.Metadata
		s.VideoQuality = quality.Best
		s.AudioQuality = quality.Best
		var video []string
		if e.Metadata != nil {
			video = e.Metadata.AvailableQualities.Video
		}
		s.setMessage("Video information loaded successfully! Available qualities: " + strings.Join(video, ", "))
		return s, nil

	case InfoFailed:
		flow, err := endFlow(s.Info)
		if err != nil {
			return s, err
		}
		s.Info = flow
		s.Metadata = nil
		s.setError(errorText(e.Err, "Failed to get video info"))
		return s, nil

	case DebugRequested:
		if verr := checkURL(s.URL); verr != nil {
			return reject(s, verr)
		}
		flow, err := startFlow(s.Debug)
		if err != nil {
			return s, err
		}
		s.Debug = flow
		s.setMessage("Getting debug information...")
		return s, nil

	case DebugSucceeded:
		flow, err := endFlow(s.Debug)
		if err != nil {
			return s, err
		}
		s.Debug = flow
		s.DebugReport = e.Report
		total := 0
		if e.Report != nil {
			total = e.Report.TotalFormats
		}
		s.setMessage(fmt.Sprintf("Debug info loaded. Found %d formats.", total))
		return s, nil

	case DebugFailed:
		flow, err := endFlow(s.Debug)
		if err != nil {
			return s, err
		}
		s.Debug = flow
		s.setError(errorText(e.Err, "Failed to get debug info"))
		return s, nil

	case DownloadRequested:
		if s.Metadata == nil {
			return reject(s, invalid(ReasonNoMetadata, "Please get video information first"))
		}
		flow, err := startFlow(s.Download)
		if err != nil {
			return s, err
		}
		s.Download = flow
		s.Progress = 0
		s.setMessage(fmt.Sprintf("Starting %s download at %s quality...", formatLabel(s.Format), s.SelectedQuality()))
		return s, nil

	case DownloadSucceeded:
		flow, err := endFlow(s.Download)
		if err != nil {
			return s, err
		}
		s.Download = flow
		s.Progress = 100
		s.setMessage(e.Descriptor.Message)
		return s, nil

	case DownloadFailed:
		flow, err := endFlow(s.Download)
		if err != nil {
			return s, err
		}
		s.Download = flow
		s.Progress = 0
		s.setError(errorText(e.Err, "Download failed"))
		return s, nil

	default:
		return s, fmt.Errorf("unknown event %T", ev)
	}
}

func reject(s Session, verr *ValidationError) (Session, error) {
	s.setError(verr.Message)
	return s, verr
}

func checkURL(u string) *ValidationError {
	switch err := source.Check(u); {
	case err == nil:
		return nil
	case errors.Is(err, source.ErrEmpty):
		return invalid(ReasonEmptyURL, err.Error())
	default:
		return invalid(ReasonInvalidURL, err.Error())
	}
}

func errorText(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
