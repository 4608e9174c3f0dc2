// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidfetch/internal/fsm"
	"github.com/ManuGH/vidfetch/internal/quality"
	"github.com/ManuGH/vidfetch/internal/service"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func metadata(video, audio []string) *service.VideoMetadata {
	return &service.VideoMetadata{
		Title:              "clip",
		AvailableQualities: service.AvailableQualities{Video: video, Audio: audio},
	}
}

func mustApply(t *testing.T, s Session, evs ...Event) Session {
	t.Helper()
	for _, ev := range evs {
		var err error
		s, err = Apply(s, ev)
		require.NoError(t, err, "event %s", ev.Name())
	}
	return s
}

// loaded returns a session with metadata for 1080p/720p and 160/128kbps.
func loaded(t *testing.T) Session {
	t.Helper()
	return mustApply(t, New("s1"),
		URLChanged{URL: testURL},
		InfoRequested{},
		InfoSucceeded{Metadata: metadata([]string{"1080p", "720p"}, []string{"160kbps", "128kbps"})},
	)
}

func TestNew(t *testing.T) {
	s := New("abc")
	want := Session{
		ID:           "abc",
		Format:       FormatVideo,
		VideoQuality: quality.Best,
		AudioQuality: quality.Best,
		Info:         Flow{Status: StatusIdle},
		Debug:        Flow{Status: StatusIdle},
		Download:     Flow{Status: StatusIdle},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("New() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestApply_URLChangedKeepsEverythingElse(t *testing.T) {
	s := loaded(t)
	next := mustApply(t, s, URLChanged{URL: "not a url"})

	want := s
	want.URL = "not a url"
	if diff := cmp.Diff(want, next); diff != "" {
		t.Errorf("URLChanged mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_InfoRequestedRejectsBadURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		reason  string
		message string
	}{
		{"empty", "", ReasonEmptyURL, "Please enter a YouTube URL"},
		{"blank", "   ", ReasonEmptyURL, "Please enter a YouTube URL"},
		{"foreign host", "https://vimeo.com/1", ReasonInvalidURL, "Please enter a valid YouTube URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustApply(t, New("s"), URLChanged{URL: tt.url})
			next, err := Apply(s, InfoRequested{})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.reason, verr.Reason)
			assert.Equal(t, tt.message, next.Error)
			assert.Empty(t, next.Message)
			assert.False(t, next.Info.Busy())
		})
	}
}

func TestApply_DebugRequestedRejectsBadURL(t *testing.T) {
	next, err := Apply(New("s"), DebugRequested{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Please enter a YouTube URL", next.Error)
	assert.False(t, next.Debug.Busy())
}

// Scenario: successful metadata fetch lists tokens and resets both qualities.
func TestApply_InfoSuccessResetsQualities(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s,
		VideoQualitySelected{Token: "720p"},
		AudioQualitySelected{Token: "128kbps"},
		InfoRequested{},
	)
	assert.Equal(t, "Getting video information...", s.Message)
	assert.Equal(t, PhaseFetchingInfo, s.Phase())
	assert.True(t, s.FetchBusy())

	s = mustApply(t, s, InfoSucceeded{Metadata: metadata([]string{"1080p", "720p"}, nil)})
	assert.Equal(t, quality.Best, s.VideoQuality)
	assert.Equal(t, quality.Best, s.AudioQuality)
	assert.Equal(t, "Video information loaded successfully! Available qualities: 1080p, 720p", s.Message)
	assert.Contains(t, s.Message, "1080p")
	assert.Contains(t, s.Message, "720p")
	assert.Empty(t, s.Error)
	assert.Equal(t, PhaseIdle, s.Phase())
}

// Scenario: a failed fetch drops previously loaded metadata.
func TestApply_InfoFailureClearsMetadata(t *testing.T) {
	s := loaded(t)
	require.NotNil(t, s.Metadata)

	s = mustApply(t, s, InfoRequested{})
	require.NotNil(t, s.Metadata, "metadata survives while a refresh is in flight")

	s = mustApply(t, s, InfoFailed{Err: errors.New("unavailable")})
	assert.Nil(t, s.Metadata)
	assert.Equal(t, "unavailable", s.Error)
	assert.Empty(t, s.Message)
	assert.False(t, s.Info.Busy())
}

func TestApply_FailureFallbackMessages(t *testing.T) {
	s := mustApply(t, New("s"), URLChanged{URL: testURL}, InfoRequested{}, InfoFailed{})
	assert.Equal(t, "Failed to get video info", s.Error)

	s = mustApply(t, s, DebugRequested{}, DebugFailed{Err: errors.New("")})
	assert.Equal(t, "Failed to get debug info", s.Error)

	s = loaded(t)
	s = mustApply(t, s, DownloadRequested{}, DownloadFailed{})
	assert.Equal(t, "Download failed", s.Error)
}

func TestApply_DebugSuccess(t *testing.T) {
	s := mustApply(t, New("s"), URLChanged{URL: testURL}, DebugRequested{})
	assert.Equal(t, "Getting debug information...", s.Message)
	assert.Equal(t, PhaseFetchingDebug, s.Phase())
	assert.True(t, s.FetchBusy())

	report := &service.DebugReport{Title: "clip", TotalFormats: 17}
	s = mustApply(t, s, DebugSucceeded{Report: report})
	assert.Equal(t, "Debug info loaded. Found 17 formats.", s.Message)
	assert.Same(t, report, s.DebugReport)
	assert.Nil(t, s.Metadata, "debug does not touch metadata")
	assert.False(t, s.FetchBusy())
}

func TestApply_DebugFailureKeepsMetadata(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s, DebugRequested{}, DebugFailed{Err: errors.New("boom")})
	assert.NotNil(t, s.Metadata)
	assert.Equal(t, "boom", s.Error)
}

func TestApply_FormatSwitchResetsOnlyTargetQuality(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s,
		VideoQualitySelected{Token: "720p"},
		AudioQualitySelected{Token: "128kbps"},
		FormatSelected{Format: FormatAudioOnly},
	)
	assert.Equal(t, FormatAudioOnly, s.Format)
	assert.Equal(t, quality.Best, s.AudioQuality)
	assert.Equal(t, "720p", s.VideoQuality)

	s = mustApply(t, s,
		AudioQualitySelected{Token: "160kbps"},
		FormatSelected{Format: FormatVideo},
	)
	assert.Equal(t, quality.Best, s.VideoQuality)
	assert.Equal(t, "160kbps", s.AudioQuality)
}

func TestApply_FormatUnknownRejected(t *testing.T) {
	s := loaded(t)
	next, err := Apply(s, FormatSelected{Format: "webm"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonUnknownFormat, verr.Reason)
	assert.Equal(t, FormatVideo, next.Format)
}

func TestApply_QualityMustBeOffered(t *testing.T) {
	s := loaded(t)

	next, err := Apply(s, VideoQualitySelected{Token: "4320p"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonUnknownQuality, verr.Reason)
	assert.Equal(t, "Video quality 4320p is not available", next.Error)
	assert.Equal(t, quality.Best, next.VideoQuality)

	_, err = Apply(s, AudioQualitySelected{Token: "1080p"})
	require.ErrorIs(t, err, ErrValidation)

	next = mustApply(t, s, VideoQualitySelected{Token: ""})
	assert.Equal(t, quality.Best, next.VideoQuality)

	// Without metadata only best is offered.
	_, err = Apply(New("s"), VideoQualitySelected{Token: "720p"})
	require.ErrorIs(t, err, ErrValidation)
	next = mustApply(t, New("s"), VideoQualitySelected{Token: quality.Best})
	assert.Equal(t, quality.Best, next.VideoQuality)
}

func TestApply_VideoQualityUncheckedWhileAudioOnly(t *testing.T) {
	s := mustApply(t, loaded(t), FormatSelected{Format: FormatAudioOnly})

	next := mustApply(t, s, VideoQualitySelected{Token: "2160p"})
	assert.Equal(t, "2160p", next.VideoQuality)
	assert.Empty(t, next.Error)
	assert.Equal(t, "mp3", string(next.ArtifactRequest().Format))
	assert.Equal(t, quality.Best, next.ArtifactRequest().Quality)

	// Audio stays checked in either format.
	_, err := Apply(next, AudioQualitySelected{Token: "999kbps"})
	require.ErrorIs(t, err, ErrValidation)

	// Back to video, the unchecked token is discarded.
	next = mustApply(t, next, FormatSelected{Format: FormatVideo})
	assert.Equal(t, quality.Best, next.VideoQuality)
}

func TestApply_DownloadRequiresMetadata(t *testing.T) {
	s := mustApply(t, New("s"), URLChanged{URL: testURL})
	next, err := Apply(s, DownloadRequested{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonNoMetadata, verr.Reason)
	assert.Equal(t, "Please get video information first", next.Error)
	assert.False(t, next.Download.Busy())
}

func TestApply_DownloadLifecycle(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s, DownloadRequested{})
	assert.Equal(t, "Starting MP4 download at best quality...", s.Message)
	assert.Equal(t, 0, s.Progress)
	assert.True(t, s.DownloadBusy())
	assert.False(t, s.FetchBusy(), "download flag is independent")
	assert.Equal(t, PhaseDownloading, s.Phase())

	s = mustApply(t, s, DownloadSucceeded{Descriptor: service.Descriptor{Message: "Download completed successfully!"}})
	assert.Equal(t, 100, s.Progress)
	assert.Equal(t, "Download completed successfully!", s.Message)
	assert.False(t, s.DownloadBusy())

	s = mustApply(t, s, FormatSelected{Format: FormatAudioOnly}, AudioQualitySelected{Token: "128kbps"}, DownloadRequested{})
	assert.Equal(t, "Starting MP3 download at 128kbps quality...", s.Message)
	assert.Equal(t, 0, s.Progress)

	s = mustApply(t, s, DownloadFailed{Err: errors.New("encoder crashed")})
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, "encoder crashed", s.Error)
	assert.Empty(t, s.Message)
}

func TestSession_ArtifactRequestUsesFormatQuality(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s,
		VideoQualitySelected{Token: "720p"},
		FormatSelected{Format: FormatAudioOnly},
		AudioQualitySelected{Token: "160kbps"},
	)
	want := service.ArtifactRequest{URL: testURL, Format: service.FormatMP3, Quality: "160kbps"}
	if diff := cmp.Diff(want, s.ArtifactRequest()); diff != "" {
		t.Errorf("ArtifactRequest mismatch (-want +got):\n%s", diff)
	}

	s = mustApply(t, s, FormatSelected{Format: FormatVideo}, VideoQualitySelected{Token: "720p"})
	assert.Equal(t, "720p", s.ArtifactRequest().Quality)
}

func TestApply_ReentrantRequestsResolveLastWriteWins(t *testing.T) {
	s := mustApply(t, New("s"), URLChanged{URL: testURL}, InfoRequested{}, InfoRequested{})
	assert.Equal(t, Flow{Status: StatusBusy, InFlight: 2}, s.Info)

	first := metadata([]string{"720p"}, nil)
	second := metadata([]string{"1080p"}, nil)

	s = mustApply(t, s, InfoSucceeded{Metadata: first})
	assert.Equal(t, Flow{Status: StatusBusy, InFlight: 1}, s.Info)
	assert.True(t, s.FetchBusy())

	s = mustApply(t, s, InfoSucceeded{Metadata: second})
	assert.Equal(t, Flow{Status: StatusIdle}, s.Info)
	assert.Same(t, second, s.Metadata)
}

func TestApply_StrayOutcomeIsInvalidTransition(t *testing.T) {
	s := loaded(t)
	strays := []Event{
		InfoSucceeded{},
		InfoFailed{},
		DebugSucceeded{},
		DebugFailed{},
		DownloadSucceeded{},
		DownloadFailed{},
	}
	for _, ev := range strays {
		t.Run(ev.Name(), func(t *testing.T) {
			next, err := Apply(s, ev)
			require.ErrorIs(t, err, fsm.ErrInvalidTransition)
			if diff := cmp.Diff(s, next); diff != "" {
				t.Errorf("stray outcome changed the session (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_MessageAndErrorAreExclusive(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s, DebugRequested{}, DebugFailed{Err: errors.New("boom")})
	require.Equal(t, "boom", s.Error)
	require.Empty(t, s.Message)

	s = mustApply(t, s, InfoRequested{})
	assert.Empty(t, s.Error)
	assert.Equal(t, "Getting video information...", s.Message)

	s, err := Apply(s, VideoQualitySelected{Token: "nope"})
	require.Error(t, err)
	assert.Empty(t, s.Message)
	assert.NotEmpty(t, s.Error)
}

func TestApply_OverlappingSubflows(t *testing.T) {
	s := loaded(t)
	s = mustApply(t, s, DownloadRequested{}, InfoRequested{}, DebugRequested{})
	assert.Equal(t, PhaseDownloading, s.Phase())
	assert.True(t, s.Info.Busy())
	assert.True(t, s.Debug.Busy())

	s = mustApply(t, s, DownloadSucceeded{})
	assert.Equal(t, PhaseFetchingInfo, s.Phase())
	s = mustApply(t, s, InfoSucceeded{Metadata: metadata(nil, nil)})
	assert.Equal(t, PhaseFetchingDebug, s.Phase())
	s = mustApply(t, s, DebugSucceeded{})
	assert.Equal(t, PhaseIdle, s.Phase())
}

type bogusEvent struct{}

func (bogusEvent) Name() string { return "bogus" }

func TestApply_UnknownEvent(t *testing.T) {
	s := New("s")
	next, err := Apply(s, bogusEvent{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, s, next)
}

func TestSubflowOf(t *testing.T) {
	assert.Equal(t, SubflowInfo, SubflowOf(InfoFailed{}))
	assert.Equal(t, SubflowDebug, SubflowOf(DebugRequested{}))
	assert.Equal(t, SubflowDownload, SubflowOf(DownloadSucceeded{}))
	assert.Equal(t, Subflow(""), SubflowOf(URLChanged{}))
}
