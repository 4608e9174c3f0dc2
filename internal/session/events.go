package session

import (
	"github.com/ManuGH/vidfetch/internal/service"
)

// Event is an input to Apply: a user intent or the outcome of a remote call.
type Event interface {
	// Name is a stable identifier used in logs and metrics.
	Name() string
}

// User intents.
type (
	URLChanged           struct{ URL string }
	FormatSelected       struct{ Format Format }
	VideoQualitySelected struct{ Token string }
	AudioQualitySelected struct{ Token string }
	InfoRequested        struct{}
	DebugRequested       struct{}
	DownloadRequested    struct{}
)

// Remote outcomes.
type (
	InfoSucceeded     struct{ Metadata *service.VideoMetadata }
	InfoFailed        struct{ Err error }
	DebugSucceeded    struct{ Report *service.DebugReport }
	DebugFailed       struct{ Err error }
	DownloadSucceeded struct{ Descriptor service.Descriptor }
	DownloadFailed    struct{ Err error }
)

func (URLChanged) Name() string           { return "url_changed" }
func (FormatSelected) Name() string       { return "format_selected" }
func (VideoQualitySelected) Name() string { return "video_quality_selected" }
func (AudioQualitySelected) Name() string { return "audio_quality_selected" }
func (InfoRequested) Name() string        { return "info_requested" }
func (DebugRequested) Name() string       { return "debug_requested" }
func (DownloadRequested) Name() string    { return "download_requested" }
func (InfoSucceeded) Name() string        { return "info_succeeded" }
func (InfoFailed) Name() string           { return "info_failed" }
func (DebugSucceeded) Name() string       { return "debug_succeeded" }
func (DebugFailed) Name() string          { return "debug_failed" }
func (DownloadSucceeded) Name() string    { return "download_succeeded" }
func (DownloadFailed) Name() string       { return "download_failed" }

// SubflowOf returns the sub-flow an event belongs to, or "" for selection
// events that touch no sub-flow.
func SubflowOf(ev Event) Subflow {
	switch ev.(type) {
	case InfoRequested, InfoSucceeded, InfoFailed:
		return SubflowInfo
	case DebugRequested, DebugSucceeded, DebugFailed:
		return SubflowDebug
	case DownloadRequested, DownloadSucceeded, DownloadFailed:
		return SubflowDownload
	default:
		return ""
	}
}
