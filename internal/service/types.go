// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package service

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Format is the container family requested from the service.
type Format string

const (
	FormatMP4 Format = "mp4" // muxed video + audio
	FormatMP3 Format = "mp3" // audio only
)

// Valid reports whether f is a known container family.
func (f Format) Valid() bool {
	return f == FormatMP4 || f == FormatMP3
}

// AvailableQualities lists the tokens offered for one video, in service order.
type AvailableQualities struct {
	Video []string `json:"video"`
	Audio []string `json:"audio"`
}

// VideoMetadata is the reply of a metadata fetch.
type VideoMetadata struct {
	Title              string             `json:"title"`
	Author             string             `json:"author"`
	Duration           *Int               `json:"duration,omitempty"` // seconds
	ViewCount          *Int               `json:"viewCount,omitempty"`
	PublishDate        string             `json:"publishDate"`
	Thumbnail          string             `json:"thumbnail"`
	Description        string             `json:"description"`
	AvailableQualities AvailableQualities `json:"availableQualities"`
}

// DurationSeconds returns the duration, or 0 when the service did not report one.
func (m *VideoMetadata) DurationSeconds() int64 {
	if m == nil || m.Duration == nil {
		return 0
	}
	return int64(*m.Duration)
}

// Views returns the view count, or 0 when the service did not report one.
func (m *VideoMetadata) Views() int64 {
	if m == nil || m.ViewCount == nil {
		return 0
	}
	return int64(*m.ViewCount)
}

// Int is an integer that the service may encode either as a JSON number or as
// a numeric string. Non-numeric strings decode to zero.
type Int int64

func (n *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Int(v)
		return nil
	}
	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i, err := v.Int64()
	if err != nil {
		f, ferr := v.Float64()
		if ferr != nil {
			return err
		}
		i = int64(f)
	}
	*n = Int(i)
	return nil
}

// FormatEntry is one raw rendition in a debug report.
type FormatEntry struct {
	Itag          int    `json:"itag"`
	Container     string `json:"container"`
	Quality       string `json:"quality,omitempty"`
	QualityLabel  string `json:"qualityLabel,omitempty"`
	Height        *int   `json:"height,omitempty"`
	FPS           *int   `json:"fps,omitempty"`
	HasVideo      bool   `json:"hasVideo"`
	HasAudio      bool   `json:"hasAudio"`
	AudioBitrate  *int   `json:"audioBitrate,omitempty"`
	ContentLength *Int   `json:"contentLength,omitempty"` // bytes
}

// Label prefers the human quality label over the coarse quality name.
func (f FormatEntry) Label() string {
	if f.QualityLabel != "" {
		return f.QualityLabel
	}
	return f.Quality
}

// DebugReport is the reply of a debug fetch.
type DebugReport struct {
	Title        string        `json:"title"`
	TotalFormats int           `json:"totalFormats"`
	Formats      []FormatEntry `json:"formats"`
}

// ArtifactRequest asks the service to produce a file.
type ArtifactRequest struct {
	URL     string `json:"url"`
	Format  Format `json:"format"`
	Quality string `json:"quality"`
}

// Descriptor tells the caller where the produced file can be fetched.
// DownloadURL is relative to the file-serving origin.
type Descriptor struct {
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}
