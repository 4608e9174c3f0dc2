package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt_AcceptsNumbersAndStrings(t *testing.T) {
	var md VideoMetadata
	raw := `{"title":"t","duration":"213","viewCount":1234567,"availableQualities":{"video":["720p"],"audio":[]}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &md))
	assert.Equal(t, int64(213), md.DurationSeconds())
	assert.Equal(t, int64(1234567), md.Views())

	md = VideoMetadata{}
	require.NoError(t, json.Unmarshal([]byte(`{"viewCount":"lots","duration":null}`), &md))
	assert.Equal(t, int64(0), md.Views())
	assert.Nil(t, md.Duration)
}

func TestFormatEntry_Label(t *testing.T) {
	assert.Equal(t, "1080p60", FormatEntry{Quality: "hd1080", QualityLabel: "1080p60"}.Label())
	assert.Equal(t, "tiny", FormatEntry{Quality: "tiny"}.Label())
}

func TestDebugReport_ContentLengthAsString(t *testing.T) {
	var r DebugReport
	raw := `{"title":"t","totalFormats":1,"formats":[{"itag":18,"container":"mp4","quality":"medium","hasVideo":true,"hasAudio":true,"contentLength":"1048576"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.Len(t, r.Formats, 1)
	require.NotNil(t, r.Formats[0].ContentLength)
	assert.Equal(t, Int(1048576), *r.Formats[0].ContentLength)
	assert.Nil(t, r.Formats[0].Height)
}

func TestFormatValid(t *testing.T) {
	assert.True(t, FormatMP4.Valid())
	assert.True(t, FormatMP3.Valid())
	assert.False(t, Format("webm").Valid())
}
