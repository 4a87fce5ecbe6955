package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/montager/internal/types"
)

func TestFilterGraph(t *testing.T) {
	edl := types.EDL{
		{Start: 0, End: 0.5, SpeakerID: types.Wide},
		{Start: 0.5, End: 5, SpeakerID: "speaker_1"},
		{Start: 5, End: 10, SpeakerID: types.Wide},
	}
	speakers := []types.Speaker{
		{ID: "speaker_1", CropRect: types.Rect{X: 10, Y: 20, W: 1920, H: 1080}},
		{ID: "speaker_2", CropRect: types.Rect{X: 1900, Y: 20, W: 1920, H: 1080}},
	}

	got := filterGraph(edl, speakers, 1920, 1080, "")
	parts := strings.Split(got, ";")

	assert.Equal(t, []string{
		"[0:v]scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:-1:-1,setsar=1,split=2[wide_0][wide_1]",
		"[0:v]crop=1920:1080:10:20,scale=1920:1080,setsar=1,split=1[speaker_1_0]",
		"[wide_0]trim=start=0.000:end=0.500,setpts=PTS-STARTPTS[seg0]",
		"[speaker_1_0]trim=start=0.500:end=5.000,setpts=PTS-STARTPTS[seg1]",
		"[wide_1]trim=start=5.000:end=10.000,setpts=PTS-STARTPTS[seg2]",
		"[seg0][seg1][seg2]concat=n=3:v=1:a=0[outv]",
	}, parts)
}

func TestFilterGraph_BurnsLabels(t *testing.T) {
	edl := types.EDL{{Start: 0, End: 3, SpeakerID: types.Wide}}
	got := filterGraph(edl, nil, 1280, 720, "/tmp/c:d/labels.ass")
	assert.True(t, strings.HasSuffix(got, "concat=n=1:v=1:a=0[cat];[cat]subtitles=/tmp/c\\:d/labels.ass[outv]"), got)
}

func TestParseProbe(t *testing.T) {
	out := `{
	  "streams": [
	    {"codec_type": "audio"},
	    {"codec_type": "video", "width": 3840, "height": 2160, "r_frame_rate": "30000/1001"}
	  ],
	  "format": {"duration": "125.480000"}
	}`
	info, err := parseProbe([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 3840, info.Width)
	assert.Equal(t, 2160, info.Height)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.Equal(t, 125.48, info.Duration)
}

func TestParseProbe_NoVideo(t *testing.T) {
	_, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"1"}}`))
	require.Error(t, err)
}

func TestParseRate(t *testing.T) {
	for in, want := range map[string]float64{"25": 25, "50/2": 25, " 24/1 ": 24} {
		got, err := parseRate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseRate("30/0")
	require.Error(t, err)
}
