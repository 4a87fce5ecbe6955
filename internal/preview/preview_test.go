package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/montager/internal/types"
)

func TestRender(t *testing.T) {
	scene := types.SceneData{
		Width: 1920, Height: 1080, Duration: 10,
		Speakers: []types.Speaker{{ID: "speaker_1", Name: "Speaker <1>"}},
	}
	edl := types.EDL{
		{Start: 0, End: 4, SpeakerID: types.Wide, CropRect: types.Rect{W: 1920, H: 1080}},
		{Start: 4, End: 10, SpeakerID: "speaker_1", CropRect: types.Rect{X: 100, W: 1152, H: 648}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "/videos/my talk.mp4", scene, edl))
	html := buf.String()

	assert.Contains(t, html, "<title>Montager Preview - my talk.mp4</title>")
	assert.Contains(t, html, `src="file:///videos/my%20talk.mp4"`)
	assert.Contains(t, html, `"speaker_id":"speaker_1"`)
	assert.Contains(t, html, `"crop_rect":{"x":100,"y":0,"w":1152,"h":648}`)
	assert.Contains(t, html, "Speaker &lt;1&gt;")
	assert.NotContains(t, html, "ZgotmplZ")
}

func TestRender_EmptyEDL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "/v.mp4", types.SceneData{Width: 1, Height: 1, Duration: 1}, nil))
	assert.Contains(t, buf.String(), "const decisions = [];")
}
