package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/montager/internal/config"
	"github.com/forPelevin/montager/internal/domain/edl"
	"github.com/forPelevin/montager/internal/store"
	"github.com/forPelevin/montager/internal/types"
)

type fakeVideoTool struct {
	info        types.VideoInfo
	extracted   []string
	renders     int
	renderEDL   types.EDL
	renderOut   string
	renderLabel string
}

func (f *fakeVideoTool) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	f.extracted = append(f.extracted, outWav)
	return nil
}

func (f *fakeVideoTool) Probe(_ context.Context, _ string) (types.VideoInfo, error) {
	return f.info, nil
}

func (f *fakeVideoTool) RenderMontage(
	_ context.Context,
	_ string,
	list types.EDL,
	_ []types.Speaker,
	_, _ int,
	outMP4 string,
	burnASS string,
) error {
	f.renders++
	f.renderEDL = list
	f.renderOut = outMP4
	f.renderLabel = burnASS
	return nil
}

type fakeFaces struct {
	faces []types.Face
	calls int
}

func (f *fakeFaces) DetectFaces(_ context.Context, _ string) ([]types.Face, error) {
	f.calls++
	return f.faces, nil
}

type fakeVoice struct {
	segs  []types.LabeledSegment
	err   error
	calls int
}

func (f *fakeVoice) DetectVoice(_ context.Context, _, _ string) ([]types.LabeledSegment, error) {
	f.calls++
	return f.segs, f.err
}

func face(cx int) types.Face {
	return types.Face{BBox: types.Rect{X: cx - 50, Y: 500, W: 100, H: 120}}
}

type fixture struct {
	uc    Usecase
	video *fakeVideoTool
	faces *fakeFaces
	voice *fakeVoice
	hook  *logtest.Hook
	in    Input
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tmp := t.TempDir()
	mp4 := filepath.Join(tmp, "panel.mp4")
	require.NoError(t, os.WriteFile(mp4, []byte("fake"), 0o644))
	cache, err := store.Open(filepath.Join(tmp, "cache"), mp4)
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		video: &fakeVideoTool{info: types.VideoInfo{Width: 3840, Height: 2160, FPS: 25, Duration: 10}},
		faces: &fakeFaces{faces: []types.Face{
			face(1000), face(1010), face(1020),
			face(2900), face(2920), face(2940),
		}},
		voice: &fakeVoice{segs: []types.LabeledSegment{
			{Start: 0.5, End: 3.2, Label: "SPEAKER_00"},
			{Start: 5.0, End: 8.5, Label: "SPEAKER_01"},
		}},
		hook: hook,
		in:   Input{InputMP4: mp4, Cache: cache, Constants: config.Defaults()},
	}
	f.uc = New(Deps{Video: f.video, Faces: f.faces, Voice: f.voice, Log: logger})
	return f
}

func TestDetectScene(t *testing.T) {
	f := newFixture(t)

	scene, err := f.uc.DetectScene(context.Background(), f.in)
	require.NoError(t, err)
	require.Len(t, scene.Speakers, 2)
	assert.Equal(t, "speaker_1", scene.Speakers[0].ID)
	assert.Equal(t, 3840, scene.Width)
	assert.Equal(t, 10.0, scene.Duration)

	cached, ok, err := f.in.Cache.LoadScene()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, scene, cached)
}

func TestDetectScene_EmptySceneWarns(t *testing.T) {
	f := newFixture(t)
	f.faces.faces = nil

	scene, err := f.uc.DetectScene(context.Background(), f.in)
	require.NoError(t, err)
	assert.Empty(t, scene.Speakers)

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected an empty scene warning")
}

func TestBuildEDL_RunsMissingStagesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, list, err := f.uc.BuildEDL(ctx, f.in)
	require.NoError(t, err)

	require.Len(t, list, 3)
	assert.Equal(t, types.Decision{Start: 0, End: 0.5, SpeakerID: types.Wide, CropRect: types.Rect{W: 3840, H: 2160}}, list[0])
	assert.Equal(t, "speaker_1", list[1].SpeakerID)
	assert.Equal(t, 0.5, list[1].Start)
	assert.Equal(t, 5.0, list[1].End)
	assert.Equal(t, "speaker_2", list[2].SpeakerID)
	assert.Equal(t, 10.0, list[2].End)
	assert.Equal(t, 1920, list[1].CropRect.W)

	_, again, err := f.uc.BuildEDL(ctx, f.in)
	require.NoError(t, err)
	assert.Equal(t, list, again)
	assert.Equal(t, 1, f.faces.calls)
	assert.Equal(t, 1, f.voice.calls)
	assert.Len(t, f.video.extracted, 1)
}

func TestBuildEDL_UnresolvedSpeaker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.DetectScene(ctx, f.in)
	require.NoError(t, err)
	_, err = f.in.Cache.SaveVoiceMap(types.VoiceMapData{Segments: []types.Segment{
		{Start: 1, End: 6, SpeakerID: "speaker_7"},
	}})
	require.NoError(t, err)

	_, _, err = f.uc.BuildEDL(ctx, f.in)
	var unresolved *edl.UnresolvedSpeakerError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "speaker_7", unresolved.SpeakerID)
}

func TestBuildEDL_VoiceFailure(t *testing.T) {
	f := newFixture(t)
	f.voice.err = errors.New("boom")

	_, _, err := f.uc.BuildEDL(context.Background(), f.in)
	require.ErrorContains(t, err, "boom")
	_, ok, _ := f.in.Cache.LoadVoiceMap()
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)

	path, err := f.uc.Preview(context.Background(), f.in)
	require.NoError(t, err)
	assert.Equal(t, f.in.Cache.Path("preview.html"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "panel.mp4")
}

func TestRender_LabelsToggle(t *testing.T) {
	cases := []struct {
		name   string
		labels bool
	}{
		{name: "disabled", labels: false},
		{name: "enabled", labels: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			out, err := f.uc.Render(context.Background(), f.in, RenderOptions{Labels: tc.labels})
			require.NoError(t, err)
			assert.Equal(t, MontagePath(f.in.InputMP4), out)
			assert.Equal(t, out, f.video.renderOut)
			assert.Equal(t, 1, f.video.renders)
			assert.Len(t, f.video.renderEDL, 3)

			if !tc.labels {
				assert.Empty(t, f.video.renderLabel)
				assert.NoFileExists(t, f.in.Cache.Path("labels.ass"))
				return
			}
			assert.Equal(t, f.in.Cache.Path("labels.ass"), f.video.renderLabel)
			b, err := os.ReadFile(f.video.renderLabel)
			require.NoError(t, err)
			assert.Contains(t, string(b), "Speaker 1")
		})
	}
}

func TestMontagePath(t *testing.T) {
	assert.Equal(t, "/v/talk_montage.mp4", MontagePath("/v/talk.mov"))
	assert.Equal(t, "talk_montage.mp4", MontagePath("talk"))
}
