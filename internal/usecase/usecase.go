package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/montager/internal/config"
	"github.com/forPelevin/montager/internal/domain/edl"
	"github.com/forPelevin/montager/internal/domain/speakers"
	"github.com/forPelevin/montager/internal/domain/subtitles"
	"github.com/forPelevin/montager/internal/domain/voicemap"
	"github.com/forPelevin/montager/internal/ports"
	"github.com/forPelevin/montager/internal/preview"
	"github.com/forPelevin/montager/internal/store"
	"github.com/forPelevin/montager/internal/types"
)

type Deps struct {
	Video ports.VideoTool
	Faces ports.FaceDetector
	Voice ports.VoiceDetector
	Log   logrus.FieldLogger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = l
	}
	return Usecase{d: d}
}

type Input struct {
	InputMP4  string
	Cache     *store.Cache
	Constants config.Constants
}

func (u Usecase) log(in Input) logrus.FieldLogger {
	return u.d.Log.WithField("video", filepath.Base(in.InputMP4))
}

// DetectScene probes the video, clusters face observations into speakers and
// caches the scene.
func (u Usecase) DetectScene(ctx context.Context, in Input) (types.SceneData, error) {
	log := u.log(in)

	info, err := u.d.Video.Probe(ctx, in.InputMP4)
	if err != nil {
		return types.SceneData{}, err
	}
	faces, err := u.d.Faces.DetectFaces(ctx, in.InputMP4)
	if err != nil {
		return types.SceneData{}, err
	}
	log.WithField("faces", len(faces)).Debug("face observations loaded")

	scene := types.SceneData{
		VideoPath: in.InputMP4,
		Width:     info.Width,
		Height:    info.Height,
		FPS:       info.FPS,
		Duration:  info.Duration,
		Speakers:  speakers.Resolve(faces, info.Width, info.Height, in.Constants.Speakers()),
	}
	if len(scene.Speakers) == 0 {
		log.Warn(speakers.ErrEmptyScene.Error())
	}

	path, err := in.Cache.SaveScene(scene)
	if err != nil {
		return types.SceneData{}, fmt.Errorf("save scene: %w", err)
	}
	log.WithFields(logrus.Fields{"speakers": len(scene.Speakers), "path": path}).Info("scene saved")
	return scene, nil
}

// DetectVoiceMap extracts audio, runs voice detection and maps the voices to
// the scene speakers. The scene is detected first when it is not cached.
func (u Usecase) DetectVoiceMap(ctx context.Context, in Input) (types.VoiceMapData, error) {
	log := u.log(in)

	scene, err := u.scene(ctx, in)
	if err != nil {
		return types.VoiceMapData{}, err
	}

	wav := filepath.Join(in.Cache.Dir(), "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputMP4, wav); err != nil {
		return types.VoiceMapData{}, err
	}
	raw, err := u.d.Voice.DetectVoice(ctx, wav, in.Cache.Dir())
	if err != nil {
		return types.VoiceMapData{}, err
	}
	log.WithField("intervals", len(raw)).Debug("speech detected")

	vm := types.VoiceMapData{
		VideoPath: in.InputMP4,
		Segments:  voicemap.MapSpeakers(raw, scene.Speakers),
	}
	path, err := in.Cache.SaveVoiceMap(vm)
	if err != nil {
		return types.VoiceMapData{}, fmt.Errorf("save voice map: %w", err)
	}
	log.WithFields(logrus.Fields{"segments": len(vm.Segments), "path": path}).Info("voice map saved")
	return vm, nil
}

// BuildEDL recomputes the edit decision list from the cached artifacts,
// running any missing detection stage first.
func (u Usecase) BuildEDL(ctx context.Context, in Input) (types.SceneData, types.EDL, error) {
	scene, err := u.scene(ctx, in)
	if err != nil {
		return types.SceneData{}, nil, err
	}
	vm, ok, err := in.Cache.LoadVoiceMap()
	if err != nil {
		return types.SceneData{}, nil, err
	}
	if !ok {
		u.log(in).Info("voice map not cached, running voice detection")
		if vm, err = u.DetectVoiceMap(ctx, in); err != nil {
			return types.SceneData{}, nil, err
		}
	}

	list, err := edl.Generate(scene, vm, in.Constants.Timeline())
	var unresolved *edl.UnresolvedSpeakerError
	if errors.As(err, &unresolved) {
		return types.SceneData{}, nil, fmt.Errorf("%w (scene and voice map do not match; re-run voicemap detection)", err)
	}
	if err != nil {
		return types.SceneData{}, nil, err
	}
	u.log(in).WithField("decisions", len(list)).Info("edit decision list built")
	return scene, list, nil
}

// Preview writes the HTML preview into the cache and returns its path.
func (u Usecase) Preview(ctx context.Context, in Input) (string, error) {
	scene, list, err := u.BuildEDL(ctx, in)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(in.InputMP4)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := preview.Render(&buf, abs, scene, list); err != nil {
		return "", err
	}
	path := in.Cache.Path("preview.html")
	if err := store.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	u.log(in).WithField("path", path).Info("preview saved")
	return path, nil
}

type RenderOptions struct {
	// OutMP4 defaults to <stem>_montage.mp4 next to the input.
	OutMP4 string
	// Labels burns speaker names as lower thirds.
	Labels bool
}

// Render builds the EDL and renders the montage.
func (u Usecase) Render(ctx context.Context, in Input, opts RenderOptions) (string, error) {
	scene, list, err := u.BuildEDL(ctx, in)
	if err != nil {
		return "", err
	}

	out := opts.OutMP4
	if out == "" {
		out = MontagePath(in.InputMP4)
	}

	var assPath string
	if opts.Labels {
		assPath = in.Cache.Path("labels.ass")
		ass := subtitles.RenderSpeakerLabels(list, scene.Speakers, in.Constants.OutputWidth, in.Constants.OutputHeight)
		if err := store.WriteFileAtomic(assPath, []byte(ass)); err != nil {
			return "", err
		}
	}

	u.log(in).WithField("path", out).Info("rendering montage")
	err = u.d.Video.RenderMontage(ctx, in.InputMP4, list, scene.Speakers,
		in.Constants.OutputWidth, in.Constants.OutputHeight, out, assPath)
	if err != nil {
		return "", err
	}
	return out, nil
}

func MontagePath(inputMP4 string) string {
	ext := filepath.Ext(inputMP4)
	return strings.TrimSuffix(inputMP4, ext) + "_montage.mp4"
}

func (u Usecase) scene(ctx context.Context, in Input) (types.SceneData, error) {
	scene, ok, err := in.Cache.LoadScene()
	if err != nil {
		return types.SceneData{}, err
	}
	if ok {
		return scene, nil
	}
	u.log(in).Info("scene not cached, running scene detection")
	return u.DetectScene(ctx, in)
}
