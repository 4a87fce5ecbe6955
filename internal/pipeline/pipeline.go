package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/forPelevin/montager/internal/config"
	"github.com/forPelevin/montager/internal/ports"
	"github.com/forPelevin/montager/internal/ports/adapters/facefile"
	"github.com/forPelevin/montager/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/montager/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/montager/internal/store"
	"github.com/forPelevin/montager/internal/types"
	"github.com/forPelevin/montager/internal/usecase"
)

type Command string

const (
	DetectScene    Command = "scene"
	DetectVoiceMap Command = "voicemap"
	BuildEDL       Command = "edl"
	Preview        Command = "preview"
	Render         Command = "render"
)

type Config struct {
	InputMP4 string
	// OutMP4 is the render target; empty means <stem>_montage.mp4.
	OutMP4 string
	Labels bool
	Log    logrus.FieldLogger

	// CacheDir is the base directory for per-video artifacts (scene, voice
	// map, preview). If empty, defaults to $TMPDIR/montager.
	CacheDir string
	// FacesPath holds face observations from the external detector. If
	// empty, a <stem>.faces.yaml/.json sidecar next to the input is used.
	FacesPath string

	FFmpegPath  string
	FFprobePath string

	WhisperBin     string
	WhisperModel   string
	WhisperDiarize bool

	Constants config.Constants
}

func (c Config) Validate() error {
	if c.InputMP4 == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputMP4); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	return c.Constants.Validate()
}

func (c Config) validateWhisper() error {
	if c.WhisperBin == "" {
		return fmt.Errorf("whisper binary path is required")
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	return nil
}

type Result struct {
	Scene types.SceneData
	Voice types.VoiceMapData
	EDL   types.EDL
	// Path is the artifact written by the command, if any.
	Path string
}

func Run(ctx context.Context, cfg Config, cmd Command) (Result, error) {
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	cache, err := store.Open(cacheBase(cfg.CacheDir), cfg.InputMP4)
	if err != nil {
		return Result{}, err
	}
	log.WithField("cache", cache.Dir()).Debug("cache ready")

	// adapters
	whisper := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	whisper.Diarize = cfg.WhisperDiarize
	uc := usecase.New(usecase.Deps{
		Video: ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Faces: facefile.New(cfg.FacesPath),
		Voice: whisper,
		Log:   log,
	})

	in := usecase.Input{InputMP4: cfg.InputMP4, Cache: cache, Constants: cfg.Constants}
	if needsVoice(cmd, cache) {
		if err := cfg.validateWhisper(); err != nil {
			return Result{}, fmt.Errorf("config: %w", err)
		}
	}

	var res Result
	switch cmd {
	case DetectScene:
		res.Scene, err = uc.DetectScene(ctx, in)
		res.Path = cache.Path("scene.json")
	case DetectVoiceMap:
		res.Voice, err = uc.DetectVoiceMap(ctx, in)
		res.Path = cache.Path("voicemap.json")
	case BuildEDL:
		res.Scene, res.EDL, err = uc.BuildEDL(ctx, in)
	case Preview:
		res.Path, err = uc.Preview(ctx, in)
	case Render:
		res.Path, err = uc.Render(ctx, in, usecase.RenderOptions{OutMP4: cfg.OutMP4, Labels: cfg.Labels})
	default:
		return Result{}, fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func cacheBase(dir string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "montager")
}

// needsVoice reports whether cmd may run voice detection, so whisper
// settings are only required when they will be used.
func needsVoice(cmd Command, cache *store.Cache) bool {
	switch cmd {
	case DetectVoiceMap:
		return true
	case BuildEDL, Preview, Render:
		_, ok, err := cache.LoadVoiceMap()
		return err != nil || !ok
	}
	return false
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.FaceDetector = (*facefile.Adapter)(nil)
var _ ports.VoiceDetector = (*whispercpp.Adapter)(nil)
