package ports

import (
	"context"

	"github.com/forPelevin/montager/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	Probe(ctx context.Context, inMP4 string) (types.VideoInfo, error)
	RenderMontage(
		ctx context.Context,
		inMP4 string,
		edl types.EDL,
		speakers []types.Speaker,
		outW, outH int,
		outMP4 string,
		burnASS string,
	) error
}

// FaceDetector supplies raw face boxes sampled from the video frames.
type FaceDetector interface {
	DetectFaces(ctx context.Context, inMP4 string) ([]types.Face, error)
}

// VoiceDetector supplies raw speech intervals labelled per diarized voice.
type VoiceDetector interface {
	DetectVoice(ctx context.Context, wavPath, cacheDir string) ([]types.LabeledSegment, error)
}
