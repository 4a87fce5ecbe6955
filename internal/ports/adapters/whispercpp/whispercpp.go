package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/montager/internal/types"
)

type Adapter struct {
	bin   string
	model string
	// Diarize enables tinydiarize speaker turn detection (-tdrz). It needs
	// a tdrz model; without it every interval gets the same label.
	Diarize bool
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, Diarize: true}
}

func (a *Adapter) DetectVoice(ctx context.Context, wavPath, cacheDir string) ([]types.LabeledSegment, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	if a.Diarize {
		args = append(args, "-tdrz")
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, err
	}
	return parseOutput(jb)
}

type output struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text            string `json:"text"`
		SpeakerTurnNext bool   `json:"speaker_turn_next"`
	} `json:"transcription"`
}

// parseOutput converts whisper.cpp JSON into speech intervals. Offsets are
// milliseconds; a speaker_turn_next flag switches the label for the
// following interval.
func parseOutput(b []byte) ([]types.LabeledSegment, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode whisper.cpp output: %w", err)
	}

	voice := 0
	var segs []types.LabeledSegment
	for _, t := range out.Transcription {
		turn := t.SpeakerTurnNext
		if t.Offsets.To > t.Offsets.From && strings.TrimSpace(t.Text) != "" {
			segs = append(segs, types.LabeledSegment{
				Start: float64(t.Offsets.From) / 1000,
				End:   float64(t.Offsets.To) / 1000,
				Label: fmt.Sprintf("SPEAKER_%02d", voice),
			})
		}
		if turn {
			voice = 1 - voice
		}
	}
	return segs, nil
}
