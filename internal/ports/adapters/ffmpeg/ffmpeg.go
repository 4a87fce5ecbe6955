package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/montager/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMP4,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) RenderMontage(
	ctx context.Context,
	inMP4 string,
	edl types.EDL,
	speakers []types.Speaker,
	outW, outH int,
	outMP4 string,
	burnASS string,
) error {
	if len(edl) == 0 {
		return fmt.Errorf("ffmpeg render montage: empty edl")
	}
	args := []string{
		"-y",
		"-i", inMP4,
		"-filter_complex", filterGraph(edl, speakers, outW, outH, burnASS),
		"-map", "[outv]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outMP4,
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render montage: %w\n%s", err, tail(string(b), 2000))
	}
	return nil
}

func (a *Adapter) Probe(ctx context.Context, inMP4 string) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		inMP4,
	)
	b, err := cmd.Output()
	if err != nil {
		return types.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(b)
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(b []byte) (types.VideoInfo, error) {
	var p probeOutput
	if err := json.Unmarshal(b, &p); err != nil {
		return types.VideoInfo{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	for _, s := range p.Streams {
		if s.CodecType != "video" {
			continue
		}
		fps, err := parseRate(s.RFrameRate)
		if err != nil {
			return types.VideoInfo{}, err
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(p.Format.Duration), 64)
		if err != nil {
			return types.VideoInfo{}, fmt.Errorf("parse duration %q: %w", p.Format.Duration, err)
		}
		return types.VideoInfo{Width: s.Width, Height: s.Height, FPS: fps, Duration: d}, nil
	}
	return types.VideoInfo{}, fmt.Errorf("ffprobe: no video stream")
}

// parseRate reads ffprobe rates such as "30000/1001" or "25".
func parseRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("parse frame rate %q: bad denominator", s)
	}
	return n / d, nil
}

// filterGraph splits the input into one wide and one cropped stream per
// speaker, trims each decision from its stream and concatenates them.
// Only views that appear in the edl are built; ffmpeg rejects unconnected
// output pads.
func filterGraph(edl types.EDL, speakers []types.Speaker, outW, outH int, burnASS string) string {
	crops := make(map[string]types.Rect, len(speakers))
	for _, sp := range speakers {
		crops[sp.ID] = sp.CropRect
	}
	viewOf := func(d types.Decision) string {
		if _, ok := crops[d.SpeakerID]; ok {
			return d.SpeakerID
		}
		return types.Wide
	}

	uses := map[string]int{}
	for _, d := range edl {
		uses[viewOf(d)]++
	}

	var parts []string
	source := func(view, chain string) {
		n := uses[view]
		if n == 0 {
			return
		}
		var outs strings.Builder
		for k := 0; k < n; k++ {
			fmt.Fprintf(&outs, "[%s_%d]", view, k)
		}
		parts = append(parts, fmt.Sprintf("[0:v]%s,split=%d%s", chain, n, outs.String()))
	}
	source(types.Wide, fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:-1:-1,setsar=1",
		outW, outH, outW, outH))
	for _, sp := range speakers {
		r := sp.CropRect
		source(sp.ID, fmt.Sprintf("crop=%d:%d:%d:%d,scale=%d:%d,setsar=1", r.W, r.H, r.X, r.Y, outW, outH))
	}

	next := map[string]int{}
	var segs strings.Builder
	for i, d := range edl {
		v := viewOf(d)
		k := next[v]
		next[v]++
		parts = append(parts, fmt.Sprintf("[%s_%d]trim=start=%s:end=%s,setpts=PTS-STARTPTS[seg%d]",
			v, k, fmtSeconds(d.Start), fmtSeconds(d.End), i))
		fmt.Fprintf(&segs, "[seg%d]", i)
	}

	if burnASS == "" {
		parts = append(parts, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[outv]", segs.String(), len(edl)))
	} else {
		parts = append(parts,
			fmt.Sprintf("%sconcat=n=%d:v=1:a=0[cat]", segs.String(), len(edl)),
			fmt.Sprintf("[cat]subtitles=%s[outv]", escapeFilterPath(burnASS)),
		)
	}
	return strings.Join(parts, ";")
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
