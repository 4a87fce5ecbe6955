package subtitles

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/montager/internal/types"
)

// RenderSpeakerLabels builds an ASS script that shows the active speaker's
// name as a lower third for every close-up decision. Wide decisions get no
// label. Consecutive decisions for the same speaker share one event.
func RenderSpeakerLabels(edl types.EDL, speakers []types.Speaker, outW, outH int) string {
	names := make(map[string]string, len(speakers))
	for _, sp := range speakers {
		names[sp.ID] = sp.Name
	}

	var events []event
	for _, d := range edl {
		name, ok := names[d.SpeakerID]
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		start, end := dur(d.Start), dur(d.End)
		if n := len(events); n > 0 && events[n-1].Text == name && events[n-1].End == start {
			events[n-1].End = end
			continue
		}
		events = append(events, event{Start: start, End: end, Text: name})
	}
	return renderASS(events, outW, outH)
}

type event struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

func renderASS(events []event, outW, outH int) string {
	var b strings.Builder
	b.WriteString(assHeader(outW, outH))
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, e := range events {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(e.Start))
		b.WriteString(",")
		b.WriteString(assTime(e.End))
		b.WriteString(",LowerThird,,0,0,0,,")
		b.WriteString(sanitizeASS(e.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func assHeader(outW, outH int) string {
	// Font size and margins scale with output height (tuned at 1080p).
	size := outH * 54 / 1080
	margin := outH * 60 / 1080
	return strings.TrimSpace(fmt.Sprintf(`
[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: LowerThird, Inter, %d, &H00FFFFFF, &H00FFFFFF, &H00000000, &H96000000, 1,0,0,0,100,100,0,0,3,2,0,1, %d,%d,%d,1
`, outW, outH, size, margin, margin, margin))
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
