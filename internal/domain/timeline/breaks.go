package timeline

import "github.com/forPelevin/montager/internal/types"

// InsertBreaks cuts away to wide for breakDur seconds every interval seconds
// inside attributable segments lasting at least threshold. A break is only
// placed when more than breakDur seconds remain before the segment end, so
// the tail always stays with the speaker. interval must exceed breakDur.
func InsertBreaks(segs []types.Segment, threshold, interval, breakDur float64) []types.Segment {
	out := make([]types.Segment, 0, len(segs))
	for _, s := range segs {
		if s.IsWide() || s.Duration() < threshold || interval <= breakDur {
			out = append(out, s)
			continue
		}

		cur := s.Start
		for k := 1; ; k++ {
			// multiply rather than accumulate so positions do not drift
			b := s.Start + float64(k)*interval
			if s.End-b <= breakDur {
				break
			}
			out = append(out,
				types.Segment{Start: cur, End: b, SpeakerID: s.SpeakerID},
				wide(b, b+breakDur),
			)
			cur = b + breakDur
		}
		out = append(out, types.Segment{Start: cur, End: s.End, SpeakerID: s.SpeakerID})
	}
	return out
}
