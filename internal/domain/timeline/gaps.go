package timeline

import "github.com/forPelevin/montager/internal/types"

// FillGaps covers [0, duration) in one left-to-right pass:
//   - the lead-in before the first segment is always wide
//   - a gap shorter than shortGap extends the previous segment
//   - any other gap becomes a wide segment spanning it exactly
//
// Input must be sorted and non-overlapping. Segments past duration are
// clipped to the timeline.
func FillGaps(segs []types.Segment, duration, shortGap float64) []types.Segment {
	if duration <= 0 {
		return nil
	}

	out := make([]types.Segment, 0, len(segs)+2)
	cursor := 0.0
	for _, s := range segs {
		if s.Start >= duration {
			break
		}
		if s.End > duration {
			s.End = duration
		}

		if gap := s.Start - cursor; gap > 0 {
			switch {
			case len(out) == 0:
				out = append(out, wide(0, s.Start))
			case gap < shortGap:
				out[len(out)-1].End = s.Start
			default:
				out = append(out, wide(cursor, s.Start))
			}
		}
		out = append(out, s)
		cursor = s.End
	}

	if gap := duration - cursor; gap > 0 {
		switch {
		case len(out) == 0:
			out = append(out, wide(0, duration))
		case gap < shortGap:
			out[len(out)-1].End = duration
		default:
			out = append(out, wide(cursor, duration))
		}
	}
	return out
}
