package timeline

import (
	"fmt"
	"sort"

	"github.com/forPelevin/montager/internal/types"
)

// Normalize sorts raw segments, resolves overlaps by truncating the earlier
// segment and relabels segments shorter than minSpeech as wide. A segment
// with start >= end is reported as types.ErrMalformedSegment.
func Normalize(raw []types.Segment, minSpeech float64) ([]types.Segment, error) {
	segs := make([]types.Segment, len(raw))
	for i, s := range raw {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if s.SpeakerID == "" {
			s.SpeakerID = types.Wide
		}
		segs[i] = s
	}

	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].Start != segs[j].Start {
			return segs[i].Start < segs[j].Start
		}
		if segs[i].End != segs[j].End {
			return segs[i].End < segs[j].End
		}
		return segs[i].SpeakerID < segs[j].SpeakerID
	})

	out := make([]types.Segment, 0, len(segs))
	for _, s := range segs {
		if n := len(out); n > 0 && out[n-1].End > s.Start {
			out[n-1].End = s.Start
			if out[n-1].Start >= out[n-1].End {
				out = out[:n-1]
			}
		}
		out = append(out, s)
	}

	for i := range out {
		if out[i].Duration() < minSpeech {
			out[i].SpeakerID = types.Wide
		}
	}
	return out, nil
}
