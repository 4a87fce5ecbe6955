// Package timeline turns raw voice segments into a complete, camera-annotated
// timeline. Every stage is a pure function returning a freshly allocated
// slice; inputs are never modified.
package timeline

import (
	"github.com/forPelevin/montager/internal/types"
)

type Params struct {
	MinSpeechDuration    float64
	ShortGapThreshold    float64
	LongSegmentThreshold float64
	BreakInterval        float64
	BreakDuration        float64
}

// Transform runs normalize, fill, merge and break insertion in order. The
// result covers [0, duration) with no gaps and no overlaps.
func Transform(raw []types.Segment, duration float64, p Params) ([]types.Segment, error) {
	segs, err := Normalize(raw, p.MinSpeechDuration)
	if err != nil {
		return nil, err
	}
	segs = FillGaps(segs, duration, p.ShortGapThreshold)
	segs = Merge(segs)
	return InsertBreaks(segs, p.LongSegmentThreshold, p.BreakInterval, p.BreakDuration), nil
}

func wide(start, end float64) types.Segment {
	return types.Segment{Start: start, End: end, SpeakerID: types.Wide}
}
