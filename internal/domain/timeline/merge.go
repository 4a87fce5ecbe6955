package timeline

import "github.com/forPelevin/montager/internal/types"

// Merge joins touching neighbours that share a camera selection. A single
// pass reaches the fixed point since each merged segment is compared with
// its next neighbour again, so Merge(Merge(x)) == Merge(x).
func Merge(segs []types.Segment) []types.Segment {
	if len(segs) == 0 {
		return nil
	}
	out := make([]types.Segment, 0, len(segs))
	out = append(out, segs[0])
	for _, s := range segs[1:] {
		last := &out[len(out)-1]
		if last.End == s.Start && last.SpeakerID == s.SpeakerID {
			last.End = s.End
			continue
		}
		out = append(out, s)
	}
	return out
}
