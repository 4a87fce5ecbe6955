package voicemap

import (
	"sort"

	"github.com/forPelevin/montager/internal/types"
)

// MapSpeakers turns diarizer labels into scene speaker ids. Labels are
// matched to speakers left to right in order of first appearance, wrapping
// around when there are more voices than faces.
func MapSpeakers(raw []types.LabeledSegment, speakers []types.Speaker) []types.Segment {
	out := make([]types.Segment, 0, len(raw))
	if len(raw) == 0 {
		return out
	}

	var labels []string
	seen := map[string]bool{}
	for _, r := range raw {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}

	ordered := make([]types.Speaker, len(speakers))
	copy(ordered, speakers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].BBox.X < ordered[j].BBox.X })

	ids := make(map[string]string, len(labels))
	for i, l := range labels {
		switch {
		case len(ordered) == 0:
			ids[l] = types.Wide
		case len(labels) == 1 || len(ordered) == 1:
			ids[l] = ordered[0].ID
		default:
			ids[l] = ordered[i%len(ordered)].ID
		}
	}

	for _, r := range raw {
		out = append(out, types.Segment{Start: r.Start, End: r.End, SpeakerID: ids[r.Label]})
	}
	return out
}
