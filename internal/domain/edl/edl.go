package edl

import (
	"fmt"

	"github.com/forPelevin/montager/internal/domain/timeline"
	"github.com/forPelevin/montager/internal/types"
)

// UnresolvedSpeakerError means a segment names a speaker the scene does not
// know about, i.e. the scene and voice map artifacts do not belong together.
type UnresolvedSpeakerError struct {
	SpeakerID string
	Index     int
}

func (e *UnresolvedSpeakerError) Error() string {
	return fmt.Sprintf("segment %d references unknown speaker %q", e.Index, e.SpeakerID)
}

// Build resolves a crop rect for every segment. Wide segments get the full
// frame.
func Build(segs []types.Segment, scene types.SceneData) (types.EDL, error) {
	byID := make(map[string]types.Rect, len(scene.Speakers))
	for _, sp := range scene.Speakers {
		byID[sp.ID] = sp.CropRect
	}
	full := types.FullFrame(scene.Width, scene.Height)

	out := make(types.EDL, 0, len(segs))
	for i, s := range segs {
		d := types.Decision{Start: s.Start, End: s.End, SpeakerID: types.Wide, CropRect: full}
		if !s.IsWide() {
			r, ok := byID[s.SpeakerID]
			if !ok {
				return nil, &UnresolvedSpeakerError{SpeakerID: s.SpeakerID, Index: i}
			}
			d.SpeakerID = s.SpeakerID
			d.CropRect = r
		}
		out = append(out, d)
	}
	return out, nil
}

// Generate recomputes the EDL from the immutable detection artifacts.
func Generate(scene types.SceneData, vm types.VoiceMapData, p timeline.Params) (types.EDL, error) {
	segs, err := timeline.Transform(vm.Segments, scene.Duration, p)
	if err != nil {
		return nil, fmt.Errorf("transform voice map: %w", err)
	}
	return Build(segs, scene)
}
