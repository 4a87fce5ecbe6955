package types

import (
	"errors"
	"fmt"
)

// Wide is the camera selection for the full, uncropped frame.
const Wide = "wide"

var (
	ErrMalformedSegment = errors.New("malformed segment")
	ErrInvalidRect      = errors.New("invalid rect")
)

type Rect struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// NewRect returns a rect that lies fully inside a frameW x frameH frame.
func NewRect(x, y, w, h, frameW, frameH int) (Rect, error) {
	r := Rect{X: x, Y: y, W: w, H: h}
	if w <= 0 || h <= 0 {
		return Rect{}, fmt.Errorf("%w: non-positive size %dx%d", ErrInvalidRect, w, h)
	}
	if x < 0 || y < 0 || x+w > frameW || y+h > frameH {
		return Rect{}, fmt.Errorf("%w: %+v outside %dx%d frame", ErrInvalidRect, r, frameW, frameH)
	}
	return r, nil
}

// FullFrame is the crop used for wide decisions.
func FullFrame(w, h int) Rect { return Rect{W: w, H: h} }

type Speaker struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BBox     Rect   `json:"bbox"`
	CropRect Rect   `json:"crop_rect"`
}

type SceneData struct {
	VideoPath string    `json:"video_path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	FPS       float64   `json:"fps"`
	Duration  float64   `json:"duration"`
	Speakers  []Speaker `json:"speakers"`
}

// Speaker looks up a speaker by id.
func (s SceneData) Speaker(id string) (Speaker, bool) {
	for _, sp := range s.Speakers {
		if sp.ID == id {
			return sp, true
		}
	}
	return Speaker{}, false
}

// Segment is the closed-open interval [Start, End) in seconds. An empty
// SpeakerID (null in JSON) is treated as Wide.
type Segment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id"`
}

func NewSegment(start, end float64, speakerID string) (Segment, error) {
	s := Segment{Start: start, End: end, SpeakerID: speakerID}
	if err := s.Validate(); err != nil {
		return Segment{}, err
	}
	return s, nil
}

func (s Segment) Validate() error {
	if s.Start < 0 || s.Start >= s.End {
		return fmt.Errorf("%w: [%.3f, %.3f)", ErrMalformedSegment, s.Start, s.End)
	}
	return nil
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// IsWide reports whether the segment has no attributable speaker.
func (s Segment) IsWide() bool { return s.SpeakerID == "" || s.SpeakerID == Wide }

type VoiceMapData struct {
	VideoPath string    `json:"video_path"`
	Segments  []Segment `json:"segments"`
}

// Face is one detected face box in source-frame pixels.
type Face struct {
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`
	BBox      Rect    `json:"bbox" yaml:"bbox"`
}

func (f Face) CenterX() float64 { return float64(f.BBox.X) + float64(f.BBox.W)/2 }
func (f Face) CenterY() float64 { return float64(f.BBox.Y) + float64(f.BBox.H)/2 }

// LabeledSegment is a raw speech interval as emitted by a diarizer, before
// its label is mapped to a scene speaker.
type LabeledSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

type Decision struct {
	Start     float64 `json:"start" yaml:"start"`
	End       float64 `json:"end" yaml:"end"`
	SpeakerID string  `json:"speaker_id" yaml:"speaker_id"`
	CropRect  Rect    `json:"crop_rect" yaml:"crop_rect"`
}

// EDL is an ordered, contiguous list of decisions covering [0, duration).
type EDL []Decision

type VideoInfo struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
}
