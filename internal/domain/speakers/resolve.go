package speakers

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/forPelevin/montager/internal/types"
)

// ErrEmptyScene is a warning: no speakers were resolved and the scene can
// only be edited with wide shots.
var ErrEmptyScene = errors.New("no speakers resolved; scene will use wide shots only")

type Params struct {
	OutputWidth  int
	OutputHeight int
	// Proximity is the max horizontal distance in pixels between two
	// neighbouring face centers of the same speaker.
	Proximity float64
	// MinSamples drops clusters with fewer observations as detector noise.
	MinSamples int
}

type cluster struct {
	faces []types.Face
	sumX  float64
	sumY  float64
}

func (c cluster) centroidX() float64 { return c.sumX / float64(len(c.faces)) }
func (c cluster) centroidY() float64 { return c.sumY / float64(len(c.faces)) }

// Resolve groups face observations into speakers ordered left to right.
// The result depends only on the set of observations, not their order.
func Resolve(faces []types.Face, frameW, frameH int, p Params) []types.Speaker {
	if len(faces) == 0 {
		return nil
	}

	sorted := make([]types.Face, len(faces))
	copy(sorted, faces)
	sort.Slice(sorted, func(i, j int) bool { return faceLess(sorted[i], sorted[j]) })

	// Single linkage on the 1-D center: a gap exactly equal to Proximity
	// still joins the running cluster.
	var clusters []cluster
	for i, f := range sorted {
		if i == 0 || f.CenterX()-sorted[i-1].CenterX() > p.Proximity {
			clusters = append(clusters, cluster{})
		}
		c := &clusters[len(clusters)-1]
		c.faces = append(c.faces, f)
		c.sumX += f.CenterX()
		c.sumY += f.CenterY()
	}

	out := make([]types.Speaker, 0, len(clusters))
	for _, c := range clusters {
		if len(c.faces) < p.MinSamples {
			continue
		}
		n := len(out) + 1
		out = append(out, types.Speaker{
			ID:       fmt.Sprintf("speaker_%d", n),
			Name:     fmt.Sprintf("Speaker %d", n),
			BBox:     representativeBBox(c),
			CropRect: CropRect(c.centroidX(), c.centroidY(), frameW, frameH, p.OutputWidth, p.OutputHeight),
		})
	}
	return out
}

// faceLess is a total order so that permutations of the same input sort
// identically.
func faceLess(a, b types.Face) bool {
	if a.CenterX() != b.CenterX() {
		return a.CenterX() < b.CenterX()
	}
	if a.CenterY() != b.CenterY() {
		return a.CenterY() < b.CenterY()
	}
	if a.BBox != b.BBox {
		if a.BBox.W != b.BBox.W {
			return a.BBox.W < b.BBox.W
		}
		return a.BBox.H < b.BBox.H
	}
	return a.Timestamp < b.Timestamp
}

// representativeBBox is the mean face size centered on the centroid.
func representativeBBox(c cluster) types.Rect {
	var sw, sh int
	for _, f := range c.faces {
		sw += f.BBox.W
		sh += f.BBox.H
	}
	n := len(c.faces)
	w, h := sw/n, sh/n
	cx := int(math.Round(c.centroidX()))
	cy := int(math.Round(c.centroidY()))
	return types.Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}
