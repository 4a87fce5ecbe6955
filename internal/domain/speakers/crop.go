package speakers

import (
	"math"

	"github.com/forPelevin/montager/internal/types"
)

// CropRect centers an outW x outH window on (cx, cy) and clamps it inside
// the frame. Frames that are not strictly larger than the output in both
// dimensions get a 16:9 window of 60% of the frame instead.
func CropRect(cx, cy float64, frameW, frameH, outW, outH int) types.Rect {
	w, h := outW, outH
	if frameW <= outW || frameH <= outH {
		w = int(float64(frameW) * 0.6)
		h = int(float64(frameH) * 0.6)
		if float64(w)/float64(h) > 16.0/9.0 {
			w = h * 16 / 9
		} else {
			h = w * 9 / 16
		}
	}

	x := int(math.Round(cx)) - w/2
	y := int(math.Round(cy)) - h/2
	return types.Rect{
		X: clampInt(x, 0, frameW-w),
		Y: clampInt(y, 0, frameH-h),
		W: w,
		H: h,
	}
}

func clampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
