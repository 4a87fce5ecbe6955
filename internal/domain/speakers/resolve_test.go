package speakers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/montager/internal/types"
)

func face(cx int) types.Face {
	return types.Face{BBox: types.Rect{X: cx - 40, Y: 400, W: 80, H: 100}}
}

func testParams() Params {
	return Params{OutputWidth: 1920, OutputHeight: 1080, Proximity: 50, MinSamples: 1}
}

func TestResolve_TwoClusters(t *testing.T) {
	faces := []types.Face{face(100), face(110), face(900), face(920)}
	got := Resolve(faces, 3840, 2160, testParams())

	require.Len(t, got, 2)
	assert.Equal(t, "speaker_1", got[0].ID)
	assert.Equal(t, "Speaker 1", got[0].Name)
	assert.Equal(t, "speaker_2", got[1].ID)
	assert.Equal(t, 105, got[0].BBox.X+got[0].BBox.W/2)
	assert.Equal(t, 910, got[1].BBox.X+got[1].BBox.W/2)
}

func TestResolve_StableUnderPermutation(t *testing.T) {
	base := []types.Face{face(100), face(110), face(900), face(920)}
	want := Resolve(base, 3840, 2160, testParams())

	perms := [][]int{{3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}
	for _, p := range perms {
		in := make([]types.Face, len(p))
		for i, idx := range p {
			in[i] = base[idx]
		}
		assert.Equal(t, want, Resolve(in, 3840, 2160, testParams()))
	}
}

func TestResolve_GapEqualToProximityJoins(t *testing.T) {
	got := Resolve([]types.Face{face(100), face(150)}, 3840, 2160, testParams())
	require.Len(t, got, 1)

	got = Resolve([]types.Face{face(100), face(151)}, 3840, 2160, testParams())
	require.Len(t, got, 2)
}

func TestResolve_ChainsThroughNeighbours(t *testing.T) {
	got := Resolve([]types.Face{face(100), face(140), face(180), face(220)}, 3840, 2160, testParams())
	require.Len(t, got, 1)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(nil, 1920, 1080, testParams()))
}

func TestResolve_MinSamplesDropsNoise(t *testing.T) {
	p := testParams()
	p.MinSamples = 2
	got := Resolve([]types.Face{face(100), face(110), face(600), face(900), face(920)}, 3840, 2160, p)

	require.Len(t, got, 2)
	assert.Equal(t, "speaker_1", got[0].ID)
	assert.Equal(t, "speaker_2", got[1].ID)
	assert.Greater(t, got[1].BBox.X, 800)
}

func TestResolve_CropInsideFrame(t *testing.T) {
	got := Resolve([]types.Face{face(50), face(3800)}, 3840, 2160, testParams())
	require.Len(t, got, 2)
	for _, sp := range got {
		_, err := types.NewRect(sp.CropRect.X, sp.CropRect.Y, sp.CropRect.W, sp.CropRect.H, 3840, 2160)
		require.NoError(t, err)
		assert.Equal(t, 1920, sp.CropRect.W)
		assert.Equal(t, 1080, sp.CropRect.H)
	}
	assert.Equal(t, 0, got[0].CropRect.X)
	assert.Equal(t, 3840-1920, got[1].CropRect.X)
}
