package noise

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeAllocation(t *testing.T) {
	assert.Len(t, NewVolume(LayerMain, 8).Data, 512)
	assert.Len(t, NewVolume(LayerWeather, 8).Data, 64)
	assert.Empty(t, NewVolume(LayerDetail, 0).Data)
}

func TestVolumeSampleTexelCentres(t *testing.T) {
	v := NewVolume(LayerMain, 4)
	for i := range v.Data {
		v.Data[i] = float32(i) / float32(len(v.Data))
	}
	// A texel centre returns the stored value exactly.
	c := func(i int) float32 { return (float32(i) + 0.5) / 4 }
	assert.InDelta(t, v.At(1, 2, 3), v.Sample3(mgl32.Vec3{c(1), c(2), c(3)}), 1e-6)
	assert.InDelta(t, v.At(0, 0, 0), v.Sample3(mgl32.Vec3{c(0), c(0), c(0)}), 1e-6)
}

func TestVolumeSampleWraps(t *testing.T) {
	v := NewVolume(LayerWeather, 4)
	v.Set(0, 0, 0, 1)
	v.Set(3, 0, 0, 0)

	centre := mgl32.Vec2{0.125, 0.125}
	assert.InDelta(t, 1, v.Sample2(centre), 1e-6)
	// Shifting by whole tiles lands on the same texel.
	assert.InDelta(t, v.Sample2(centre), v.Sample2(mgl32.Vec2{2.125, -0.875}), 1e-5)
	// Halfway between texel 3 and the wrapped texel 0.
	assert.InDelta(t, 0.5, v.Sample2(mgl32.Vec2{0, 0.125}), 1e-6)
}

func TestVolumeSampleEmpty(t *testing.T) {
	var v Volume
	assert.Zero(t, v.Sample3(mgl32.Vec3{0.5, 0.5, 0.5}))
	assert.Zero(t, v.Sample2(mgl32.Vec2{0.5, 0.5}))
}

func TestBakeSettingsWarnings(t *testing.T) {
	good := BakeSettings{Resolution: 64, Persistence: 0.5, SubdivisionsA: 2, SubdivisionsB: 4, SubdivisionsC: 8}
	assert.Empty(t, good.Warnings())
	assert.Equal(t, 8, good.Groups())

	bad := BakeSettings{Resolution: 60, Persistence: 1.5, SubdivisionsA: 8, SubdivisionsB: 0, SubdivisionsC: 2}
	w := bad.Warnings()
	require.Len(t, w, 4)
	assert.Contains(t, w[0], "multiple of 8")
	assert.Equal(t, 7, bad.Groups())
}

func TestParseLayer(t *testing.T) {
	for _, l := range Layers {
		got, err := ParseLayer(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLayer("cirrus")
	assert.Error(t, err)
	assert.Equal(t, 2, LayerWeather.Dims())
	assert.Equal(t, 3, LayerDetail.Dims())
}

func TestVolumeSlice(t *testing.T) {
	v := NewVolume(LayerMain, 4)
	v.Set(1, 2, 3, 1)
	v.Set(0, 0, 3, 0.5)

	img := v.Slice(-1)
	require.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, uint8(255), img.GrayAt(1, 2).Y)
	assert.Equal(t, uint8(128), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(3, 3).Y)

	w := NewVolume(LayerWeather, 2)
	w.Set(1, 1, 0, 2)
	assert.Equal(t, uint8(255), w.Slice(5).GrayAt(1, 1).Y)

	assert.Equal(t, 0, NewVolume(LayerDetail, 0).Slice(0).Bounds().Dx())
}
