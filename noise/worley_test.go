package noise

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCombineNormalization(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		p := rng.Float32()
		a, b, c := rng.Float32(), rng.Float32(), rng.Float32()

		raw := RawSum(a, b, c, p)
		assert.GreaterOrEqual(t, raw, float32(0))
		assert.LessOrEqual(t, raw, 1+p+p*p+1e-6)

		v := Combine(a, b, c, p)
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}

	// Extremes: on a feature point everywhere -> white, nothing near -> black.
	assert.InDelta(t, 1, Combine(0, 0, 0, 0.5), 1e-6)
	assert.InDelta(t, 0, Combine(1, 1, 1, 0.5), 1e-6)
	assert.InDelta(t, 0, Combine(1, 1, 1, 1), 1e-6)
}

func TestLayerValueOnFeaturePoint(t *testing.T) {
	g := NewGenerator(5).PointGrid(4, 3)
	p := g.Point(2, 1, 3)
	assert.InDelta(t, 0, LayerValue(p, g), 1e-6)

	g2 := NewGenerator(5).PointGrid(4, 2)
	q := g2.Point(3, 0, 0)
	assert.InDelta(t, 0, LayerValue(q, g2), 1e-6)
}

func TestLayerValueRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, dims := range []int{2, 3} {
		g := NewGenerator(3).PointGrid(3, dims)
		for i := 0; i < 500; i++ {
			pos := mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
			v := LayerValue(pos, g)
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
}

func TestLayerValueEmptyGrid(t *testing.T) {
	assert.Equal(t, float32(1), LayerValue(mgl32.Vec3{0.3, 0.3, 0.3}, PointGrid{Dims: 3}))
}

func TestSeamlessTiling(t *testing.T) {
	const res = 32
	// |d(texel)| <= 4 * |d(position)| since the layers are 1-Lipschitz and
	// the final curve is (1-s)^4.
	const tolerance = 4.0/res + 1e-4

	tests := []struct {
		name string
		dims int
		subs [3]int
	}{
		{"3D coarse", 3, [3]int{1, 2, 4}},
		{"3D fine", 3, [3]int{3, 5, 8}},
		{"2D", 2, [3]int{2, 4, 8}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := BakeSettings{Resolution: res, Persistence: 0.6, SubdivisionsA: tc.subs[0], SubdivisionsB: tc.subs[1], SubdivisionsC: tc.subs[2]}
			grids := NewGenerator(77).Grids(s, tc.dims)

			for a := 0; a < tc.dims; a++ {
				for _, other := range []int{0, res / 3, res / 2} {
					first := [3]int{other, other, other}
					if tc.dims == 2 {
						first[2] = 0
					}
					last := first
					first[a], last[a] = 0, res-1
					v0 := Texel(first[0], first[1], first[2], s, grids)
					v1 := Texel(last[0], last[1], last[2], s, grids)
					assert.InDelta(t, v0, v1, tolerance, "axis %d offset %d", a, other)
				}
			}
		})
	}
}

func TestTexelPosition(t *testing.T) {
	p := TexelPosition(8, 0, 31, 32)
	assert.Equal(t, mgl32.Vec3{0.25, 0, 31.0 / 32.0}, p)
}
