package atmosphere

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestIntersect(t *testing.T) {
	m := Earth()

	tests := []struct {
		name   string
		origin mgl64.Vec3
		dir    mgl64.Vec3
		want   float64
	}{
		{"straight up from the surface", mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}, 20e3},
		{"from above, looking down", mgl64.Vec3{0, 1e6, 0}, mgl64.Vec3{0, -1, 0}, 1e6 - 20e3},
		{"far away, looking away", mgl64.Vec3{0, 1e8, 0}, mgl64.Vec3{0, 1, 0}, -1},
		{"passing beside", mgl64.Vec3{1e8, 0, 0}, mgl64.Vec3{0, 1, 0}, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := m.Intersect(tc.origin, tc.dir, m.AtmosphereRadius)
			assert.InDelta(t, tc.want, got, 1)
		})
	}
}

func TestDensity(t *testing.T) {
	m := Earth()
	r, mie := m.Density(mgl64.Vec3{})
	assert.InDelta(t, 1, r, 1e-9)
	assert.InDelta(t, 1, mie, 1e-9)

	r, mie = m.Density(mgl64.Vec3{0, 8e3, 0})
	assert.InDelta(t, math.Exp(-1), r, 1e-6)
	assert.Less(t, mie, r)

	// Below the surface clamps to surface density.
	r, _ = m.Density(mgl64.Vec3{0, -100, 0})
	assert.InDelta(t, 1, r, 1e-9)
}

func TestSkyColour(t *testing.T) {
	m := Earth()
	up := mgl32.Vec3{0, 1, 0}
	light := mgl32.Vec3{1, 1, 0}.Normalize()

	noon := m.Sky(mgl32.Vec3{}, up, light)
	for c := 0; c < 3; c++ {
		assert.False(t, math.IsNaN(float64(noon[c])))
		assert.Greater(t, noon[c], float32(0))
	}
	// Rayleigh scattering makes the zenith blue.
	assert.Greater(t, noon[2], noon[1])
	assert.Greater(t, noon[1], noon[0])

	// Looking toward the sun is brighter than looking away from it.
	sun := mgl32.Vec3{1, 0.2, 0}.Normalize()
	toward := m.Sky(mgl32.Vec3{}, sun, sun)
	away := m.Sky(mgl32.Vec3{}, sun.Mul(-1), sun)
	assert.Greater(t, toward.Len(), away.Len())
}

func TestSkyMissIsBlack(t *testing.T) {
	m := Earth()
	c := m.Sky(mgl32.Vec3{0, 1e8, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, mgl32.Vec3{}, c)
}
