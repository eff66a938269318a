package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LayerValue is the distance from pos to the nearest feature point of g,
// in [0,1]. Neighbour cells that fall off the grid are wrapped and their
// point is tested at every periodic image so the volume tiles seamlessly.
func LayerValue(pos mgl32.Vec3, g PointGrid) float32 {
	n := g.Subdivisions
	if n <= 0 || len(g.Points) == 0 {
		return 1
	}
	zSpan := 1
	if g.Dims == 2 {
		zSpan = 0
		pos[2] = 0
	}

	var cell [3]int
	for a := 0; a < g.Dims; a++ {
		cell[a] = int(math.Floor(float64(pos[a] * float32(n))))
	}

	nearest := float32(1)
	for dz := -zSpan; dz <= zSpan; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				adj := [3]int{cell[0] + dx, cell[1] + dy, cell[2] + dz}
				if !outside(adj, n, g.Dims) {
					d := pos.Sub(g.Point(adj[0], adj[1], adj[2]))
					nearest = min(nearest, d.Dot(d))
					continue
				}
				var w [3]int
				for a := 0; a < g.Dims; a++ {
					w[a] = ((adj[a] % n) + n) % n
				}
				p := g.Point(w[0], w[1], w[2])
				for oz := -zSpan; oz <= zSpan; oz++ {
					for oy := -1; oy <= 1; oy++ {
						for ox := -1; ox <= 1; ox++ {
							img := p.Add(mgl32.Vec3{float32(ox), float32(oy), float32(oz)})
							d := pos.Sub(img)
							nearest = min(nearest, d.Dot(d))
						}
					}
				}
			}
		}
	}
	return float32(math.Sqrt(float64(nearest)))
}

func outside(c [3]int, n, dims int) bool {
	for a := 0; a < dims; a++ {
		if c[a] < 0 || c[a] >= n {
			return true
		}
	}
	return false
}

// Combine folds three layer values with octave weights 1, p, p², maps the
// sum back to [0,1], inverts it and raises it to the 4th power.
func Combine(a, b, c, persistence float32) float32 {
	sum := RawSum(a, b, c, persistence)
	sum /= 1 + persistence + persistence*persistence
	v := 1 - sum
	return v * v * v * v
}

// RawSum is the weighted layer sum before normalization.
func RawSum(a, b, c, persistence float32) float32 {
	return a + b*persistence + c*persistence*persistence
}

// TexelPosition maps a texel index into the unit cube.
func TexelPosition(x, y, z, resolution int) mgl32.Vec3 {
	r := float32(resolution)
	return mgl32.Vec3{float32(x) / r, float32(y) / r, float32(z) / r}
}

// Texel evaluates the bake kernel for one output texel.
func Texel(x, y, z int, s BakeSettings, grids [3]PointGrid) float32 {
	pos := TexelPosition(x, y, z, s.Resolution)
	a := LayerValue(pos, grids[0])
	b := LayerValue(pos, grids[1])
	c := LayerValue(pos, grids[2])
	return Combine(a, b, c, s.Persistence)
}
