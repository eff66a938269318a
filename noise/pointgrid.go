package noise

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// PointBytes is the size of one packed feature point (vec4 in std430).
const PointBytes = 16

// PointGrid holds one jittered feature point per grid cell. Points live in
// [0,1] on every used axis; unused components stay zero.
type PointGrid struct {
	Subdivisions int
	Dims         int
	Points       []mgl32.Vec4
}

// Index maps a cell coordinate to its slot in Points.
func (g PointGrid) Index(i, j, k int) int {
	n := g.Subdivisions
	if g.Dims == 2 {
		return i + n*j
	}
	return i + n*(j+k*n)
}

// Point returns the feature point of a cell that lies inside the grid.
func (g PointGrid) Point(i, j, k int) mgl32.Vec3 {
	return g.Points[g.Index(i, j, k)].Vec3()
}

// BufferSize is the byte size of the storage buffer the grid is uploaded
// into. It is always sized for n³ points so 2-D and 3-D kernels share one
// layout.
func (g PointGrid) BufferSize() int {
	n := g.Subdivisions
	if n <= 0 {
		return 0
	}
	return PointBytes * n * n * n
}

// Generator produces point grids from a private random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator seeds a generator. A zero seed picks one from the wall clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Reseed restarts the random sequence.
func (g *Generator) Reseed(seed int64) {
	g.rng.Seed(seed)
}

// PointGrid jitters one point inside each of the n^dims cells.
func (g *Generator) PointGrid(n, dims int) PointGrid {
	grid := PointGrid{Subdivisions: n, Dims: dims}
	if n <= 0 {
		return grid
	}
	depth := n
	if dims == 2 {
		depth = 1
	}
	grid.Points = make([]mgl32.Vec4, 0, n*n*depth)
	cell := 1 / float32(n)
	for k := 0; k < depth; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				var p mgl32.Vec4
				p[0] = (float32(i) + g.rng.Float32()) * cell
				p[1] = (float32(j) + g.rng.Float32()) * cell
				if dims == 3 {
					p[2] = (float32(k) + g.rng.Float32()) * cell
				}
				grid.Points = append(grid.Points, p)
			}
		}
	}
	return grid
}

// Grids builds the a/b/c grids for one bake.
func (g *Generator) Grids(s BakeSettings, dims int) [3]PointGrid {
	var grids [3]PointGrid
	for i, n := range s.Subdivisions() {
		grids[i] = g.PointGrid(n, dims)
	}
	return grids
}
