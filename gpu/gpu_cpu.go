package gpu

import (
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/rs/zerolog/log"

	"cloudsky/noise"
)

// CPUCompute implements NoiseBackend by running the bake kernel on every
// core. Work is split into the same 8×8×8 (8×8 for 2-D) tiles the compute
// shader uses, so resolutions that are not a multiple of the tile size leave
// the same trailing texels unwritten.
type CPUCompute struct {
	numWorkers int
	volumes    [len(noise.Layers)]*noise.Volume
}

// NewCPUCompute creates a CPU backend with no volumes baked yet.
func NewCPUCompute() *CPUCompute {
	numWorkers := runtime.NumCPU()
	log.Debug().Int("workers", numWorkers).Msg("initializing CPU noise backend")
	return &CPUCompute{numWorkers: numWorkers}
}

func (c *CPUCompute) Name() string { return "cpu" }

// SetWorkers caps the goroutines a bake fans out to. n < 1 uses every core.
func (c *CPUCompute) SetWorkers(n int) {
	if n < 1 {
		n = runtime.NumCPU()
	}
	c.numWorkers = n
}

func (c *CPUCompute) Workers() int { return c.numWorkers }

// BakeVolume fills a fresh volume and swaps it in once every tile finished.
func (c *CPUCompute) BakeVolume(layer noise.Layer, s noise.BakeSettings, grids [3]noise.PointGrid) error {
	vol := noise.NewVolume(layer, s.Resolution)
	groups := s.Groups()
	depthGroups, depthTile := groups, noise.TileSize
	if vol.Dims == 2 {
		depthGroups, depthTile = 1, 1
	}

	total := groups * groups * depthGroups
	parallel.WithNumGoroutines(c.numWorkers).For(total, func(g, _ int) {
		gx := g % groups
		gy := (g / groups) % groups
		gz := g / (groups * groups)
		for lz := 0; lz < depthTile; lz++ {
			z := gz*depthTile + lz
			for ly := 0; ly < noise.TileSize; ly++ {
				y := gy*noise.TileSize + ly
				for lx := 0; lx < noise.TileSize; lx++ {
					x := gx*noise.TileSize + lx
					vol.Set(x, y, z, noise.Texel(x, y, z, s, grids))
				}
			}
		}
	})

	c.volumes[layer] = vol
	return nil
}

// Volume returns the last baked volume of a layer, or nil.
func (c *CPUCompute) Volume(layer noise.Layer) *noise.Volume {
	return c.volumes[layer]
}

// Cleanup drops every baked volume.
func (c *CPUCompute) Cleanup() {
	for i := range c.volumes {
		c.volumes[i] = nil
	}
}
