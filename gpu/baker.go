package gpu

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cloudsky/noise"
)

// Baker runs complete bakes: point-grid generation followed by a backend
// dispatch. It owns the random source so every bake draws from one sequence.
type Baker struct {
	backend        NoiseBackend
	gen            *noise.Generator
	reseedEachBake bool
	now            func() time.Time
}

// NewBaker seeds the point generator once. With reseedEachBake the source
// is reseeded from the wall clock before every bake instead.
func NewBaker(backend NoiseBackend, seed int64, reseedEachBake bool) *Baker {
	return &Baker{
		backend:        backend,
		gen:            noise.NewGenerator(seed),
		reseedEachBake: reseedEachBake,
		now:            time.Now,
	}
}

// Backend returns the backend volumes are baked with.
func (b *Baker) Backend() NoiseBackend {
	return b.backend
}

// Bake regenerates the three point grids for layer and bakes them. Invalid
// settings are reported but still baked.
func (b *Baker) Bake(layer noise.Layer, s noise.BakeSettings) error {
	for _, w := range s.Warnings() {
		log.Warn().Str("layer", layer.String()).Msg(w)
	}
	if b.reseedEachBake {
		b.gen.Reseed(b.now().UnixNano())
	}
	grids := b.gen.Grids(s, layer.Dims())

	start := b.now()
	if err := b.backend.BakeVolume(layer, s, grids); err != nil {
		return fmt.Errorf("bake %s noise on %s backend: %w", layer, b.backend.Name(), err)
	}
	log.Info().
		Str("layer", layer.String()).
		Str("backend", b.backend.Name()).
		Int("resolution", s.Resolution).
		Ints("subdivisions", []int{s.SubdivisionsA, s.SubdivisionsB, s.SubdivisionsC}).
		Dur("elapsed", b.now().Sub(start)).
		Msg("noise volume baked")
	return nil
}
