package gpu

import (
	"errors"
	"fmt"
	"strings"

	"cloudsky/noise"
)

// ErrNoBackend is returned by Select when no backend matches.
var ErrNoBackend = errors.New("no noise backend available")

// NoiseBackend evaluates the layered Worley kernel for every texel of a
// volume. BakeVolume blocks until the volume is complete; on error the
// previously baked volume of that layer stays in place.
type NoiseBackend interface {
	Name() string
	BakeVolume(layer noise.Layer, s noise.BakeSettings, grids [3]noise.PointGrid) error
	Cleanup()
}

// Select picks the backend whose name matches. An empty name or "auto"
// picks the first candidate.
func Select(name string, backends ...NoiseBackend) (NoiseBackend, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackend
	}
	if name == "" || strings.EqualFold(name, "auto") {
		return backends[0], nil
	}
	for _, b := range backends {
		if strings.EqualFold(b.Name(), name) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoBackend, name)
}
