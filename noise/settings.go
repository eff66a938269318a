package noise

import (
	"fmt"
	"strings"
)

// TileSize is the compute work-group edge length. Volume resolutions should
// be a multiple of it or the trailing texels are never written.
const TileSize = 8

// Layer identifies one of the three baked noise volumes.
type Layer int

const (
	LayerMain Layer = iota
	LayerWeather
	LayerDetail
)

// Layers lists every layer in bake order.
var Layers = [...]Layer{LayerMain, LayerWeather, LayerDetail}

func (l Layer) String() string {
	switch l {
	case LayerMain:
		return "main"
	case LayerWeather:
		return "weather"
	case LayerDetail:
		return "detail"
	}
	return fmt.Sprintf("layer(%d)", int(l))
}

// Dims returns 2 for the weather mask and 3 for the shape volumes.
func (l Layer) Dims() int {
	if l == LayerWeather {
		return 2
	}
	return 3
}

// ParseLayer accepts the names produced by Layer.String.
func ParseLayer(name string) (Layer, error) {
	for _, l := range Layers {
		if strings.EqualFold(name, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown noise layer %q", name)
}

// BakeSettings are the user-facing knobs of one bake.
type BakeSettings struct {
	Resolution    int     `yaml:"resolution" json:"resolution"`
	Persistence   float32 `yaml:"persistence" json:"persistence"`
	SubdivisionsA int     `yaml:"subdivisions_a" json:"subdivisions_a"`
	SubdivisionsB int     `yaml:"subdivisions_b" json:"subdivisions_b"`
	SubdivisionsC int     `yaml:"subdivisions_c" json:"subdivisions_c"`
}

// Subdivisions returns the three grid densities, coarse to fine.
func (s BakeSettings) Subdivisions() [3]int {
	return [3]int{s.SubdivisionsA, s.SubdivisionsB, s.SubdivisionsC}
}

// Groups is the number of work groups dispatched along each axis.
func (s BakeSettings) Groups() int {
	if s.Resolution <= 0 {
		return 0
	}
	return s.Resolution / TileSize
}

// Warnings describes settings that will bake with visible artifacts. Nothing
// here is enforced; bad values degrade the volume instead of failing.
func (s BakeSettings) Warnings() []string {
	var w []string
	if s.Resolution <= 0 {
		w = append(w, "resolution must be positive; the volume will be empty")
	} else if s.Resolution%TileSize != 0 {
		w = append(w, fmt.Sprintf("resolution %d is not a multiple of %d; trailing texels stay unbaked", s.Resolution, TileSize))
	}
	if s.Persistence < 0 || s.Persistence > 1 {
		w = append(w, fmt.Sprintf("persistence %.3f is outside [0,1]", s.Persistence))
	}
	subs := s.Subdivisions()
	for i, n := range subs {
		if n <= 0 {
			w = append(w, fmt.Sprintf("subdivisions_%c must be positive", 'a'+i))
		}
	}
	if subs[0] > subs[1] || subs[1] > subs[2] {
		w = append(w, "subdivisions should ascend from a (coarse) to c (fine)")
	}
	return w
}
