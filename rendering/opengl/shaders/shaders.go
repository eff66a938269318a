// Package shaders holds the GLSL sources of the renderer and the helpers
// that compile them.
package shaders

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Source file names.
const (
	ComputeMain    = "compute_main.glsl"
	ComputeWeather = "compute_weather.glsl"
	Vertex         = "vertex.glsl"
	Fragment       = "fragment.glsl"

	OverlayVertex   = "overlay_vertex.glsl"
	OverlayFragment = "overlay_fragment.glsl"
)

//go:embed glsl/*.glsl
var embedded embed.FS

// Provider returns shader source text by file name.
type Provider interface {
	Source(name string) (string, error)
}

// Embedded serves the sources compiled into the binary.
type Embedded struct{}

func (Embedded) Source(name string) (string, error) {
	b, err := fs.ReadFile(embedded, "glsl/"+name)
	if err != nil {
		return "", fmt.Errorf("embedded shader %s: %w", name, err)
	}
	return string(b), nil
}

// Dir reads sources from a directory so shaders can be edited without a
// rebuild. Missing files fall back to the embedded copy.
type Dir string

func (d Dir) Source(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(string(d), name))
	if err == nil {
		return string(b), nil
	}
	if os.IsNotExist(err) {
		return Embedded{}.Source(name)
	}
	return "", fmt.Errorf("shader %s: %w", name, err)
}

// NewProvider returns a Dir provider when dir is set, Embedded otherwise.
func NewProvider(dir string) Provider {
	if dir == "" {
		return Embedded{}
	}
	return Dir(dir)
}

// Names lists every source the renderer loads.
func Names() []string {
	return []string{ComputeMain, ComputeWeather, Vertex, Fragment, OverlayVertex, OverlayFragment}
}
