package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"cloudsky/driver"
	"cloudsky/noise"
	"cloudsky/rendering"
	"cloudsky/rendering/software"
)

// renderStill bakes every layer and renders a single frame.
func renderStill(p *software.Pipeline, opts driver.Options) (*image.RGBA, error) {
	for _, l := range noise.Layers {
		if err := p.Bake(l, opts.Bake[l]); err != nil {
			return nil, fmt.Errorf("bake %s: %w", l, err)
		}
	}
	w, h := p.Size()
	if err := p.Render(rendering.NewFrameState(0, w, h, opts.Camera, opts.Params)); err != nil {
		return nil, err
	}
	return p.Capture()
}

// writeSlices saves depth z of every baked layer as <dir>/<layer>.png.
func writeSlices(p *software.Pipeline, dir string, z int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, l := range noise.Layers {
		v := p.Volume(l)
		if v == nil {
			log.Warn().Stringer("layer", l).Msg("layer not baked, no slice written")
			continue
		}
		path := filepath.Join(dir, l.String()+".png")
		if err := writePNG(path, v.Slice(z)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// scriptedInput drives a headless sequence: it starts the export on the
// first frame, turns the camera by a fixed amount every frame and exits
// after the requested number of frames.
type scriptedInput struct {
	frames  int
	polled  int
	exportN bool
	// spin is the cursor delta fed to the camera each frame.
	spin float32
}

func (in *scriptedInput) Poll() { in.polled++ }

func (in *scriptedInput) KeyDown(k driver.Key) bool {
	switch k {
	case driver.KeyExit:
		return in.polled > in.frames
	case driver.KeyExport:
		return in.exportN && in.polled == 1
	}
	return false
}

func (in *scriptedInput) DragDelta() (float32, float32) {
	if in.polled <= 1 {
		return 0, 0
	}
	return in.spin, 0
}
