package software

import (
	"image"

	"cloudsky/gpu"
	"cloudsky/noise"
	"cloudsky/rendering"
)

// Presenter shows a finished frame, for example in a preview window.
type Presenter interface {
	Present(img *image.RGBA) error
}

// Pipeline bakes on the CPU backend and renders with the software
// integrator into an in-memory frame.
type Pipeline struct {
	cpu       *gpu.CPUCompute
	baker     *gpu.Baker
	renderer  *Renderer
	frame     *image.RGBA
	presenter Presenter
}

// NewPipeline renders width × height frames. presenter may be nil for
// headless use.
func NewPipeline(width, height int, seed int64, reseedEachBake bool, presenter Presenter) *Pipeline {
	cpu := gpu.NewCPUCompute()
	return &Pipeline{
		cpu:       cpu,
		baker:     gpu.NewBaker(cpu, seed, reseedEachBake),
		renderer:  NewRenderer(),
		frame:     image.NewRGBA(image.Rect(0, 0, width, height)),
		presenter: presenter,
	}
}

func (p *Pipeline) Bake(layer noise.Layer, s noise.BakeSettings) error {
	return p.baker.Bake(layer, s)
}

// Volumes returns the baked volumes. Layers that were never baked sample
// as zero.
func (p *Pipeline) Volumes() Volumes {
	get := func(l noise.Layer) *noise.Volume {
		if v := p.cpu.Volume(l); v != nil {
			return v
		}
		return noise.NewVolume(l, 0)
	}
	return Volumes{
		Main:    get(noise.LayerMain),
		Weather: get(noise.LayerWeather),
		Detail:  get(noise.LayerDetail),
	}
}

// Volume exposes one baked layer, or nil.
func (p *Pipeline) Volume(layer noise.Layer) *noise.Volume {
	return p.cpu.Volume(layer)
}

func (p *Pipeline) Render(f rendering.FrameState) error {
	p.renderer.Render(f, p.Volumes(), p.frame)
	return nil
}

// Capture returns the frame buffer itself; it is overwritten by the next
// Render.
func (p *Pipeline) Capture() (*image.RGBA, error) {
	return p.frame, nil
}

func (p *Pipeline) Present() error {
	if p.presenter == nil {
		return nil
	}
	return p.presenter.Present(p.frame)
}

func (p *Pipeline) Size() (int, int) {
	b := p.frame.Bounds()
	return b.Dx(), b.Dy()
}

// Close releases the baked volumes.
func (p *Pipeline) Close() {
	p.cpu.Cleanup()
}
