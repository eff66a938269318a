package software

import (
	"image"
	"image/color"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl32"

	"cloudsky/atmosphere"
	"cloudsky/core"
	"cloudsky/rendering"
)

// Renderer shades whole frames, one goroutine per batch of rows.
type Renderer struct {
	Sky atmosphere.Model
}

// NewRenderer returns a renderer under the Earth sky.
func NewRenderer() *Renderer {
	return &Renderer{Sky: atmosphere.Earth()}
}

// Render shades every pixel of dst. dst must be f.Width × f.Height; row 0 is
// the top of the image.
func (r *Renderer) Render(f rendering.FrameState, v Volumes, dst *image.RGBA) {
	it := NewIntegrator(f, v, r.Sky)
	w, h := f.Width, f.Height
	parallel.For(h, func(row, _ int) {
		y := h - 1 - row
		for x := 0; x < w; x++ {
			dir := core.PixelRay(x, y, w, h, f.View)
			dst.SetRGBA(dst.Rect.Min.X+x, dst.Rect.Min.Y+row, pack(it.Shade(f.CameraLocation, dir)))
		}
	})
}

func pack(c mgl32.Vec3) color.RGBA {
	return color.RGBA{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: 255,
	}
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
