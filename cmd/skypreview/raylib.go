package main

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"cloudsky/driver"
)

// windowPresenter streams software frames into a raylib texture scaled up
// to the window.
type windowPresenter struct {
	texture rl.Texture2D
	scale   float32
	pixels  []color.RGBA
	showFPS bool
}

func newWindowPresenter(width, height int, scale float32, showFPS bool) *windowPresenter {
	img := rl.GenImageColor(width, height, rl.Black)
	defer rl.UnloadImage(img)
	tex := rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	return &windowPresenter{texture: tex, scale: scale, showFPS: showFPS}
}

func (p *windowPresenter) Present(img *image.RGBA) error {
	p.pixels = toColors(p.pixels, img)
	rl.UpdateTexture(p.texture, p.pixels)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	rl.DrawTextureEx(p.texture, rl.NewVector2(0, 0), 0, p.scale, rl.White)
	if p.showFPS {
		rl.DrawFPS(10, 10)
	}
	rl.EndDrawing()
	return nil
}

func (p *windowPresenter) Close() { rl.UnloadTexture(p.texture) }

// toColors copies img into dst, reusing its storage when large enough.
func toColors(dst []color.RGBA, img *image.RGBA) []color.RGBA {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if cap(dst) < n {
		dst = make([]color.RGBA, n)
	}
	dst = dst[:n]
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst[i] = img.RGBAAt(x, y)
			i++
		}
	}
	return dst
}

// windowInput reads raylib's keyboard and mouse state. raylib polls events
// inside EndDrawing, so Poll has nothing to do.
type windowInput struct{}

func (windowInput) Poll() {}

func (windowInput) KeyDown(k driver.Key) bool {
	switch k {
	case driver.KeyExit:
		return rl.WindowShouldClose()
	case driver.KeyExport:
		return rl.IsKeyPressed(rl.KeyF12)
	}
	return false
}

func (windowInput) DragDelta() (float32, float32) {
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		return 0, 0
	}
	d := rl.GetMouseDelta()
	return d.X, d.Y
}
