package noise

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Sampler3D reads a 3-D noise field at normalized, repeating coordinates.
type Sampler3D interface {
	Sample3(p mgl32.Vec3) float32
}

// Sampler2D reads a 2-D noise field at normalized, repeating coordinates.
type Sampler2D interface {
	Sample2(p mgl32.Vec2) float32
}

// Volume is a baked single channel noise texture.
type Volume struct {
	Layer      Layer
	Dims       int
	Resolution int
	Data       []float32
}

// NewVolume allocates a zeroed volume sized for the layer.
func NewVolume(layer Layer, resolution int) *Volume {
	v := &Volume{Layer: layer, Dims: layer.Dims(), Resolution: resolution}
	if resolution > 0 {
		n := resolution * resolution
		if v.Dims == 3 {
			n *= resolution
		}
		v.Data = make([]float32, n)
	}
	return v
}

func (v *Volume) index(x, y, z int) int {
	r := v.Resolution
	return x + r*(y+z*r)
}

// At returns a texel without filtering.
func (v *Volume) At(x, y, z int) float32 {
	return v.Data[v.index(x, y, z)]
}

// Set stores a texel.
func (v *Volume) Set(x, y, z int, value float32) {
	v.Data[v.index(x, y, z)] = value
}

// Slice renders depth z as a greyscale image, one pixel per texel. z is
// ignored for 2-D layers and wraps for 3-D ones.
func (v *Volume) Slice(z int) *image.Gray {
	r := v.Resolution
	img := image.NewGray(image.Rect(0, 0, r, r))
	if len(v.Data) == 0 {
		return img
	}
	if v.Dims == 2 {
		z = 0
	} else {
		z = wrap(z, r)
	}
	for y := 0; y < r; y++ {
		for x := 0; x < r; x++ {
			val := mgl32.Clamp(v.At(x, y, z), 0, 1)
			img.SetGray(x, y, color.Gray{Y: uint8(val*255 + 0.5)})
		}
	}
	return img
}

// Sample3 filters trilinearly between texel centres and wraps on every axis.
func (v *Volume) Sample3(p mgl32.Vec3) float32 {
	if len(v.Data) == 0 {
		return 0
	}
	if v.Dims == 2 {
		return v.Sample2(mgl32.Vec2{p[0], p[1]})
	}
	x0, x1, fx := v.axis(p[0])
	y0, y1, fy := v.axis(p[1])
	z0, z1, fz := v.axis(p[2])

	c00 := lerp(v.At(x0, y0, z0), v.At(x1, y0, z0), fx)
	c10 := lerp(v.At(x0, y1, z0), v.At(x1, y1, z0), fx)
	c01 := lerp(v.At(x0, y0, z1), v.At(x1, y0, z1), fx)
	c11 := lerp(v.At(x0, y1, z1), v.At(x1, y1, z1), fx)
	return lerp(lerp(c00, c10, fy), lerp(c01, c11, fy), fz)
}

// Sample2 filters bilinearly between texel centres and wraps on both axes.
func (v *Volume) Sample2(p mgl32.Vec2) float32 {
	if len(v.Data) == 0 {
		return 0
	}
	x0, x1, fx := v.axis(p[0])
	y0, y1, fy := v.axis(p[1])
	return lerp(
		lerp(v.At(x0, y0, 0), v.At(x1, y0, 0), fx),
		lerp(v.At(x0, y1, 0), v.At(x1, y1, 0), fx),
		fy,
	)
}

// axis returns the two texels straddling coordinate u and the blend weight.
func (v *Volume) axis(u float32) (int, int, float32) {
	r := v.Resolution
	t := float64(u)*float64(r) - 0.5
	f := math.Floor(t)
	i0 := wrap(int(f), r)
	return i0, wrap(i0+1, r), float32(t - f)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
