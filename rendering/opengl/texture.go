package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"cloudsky/noise"
)

// VolumeTexture is a single channel (R8) noise texture, 3-D for the shape
// and detail layers and 2-D for the weather layer. It samples with linear
// filtering and repeats on every axis.
type VolumeTexture struct {
	id         uint32
	layer      noise.Layer
	resolution int
}

// NewVolumeTexture allocates storage for a resolution-sided volume.
func NewVolumeTexture(layer noise.Layer, resolution int) *VolumeTexture {
	t := &VolumeTexture{layer: layer, resolution: resolution}
	target := t.target()
	res := int32(resolution)

	gl.GenTextures(1, &t.id)
	gl.BindTexture(target, t.id)
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.REPEAT)
	if layer.Dims() == 3 {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, gl.REPEAT)
		gl.TexImage3D(target, 0, gl.R8, res, res, res, 0, gl.RED, gl.UNSIGNED_BYTE, nil)
	} else {
		gl.TexImage2D(target, 0, gl.R8, res, res, 0, gl.RED, gl.UNSIGNED_BYTE, nil)
	}
	gl.BindTexture(target, 0)
	return t
}

func (t *VolumeTexture) target() uint32 {
	if t.layer.Dims() == 3 {
		return gl.TEXTURE_3D
	}
	return gl.TEXTURE_2D
}

func (t *VolumeTexture) ID() uint32         { return t.id }
func (t *VolumeTexture) Resolution() int    { return t.resolution }
func (t *VolumeTexture) Layer() noise.Layer { return t.layer }

// BindUnit binds the texture for sampling on a texture unit.
func (t *VolumeTexture) BindUnit(unit int32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(t.target(), t.id)
}

// BindImage binds level 0 as a write-only R8 image for a compute kernel.
func (t *VolumeTexture) BindImage(unit uint32) {
	layered := t.layer.Dims() == 3
	gl.BindImageTexture(unit, t.id, 0, layered, 0, gl.WRITE_ONLY, gl.R8)
}

// Upload replaces the texels with a volume baked on the host.
func (t *VolumeTexture) Upload(v *noise.Volume) {
	res := int32(t.resolution)
	if v == nil || v.Resolution != t.resolution || len(v.Data) == 0 {
		return
	}
	texels := QuantizeR8(v.Data)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.BindTexture(t.target(), t.id)
	if t.layer.Dims() == 3 {
		gl.TexSubImage3D(t.target(), 0, 0, 0, 0, res, res, res, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(texels))
	} else {
		gl.TexSubImage2D(t.target(), 0, 0, 0, res, res, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(texels))
	}
	gl.BindTexture(t.target(), 0)
}

// Delete releases the texture. It is safe to call more than once.
func (t *VolumeTexture) Delete() {
	if t == nil || t.id == 0 {
		return
	}
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}

// QuantizeR8 converts [0,1] texels to the byte layout of an R8 texture.
func QuantizeR8(data []float32) []uint8 {
	out := make([]uint8, len(data))
	for i, v := range data {
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 1:
			out[i] = 255
		default:
			out[i] = uint8(v*255 + 0.5)
		}
	}
	return out
}
