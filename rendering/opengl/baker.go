package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/rs/zerolog/log"

	"cloudsky/gpu"
	"cloudsky/noise"
	"cloudsky/rendering/opengl/shaders"
)

// ErrProgramUnavailable is returned by a bake whose compute program failed
// to compile or link.
var ErrProgramUnavailable = errors.New("compute program unavailable")

// Point grids are bound to these storage buffer slots, coarse to fine.
const firstGridBinding = 1

// TextureSource exposes the noise textures a backend baked into.
type TextureSource interface {
	Texture(layer noise.Layer) *VolumeTexture
}

// NoiseBaker bakes noise volumes with compute shaders. The 3-D program
// serves the shape and detail layers, the 2-D program the weather layer.
type NoiseBaker struct {
	volume  *Program
	weather *Program
	errs    [2]error

	textures [len(noise.Layers)]*VolumeTexture
}

// NewNoiseBaker compiles both compute programs once. A program that fails
// to build is logged and every bake that needs it returns
// ErrProgramUnavailable.
func NewNoiseBaker(src shaders.Provider) *NoiseBaker {
	b := &NoiseBaker{}
	b.volume, b.errs[0] = NewProgram("compute_main", src, Stage{gl.COMPUTE_SHADER, shaders.ComputeMain})
	b.weather, b.errs[1] = NewProgram("compute_weather", src, Stage{gl.COMPUTE_SHADER, shaders.ComputeWeather})
	for _, err := range b.errs {
		if err != nil {
			log.Error().Err(err).Msg("compute program not built")
		}
	}
	return b
}

func (b *NoiseBaker) Name() string { return "gpu" }

func (b *NoiseBaker) program(layer noise.Layer) (*Program, error) {
	if layer.Dims() == 2 {
		return b.weather, b.errs[1]
	}
	return b.volume, b.errs[0]
}

// BakeVolume replaces the layer's texture with a freshly dispatched bake.
// The previous texture stays bound unless the dispatch succeeds.
func (b *NoiseBaker) BakeVolume(layer noise.Layer, s noise.BakeSettings, grids [3]noise.PointGrid) error {
	prog, err := b.program(layer)
	if prog == nil {
		return fmt.Errorf("%w: %v", ErrProgramUnavailable, err)
	}

	clearErrors()
	tex := NewVolumeTexture(layer, s.Resolution)
	return swapOnSuccess(&b.textures[layer], tex, b.dispatch(prog, tex, layer, s, grids))
}

func (b *NoiseBaker) dispatch(prog *Program, tex *VolumeTexture, layer noise.Layer, s noise.BakeSettings, grids [3]noise.PointGrid) error {
	var ssbos [3]uint32
	gl.GenBuffers(int32(len(ssbos)), &ssbos[0])
	defer gl.DeleteBuffers(int32(len(ssbos)), &ssbos[0])
	for i, g := range grids {
		uploadGrid(ssbos[i], uint32(firstGridBinding+i), g)
	}

	prog.Bind()
	defer prog.Unbind()
	tex.BindImage(0)
	prog.Set1i("resolution", int32(s.Resolution))
	prog.Set1f("persistence", s.Persistence)
	prog.Set1i("subdivisions_a", int32(s.SubdivisionsA))
	prog.Set1i("subdivisions_b", int32(s.SubdivisionsB))
	prog.Set1i("subdivisions_c", int32(s.SubdivisionsC))

	groups := uint32(s.Groups())
	depth := groups
	if layer.Dims() == 2 {
		depth = 1
	}
	if groups > 0 {
		gl.DispatchCompute(groups, groups, depth)
	}
	gl.MemoryBarrier(gl.ALL_BARRIER_BITS)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("dispatch %s kernel: gl error 0x%x", layer, code)
	}
	return nil
}

// swapOnSuccess installs fresh in slot when err is nil and deletes the
// texture it replaces. On failure fresh is deleted and slot is untouched.
func swapOnSuccess[T interface{ Delete() }](slot *T, fresh T, err error) error {
	if err != nil {
		fresh.Delete()
		return err
	}
	(*slot).Delete()
	*slot = fresh
	return nil
}

// clearErrors drains stale error flags so a bake only reports its own.
func clearErrors() {
	for gl.GetError() != gl.NO_ERROR {
	}
}

// uploadGrid sizes the buffer for n³ points whatever the grid's
// dimensionality and copies the points to its start.
func uploadGrid(buffer, binding uint32, g noise.PointGrid) {
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, buffer)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, g.BufferSize(), nil, gl.STATIC_DRAW)
	if len(g.Points) > 0 {
		gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(g.Points)*noise.PointBytes, gl.Ptr(g.Points))
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, buffer)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
}

func (b *NoiseBaker) Texture(layer noise.Layer) *VolumeTexture {
	return b.textures[layer]
}

// Cleanup deletes the programs and every baked texture.
func (b *NoiseBaker) Cleanup() {
	for i, t := range b.textures {
		t.Delete()
		b.textures[i] = nil
	}
	if b.volume != nil {
		b.volume.Delete()
	}
	if b.weather != nil {
		b.weather.Delete()
	}
}

// HostBaker bakes on the CPU and uploads the result, for drivers without
// compute shader support.
type HostBaker struct {
	cpu      *gpu.CPUCompute
	textures [len(noise.Layers)]*VolumeTexture
}

func NewHostBaker() *HostBaker {
	return &HostBaker{cpu: gpu.NewCPUCompute()}
}

func (h *HostBaker) Name() string { return h.cpu.Name() }

func (h *HostBaker) BakeVolume(layer noise.Layer, s noise.BakeSettings, grids [3]noise.PointGrid) error {
	if err := h.cpu.BakeVolume(layer, s, grids); err != nil {
		return err
	}
	clearErrors()
	tex := NewVolumeTexture(layer, s.Resolution)
	tex.Upload(h.cpu.Volume(layer))
	var err error
	if code := gl.GetError(); code != gl.NO_ERROR {
		err = fmt.Errorf("upload %s texture: gl error 0x%x", layer, code)
	}
	return swapOnSuccess(&h.textures[layer], tex, err)
}

func (h *HostBaker) Texture(layer noise.Layer) *VolumeTexture {
	return h.textures[layer]
}

func (h *HostBaker) Cleanup() {
	for i, t := range h.textures {
		t.Delete()
		h.textures[i] = nil
	}
	h.cpu.Cleanup()
}

// HasComputeShaders reports whether the current context is GL 4.3 or newer.
func HasComputeShaders() bool {
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	return major > 4 || (major == 4 && minor >= 3)
}
