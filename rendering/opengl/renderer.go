// Package opengl draws the clouds with a GL 4.3 core context: noise is
// baked by compute shaders and the integrator runs in a fragment shader on
// a screen-filling quad.
package opengl

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog/log"

	"cloudsky/driver"
	"cloudsky/gpu"
	"cloudsky/noise"
	"cloudsky/rendering"
	"cloudsky/rendering/opengl/overlay"
	"cloudsky/rendering/opengl/shaders"
)

// Options configure the window and the bake backend.
type Options struct {
	Width, Height int
	Title         string
	Fullscreen    bool
	VSync         bool
	// Backend is "gpu", "cpu" or "auto".
	Backend        string
	Seed           int64
	ReseedEachBake bool
	Shaders        shaders.Provider
	// Stats draws the status panel over presented frames. Exported frames
	// never include it.
	Stats bool
}

// Renderer owns the window, the cloud program and the baked noise
// textures. All methods must be called from the thread that created it.
type Renderer struct {
	window   *glfw.Window
	program  *Program
	quad     *Quad
	baker    *gpu.Baker
	textures TextureSource
	backends []gpu.NoiseBackend
	stats    *overlay.StatsOverlay

	width, height int
	pixels        []uint8
	frame         *image.RGBA
}

// NewRenderer opens the window and builds the cloud program. A program
// that fails to compile is fatal to the renderer.
func NewRenderer(opts Options) (*Renderer, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if opts.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	window, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info().
		Str("version", gl.GoStr(gl.GetString(gl.VERSION))).
		Str("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		Msg("OpenGL context ready")

	src := opts.Shaders
	if src == nil {
		src = shaders.Embedded{}
	}
	program, err := NewProgram("clouds", src,
		Stage{gl.VERTEX_SHADER, shaders.Vertex},
		Stage{gl.FRAGMENT_SHADER, shaders.Fragment})
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to build cloud shaders: %w", err)
	}

	r := &Renderer{
		window:  window,
		program: program,
		quad:    NewQuad(),
	}
	r.width, r.height = window.GetFramebufferSize()

	if HasComputeShaders() {
		r.backends = append(r.backends, NewNoiseBaker(src))
	} else {
		log.Warn().Msg("compute shaders unsupported, baking on the CPU")
	}
	r.backends = append(r.backends, NewHostBaker())
	backend, err := gpu.Select(opts.Backend, r.backends...)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.textures = backend.(TextureSource)
	r.baker = gpu.NewBaker(backend, opts.Seed, opts.ReseedEachBake)
	log.Info().Str("backend", backend.Name()).Msg("noise backend selected")

	program.Bind()
	rendering.PushSamplers(program)

	if opts.Stats {
		if r.stats, err = overlay.NewStatsOverlay(src, r.width, r.height); err != nil {
			log.Warn().Err(err).Msg("status panel disabled")
		}
	}

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		r.width, r.height = w, h
		if r.stats != nil {
			r.stats.Resize(w, h)
		}
	})
	return r, nil
}

// Window exposes the glfw window for input handling.
func (r *Renderer) Window() *glfw.Window { return r.window }

func (r *Renderer) Bake(layer noise.Layer, s noise.BakeSettings) error {
	return r.baker.Bake(layer, s)
}

// Render draws one frame into the back buffer.
func (r *Renderer) Render(f rendering.FrameState) error {
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.program.Bind()
	for _, l := range noise.Layers {
		if tex := r.textures.Texture(l); tex != nil {
			tex.BindUnit(rendering.TextureUnit(l))
		}
	}
	rendering.PushFrame(r.program, f)
	r.quad.Draw()

	if code := gl.GetError(); code != gl.NO_ERROR {
		log.Debug().Uint32("code", code).Uint64("frame", f.Frame).Msg("OpenGL error after draw")
	}
	return nil
}

// Capture reads the back buffer into an RGBA image with the first row at
// the top.
func (r *Renderer) Capture() (*image.RGBA, error) {
	w, h := r.width, r.height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("capture: empty framebuffer %dx%d", w, h)
	}
	if r.frame == nil || r.frame.Bounds().Dx() != w || r.frame.Bounds().Dy() != h {
		r.frame = image.NewRGBA(image.Rect(0, 0, w, h))
		r.pixels = make([]uint8, 4*w*h)
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(r.pixels))
	FlipRows(r.frame.Pix, r.pixels, 4*w, h)
	return r.frame, nil
}

// FlipRows copies h rows of stride bytes from src to dst in reverse order.
func FlipRows(dst, src []uint8, stride, h int) {
	for y := 0; y < h; y++ {
		copy(dst[y*stride:(y+1)*stride], src[(h-1-y)*stride:(h-y)*stride])
	}
}

// Present draws the status panel, if enabled, and swaps buffers.
func (r *Renderer) Present() error {
	if r.stats != nil {
		r.stats.Render()
	}
	r.window.SwapBuffers()
	return nil
}

// ShowStatus updates the status panel. It is a no-op when the panel is
// disabled.
func (r *Renderer) ShowStatus(s driver.Status) {
	if r.stats != nil {
		r.stats.Update(overlay.StatsFromStatus(s))
	}
}

func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Close releases every GL object, then the window.
func (r *Renderer) Close() {
	for _, b := range r.backends {
		b.Cleanup()
	}
	if r.stats != nil {
		r.stats.Release()
	}
	r.quad.Delete()
	r.program.Delete()
	r.window.Destroy()
	glfw.Terminate()
}
