// Package overlay draws a small status panel over the rendered clouds:
// a frame rate bar and indicator lamps for export, bake warnings and errors.
package overlay

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"cloudsky/driver"
	"cloudsky/rendering/opengl/shaders"
)

// Panel geometry in pixels from the top-left corner.
const (
	Margin   = 10
	Padding  = 4
	BarWidth = 200
	BarHigh  = 12
	LampSize = 10

	// floats per vertex: position xy, colour rgba
	vertexFloats = 6
)

var (
	panelColor  = mgl32.Vec4{0, 0, 0, 0.45}
	exportColor = mgl32.Vec4{0.9, 0.1, 0.1, 1}
	warnColor   = mgl32.Vec4{1, 0.7, 0.1, 1}
	errorColor  = mgl32.Vec4{0.8, 0.2, 0.8, 1}
	slowColor   = mgl32.Vec4{0.9, 0.2, 0.1, 0.9}
	fastColor   = mgl32.Vec4{0.2, 0.9, 0.3, 0.9}
)

// Stats is the subset of the driver status the panel shows.
type Stats struct {
	FPS       float64
	TargetFPS int
	Exporting bool
	Warnings  int
	Failed    bool
}

// StatsFromStatus extracts the displayed values.
func StatsFromStatus(s driver.Status) Stats {
	st := Stats{
		FPS:       s.FPS,
		TargetFPS: s.TargetFPS,
		Exporting: s.Exporting,
		Failed:    s.LastError != "",
	}
	for _, w := range s.Warnings {
		st.Warnings += len(w)
	}
	return st
}

// Ratio is the measured frame rate relative to the target, in [0, 1].
func (s Stats) Ratio() float32 {
	if s.TargetFPS <= 0 {
		return 0
	}
	return mgl32.Clamp(float32(s.FPS/float64(s.TargetFPS)), 0, 1)
}

// Layout builds the triangle list for the panel in screen pixels.
func Layout(s Stats) []float32 {
	var v []float32
	x0, y0 := float32(Margin), float32(Margin)
	w := float32(BarWidth + 2*Padding)
	h := float32(BarHigh + LampSize + 3*Padding)
	v = rect(v, x0, y0, w, h, panelColor)

	ratio := s.Ratio()
	if ratio > 0 {
		c := slowColor.Add(fastColor.Sub(slowColor).Mul(ratio))
		v = rect(v, x0+Padding, y0+Padding, BarWidth*ratio, BarHigh, c)
	}

	lampY := y0 + 2*Padding + BarHigh
	lamps := []struct {
		on bool
		c  mgl32.Vec4
	}{
		{s.Exporting, exportColor},
		{s.Warnings > 0, warnColor},
		{s.Failed, errorColor},
	}
	for i, l := range lamps {
		if l.on {
			x := x0 + Padding + float32(i)*(LampSize+Padding)
			v = rect(v, x, lampY, LampSize, LampSize, l.c)
		}
	}
	return v
}

func rect(v []float32, x, y, w, h float32, c mgl32.Vec4) []float32 {
	corners := [6][2]float32{
		{x, y}, {x + w, y}, {x, y + h},
		{x + w, y}, {x + w, y + h}, {x, y + h},
	}
	for _, p := range corners {
		v = append(v, p[0], p[1], c[0], c[1], c[2], c[3])
	}
	return v
}

// StatsOverlay renders the panel with its own program and vertex buffer.
type StatsOverlay struct {
	program    uint32
	projection int32
	vao        uint32
	vbo        uint32

	width, height float32
	stats         Stats
}

// NewStatsOverlay builds the overlay program from src.
func NewStatsOverlay(src shaders.Provider, width, height int) (*StatsOverlay, error) {
	vs, err := src.Source(shaders.OverlayVertex)
	if err != nil {
		return nil, err
	}
	fs, err := src.Source(shaders.OverlayFragment)
	if err != nil {
		return nil, err
	}
	program, err := shaders.Build(map[uint32]string{
		gl.VERTEX_SHADER:   vs,
		gl.FRAGMENT_SHADER: fs,
	})
	if err != nil {
		return nil, fmt.Errorf("stats overlay: %w", err)
	}

	so := &StatsOverlay{
		program:    program,
		projection: gl.GetUniformLocation(program, gl.Str("projection\x00")),
	}
	so.Resize(width, height)

	gl.GenVertexArrays(1, &so.vao)
	gl.GenBuffers(1, &so.vbo)
	gl.BindVertexArray(so.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, so.vbo)

	stride := int32(vertexFloats * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return so, nil
}

// Update replaces the displayed values.
func (so *StatsOverlay) Update(s Stats) { so.stats = s }

func (so *StatsOverlay) Resize(width, height int) {
	so.width = float32(width)
	so.height = float32(height)
}

// Render blends the panel over the current framebuffer.
func (so *StatsOverlay) Render() {
	vertices := Layout(so.stats)
	if len(vertices) == 0 {
		return
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(so.program)

	projection := mgl32.Ortho2D(0, so.width, so.height, 0)
	gl.UniformMatrix4fv(so.projection, 1, false, &projection[0])

	gl.BindVertexArray(so.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, so.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/vertexFloats))

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

// Release deletes the GL objects.
func (so *StatsOverlay) Release() {
	if so.program != 0 {
		gl.DeleteProgram(so.program)
		so.program = 0
	}
	if so.vao != 0 {
		gl.DeleteVertexArrays(1, &so.vao)
	}
	if so.vbo != 0 {
		gl.DeleteBuffers(1, &so.vbo)
	}
}
