package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"

	"cloudsky/rendering/opengl/shaders"
)

// Program is a linked shader program with lazily resolved, cached uniform
// locations. Setting a uniform the program does not declare is a no-op
// that is logged once per name.
type Program struct {
	name      string
	id        uint32
	locations map[string]int32
	locate    func(name string) int32
}

// Stage pairs a shader type with the source file it is loaded from.
type Stage struct {
	Type uint32
	File string
}

// NewProgram loads, compiles and links the given stages.
func NewProgram(name string, src shaders.Provider, stages ...Stage) (*Program, error) {
	sources := make(map[uint32]string, len(stages))
	for _, s := range stages {
		text, err := src.Source(s.File)
		if err != nil {
			return nil, fmt.Errorf("program %s: %w", name, err)
		}
		sources[s.Type] = text
	}
	id, err := shaders.Build(sources)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	p := &Program{name: name, id: id, locations: map[string]int32{}}
	p.locate = func(uniform string) int32 {
		return gl.GetUniformLocation(p.id, gl.Str(uniform+"\x00"))
	}
	return p, nil
}

// ID is the GL program name.
func (p *Program) ID() uint32 { return p.id }

func (p *Program) Bind()   { gl.UseProgram(p.id) }
func (p *Program) Unbind() { gl.UseProgram(0) }

// Delete releases the program. It is safe to call more than once.
func (p *Program) Delete() {
	if p.id == 0 {
		return
	}
	gl.DeleteProgram(p.id)
	p.id = 0
}

// location returns the cached location of a uniform, or -1.
func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.locate(name)
	if loc < 0 {
		log.Warn().Str("program", p.name).Str("uniform", name).Msg("unknown uniform, ignoring")
	}
	p.locations[name] = loc
	return loc
}

func (p *Program) Set1i(name string, v int32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}

func (p *Program) Set2i(name string, x, y int32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform2i(loc, x, y)
	}
}

func (p *Program) Set3i(name string, x, y, z int32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform3i(loc, x, y, z)
	}
}

func (p *Program) Set4i(name string, x, y, z, w int32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform4i(loc, x, y, z, w)
	}
}

func (p *Program) Set1f(name string, v float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (p *Program) Set2f(name string, x, y float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform2f(loc, x, y)
	}
}

func (p *Program) Set3f(name string, x, y, z float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform3f(loc, x, y, z)
	}
}

func (p *Program) Set4f(name string, x, y, z, w float32) {
	if loc := p.location(name); loc >= 0 {
		gl.Uniform4f(loc, x, y, z, w)
	}
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) { p.Set2f(name, v[0], v[1]) }
func (p *Program) SetVec3(name string, v mgl32.Vec3) { p.Set3f(name, v[0], v[1], v[2]) }

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	if loc := p.location(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}
