package shaders

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// Compile compiles a single shader stage. On failure the shader object is
// deleted and the error carries the driver's info log.
func Compile(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile %s shader: %s", StageName(shaderType), infoLog(logLength, func(n int32, buf *uint8) {
			gl.GetShaderInfoLog(shader, n, nil, buf)
		}))
	}

	return shader, nil
}

// Link links compiled stages into a program. The stages are detached and
// deleted whether or not linking succeeds.
func Link(stages ...uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, s := range stages {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)
	for _, s := range stages {
		gl.DetachShader(program, s)
		gl.DeleteShader(s)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link failed: %s", infoLog(logLength, func(n int32, buf *uint8) {
			gl.GetProgramInfoLog(program, n, nil, buf)
		}))
	}

	return program, nil
}

// Build compiles every (source, stage) pair and links them.
func Build(sources map[uint32]string) (uint32, error) {
	var stages []uint32
	for _, kind := range []uint32{gl.VERTEX_SHADER, gl.FRAGMENT_SHADER, gl.COMPUTE_SHADER} {
		src, ok := sources[kind]
		if !ok {
			continue
		}
		s, err := Compile(src, kind)
		if err != nil {
			for _, done := range stages {
				gl.DeleteShader(done)
			}
			return 0, err
		}
		stages = append(stages, s)
	}
	return Link(stages...)
}

// StageName is a readable name for a shader type constant.
func StageName(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	case gl.COMPUTE_SHADER:
		return "compute"
	}
	return fmt.Sprintf("0x%x", shaderType)
}

func infoLog(length int32, read func(int32, *uint8)) string {
	if length <= 0 {
		return "no info log"
	}
	buf := make([]byte, length)
	read(length, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}
