package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"
)

// Two triangles covering clip space.
var quadVertices = []float32{
	1, 1,
	-1, 1,
	1, -1,
	-1, -1,
	-1, 1,
	1, -1,
}

// Quad is the screen-filling geometry the cloud shader runs on.
type Quad struct {
	vao, vbo uint32
}

func NewQuad() *Quad {
	q := &Quad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)
	gl.BindVertexArray(q.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return q
}

func (q *Quad) Draw() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quadVertices)/2))
	gl.BindVertexArray(0)
}

func (q *Quad) Delete() {
	if q.vao != 0 {
		gl.DeleteVertexArrays(1, &q.vao)
	}
	if q.vbo != 0 {
		gl.DeleteBuffers(1, &q.vbo)
	}
	q.vao, q.vbo = 0, 0
}
