package opengl

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"cloudsky/driver"
)

// Input turns glfw callbacks into the driver's per-frame input. Dragging
// with the left button held rotates the camera; Escape or closing the
// window exits; F12 toggles export.
type Input struct {
	window   *glfw.Window
	dragging bool
	lastX    float64
	lastY    float64
	dx, dy   float32
	export   bool
}

func NewInput(window *glfw.Window) *Input {
	in := &Input{window: window}
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		switch action {
		case glfw.Press:
			in.dragging = true
			in.lastX, in.lastY = w.GetCursorPos()
		case glfw.Release:
			in.dragging = false
		}
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		in.move(x, y)
	})
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyF12 && action == glfw.Press {
			in.export = true
		}
	})
	return in
}

func (in *Input) move(x, y float64) {
	if !in.dragging {
		return
	}
	in.dx += float32(x - in.lastX)
	in.dy += float32(y - in.lastY)
	in.lastX, in.lastY = x, y
}

func (in *Input) Poll() { glfw.PollEvents() }

func (in *Input) KeyDown(k driver.Key) bool {
	switch k {
	case driver.KeyExit:
		return in.window.ShouldClose() || in.window.GetKey(glfw.KeyEscape) == glfw.Press
	case driver.KeyExport:
		pressed := in.export
		in.export = false
		return pressed
	}
	return false
}

func (in *Input) DragDelta() (float32, float32) {
	dx, dy := in.dx, in.dy
	in.dx, in.dy = 0, 0
	return dx, dy
}
