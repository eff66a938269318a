// Package rendering defines what one rendered frame consumes: the frame
// state snapshot and the uniform protocol that feeds it to a shader.
package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"cloudsky/core"
)

// TimeScale converts the frame counter into the animation clock used for
// wind advection.
const TimeScale = 1.0 / 1000

// FrameState is the immutable input of one frame.
type FrameState struct {
	Frame          uint64
	Width          int
	Height         int
	CameraLocation mgl32.Vec3
	View           mgl32.Mat4
	Params         core.RenderParameters
}

// NewFrameState snapshots the camera and parameters for frame n.
func NewFrameState(n uint64, width, height int, cam core.Camera, params core.RenderParameters) FrameState {
	return FrameState{
		Frame:          n,
		Width:          width,
		Height:         height,
		CameraLocation: cam.Location,
		View:           cam.View(),
		Params:         params,
	}
}

// Time is the wind clock for this frame.
func (f FrameState) Time() float32 {
	return float32(f.Frame) * TimeScale
}
