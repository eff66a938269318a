package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// focalDepth is the z distance of the image plane used to build rays.
const focalDepth = 2

// Camera is a fixed-position viewer steered by yaw and pitch in degrees.
type Camera struct {
	Location mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

// Rotate adds angle deltas and wraps both angles into [0,360).
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw = WrapDegrees(c.Yaw + dYaw)
	c.Pitch = WrapDegrees(c.Pitch + dPitch)
}

// Drag turns a cursor delta in pixels into a rotation. Dragging right turns
// right, dragging up looks up.
func (c *Camera) Drag(dx, dy, sensitivity float32) {
	c.Rotate(-dx*sensitivity, -dy*sensitivity)
}

// View returns the camera-to-world rotation applied to view-space rays.
func (c Camera) View() mgl32.Mat4 {
	yaw := mgl32.HomogRotate3DY(mgl32.DegToRad(c.Yaw))
	pitch := mgl32.HomogRotate3DX(mgl32.DegToRad(c.Pitch))
	return yaw.Mul4(pitch)
}

// WrapDegrees folds an angle into [0,360).
func WrapDegrees(a float32) float32 {
	return wrap(a, 360)
}

// PixelRay returns the world-space direction through pixel (x, y), where y
// grows upward as in window coordinates. Samples are taken at pixel centres.
func PixelRay(x, y, width, height int, view mgl32.Mat4) mgl32.Vec3 {
	w, h := float32(width), float32(height)
	u := (float32(x)+0.5)/w*2 - 1
	v := (float32(y)+0.5)/h*2 - 1
	return RayDirection(u*w/h, v, view)
}

// RayDirection rotates the view-space ray through aspect-corrected NDC
// (u, v) into world space.
func RayDirection(u, v float32, view mgl32.Mat4) mgl32.Vec3 {
	d := mgl32.Vec3{u, v, -focalDepth}.Normalize()
	return view.Mul4x1(d.Vec4(1)).Vec3()
}
