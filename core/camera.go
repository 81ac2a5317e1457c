package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minOrbitDistance = 0.3
	maxOrbitDistance = 50.0
	maxOrbitPitch    = 1.55 // just under pi/2
)

// CameraState is an orbit camera around a target point. The renderer reads
// fresh view/projection matrices from it every frame.
type CameraState struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32

	FovDeg      float32
	Near        float32
	Far         float32
	Sensitivity float32
	PanSpeed    float32
	ZoomSpeed   float32

	// DragEnabled is cleared while the lasso tool is active so that drawing
	// a contour does not also orbit the camera.
	DragEnabled bool
}

func NewCameraState() *CameraState {
	return &CameraState{
		Target:      mgl32.Vec3{0, 0, 0},
		Distance:    4.0,
		Yaw:         0.5,
		Pitch:       0.3,
		FovDeg:      45.0,
		Near:        0.05,
		Far:         100.0,
		Sensitivity: 0.005,
		PanSpeed:    0.002,
		ZoomSpeed:   0.1,
		DragEnabled: true,
	}
}

func (c *CameraState) Position() mgl32.Vec3 {
	cy, sy := float32(math.Cos(float64(c.Yaw))), float32(math.Sin(float64(c.Yaw)))
	cp, sp := float32(math.Cos(float64(c.Pitch))), float32(math.Sin(float64(c.Pitch)))
	offset := mgl32.Vec3{
		c.Distance * cp * sy,
		c.Distance * sp,
		c.Distance * cp * cy,
	}
	return c.Target.Add(offset)
}

func (c *CameraState) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *CameraState) ProjMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovDeg), aspect, c.Near, c.Far)
}

func (c *CameraState) Orbit(dx, dy float32) {
	if !c.DragEnabled {
		return
	}
	c.Yaw -= dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	if c.Pitch > maxOrbitPitch {
		c.Pitch = maxOrbitPitch
	}
	if c.Pitch < -maxOrbitPitch {
		c.Pitch = -maxOrbitPitch
	}
}

func (c *CameraState) Pan(dx, dy float32) {
	if !c.DragEnabled {
		return
	}
	view := c.ViewMatrix()
	right := mgl32.Vec3{view.At(0, 0), view.At(0, 1), view.At(0, 2)}
	up := mgl32.Vec3{view.At(1, 0), view.At(1, 1), view.At(1, 2)}
	scale := c.PanSpeed * c.Distance
	c.Target = c.Target.Sub(right.Mul(dx * scale)).Add(up.Mul(dy * scale))
}

func (c *CameraState) Zoom(delta float32) {
	c.Distance *= float32(math.Exp(float64(-delta * c.ZoomSpeed)))
	if c.Distance < minOrbitDistance {
		c.Distance = minOrbitDistance
	}
	if c.Distance > maxOrbitDistance {
		c.Distance = maxOrbitDistance
	}
}
