package core

import "github.com/go-gl/mathgl/mgl32"

// CuttingCube is an axis-aligned clip region in normalized volume space
// [-1,1]. Rays only composite inside it. The bounds are mutated by an
// external widget-drag handler through the setters; the render path reads
// them every frame.
type CuttingCube struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func NewCuttingCube() *CuttingCube {
	return &CuttingCube{
		Min: mgl32.Vec3{-1, -1, -1},
		Max: mgl32.Vec3{1, 1, 1},
	}
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// SetMin moves one face of the lower bound, keeping min <= max.
func (c *CuttingCube) SetMin(axis int, v float32) {
	v = clampUnit(v)
	if v > c.Max[axis] {
		v = c.Max[axis]
	}
	c.Min[axis] = v
}

// SetMax moves one face of the upper bound, keeping min <= max.
func (c *CuttingCube) SetMax(axis int, v float32) {
	v = clampUnit(v)
	if v < c.Min[axis] {
		v = c.Min[axis]
	}
	c.Max[axis] = v
}

func (c *CuttingCube) Reset() {
	c.Min = mgl32.Vec3{-1, -1, -1}
	c.Max = mgl32.Vec3{1, 1, 1}
}

// ModelMatrix maps the unit cube [-1,1]^3 onto the current bounds. The
// widget renderer uses it to draw the cube outline.
func (c *CuttingCube) ModelMatrix() mgl32.Mat4 {
	center := c.Min.Add(c.Max).Mul(0.5)
	half := c.Max.Sub(c.Min).Mul(0.5)
	return mgl32.Translate3D(center.X(), center.Y(), center.Z()).
		Mul4(mgl32.Scale3D(half.X(), half.Y(), half.Z()))
}
