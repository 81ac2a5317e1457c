package lasso

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/voxscope/voxscope/core"
)

// MaxContourPoints caps a single contour after simplification. Longer input
// is clamped with a warning rather than rejected.
const MaxContourPoints = 512

// Contour is one closed freehand polygon in normalized device coordinates,
// together with the camera matrices that were active when it was drawn.
// Voxels are tested against the polygon through that stored camera, so the
// cut stays where the user drew it no matter how the camera moves later.
// Immutable once created.
type Contour struct {
	ID     uuid.UUID
	Points []mgl32.Vec2

	View mgl32.Mat4
	Proj mgl32.Mat4

	// Derived at construction.
	AABBMin  mgl32.Vec2
	AABBMax  mgl32.Vec2
	Normal   mgl32.Vec3 // camera forward at draw time
	Centroid mgl32.Vec2
}

// NewContour simplifies the raw polyline and builds an immutable contour.
// Contours that collapse below 3 points are discarded (nil, error).
func NewContour(raw []mgl32.Vec2, view, proj mgl32.Mat4, eps float32, log core.Logger) (*Contour, error) {
	points := Simplify(raw, eps)
	if len(points) > MaxContourPoints {
		log.Warnf("contour has %d points after simplification, clamping to %d", len(points), MaxContourPoints)
		points = points[:MaxContourPoints]
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("contour degenerated to %d points", len(points))
	}

	c := &Contour{
		ID:     uuid.New(),
		Points: points,
		View:   view,
		Proj:   proj,
	}

	c.AABBMin = points[0]
	c.AABBMax = points[0]
	var sum mgl32.Vec2
	for _, p := range points {
		if p.X() < c.AABBMin[0] {
			c.AABBMin[0] = p.X()
		}
		if p.Y() < c.AABBMin[1] {
			c.AABBMin[1] = p.Y()
		}
		if p.X() > c.AABBMax[0] {
			c.AABBMax[0] = p.X()
		}
		if p.Y() > c.AABBMax[1] {
			c.AABBMax[1] = p.Y()
		}
		sum = sum.Add(p)
	}
	c.Centroid = sum.Mul(1 / float32(len(points)))

	invView := view.Inv()
	fwd := invView.Mul4x1(mgl32.Vec4{0, 0, -1, 0})
	c.Normal = fwd.Vec3().Normalize()

	return c, nil
}

// Contains tests a point in this contour's NDC space against the polygon,
// even-odd rule. The AABB check rejects most points cheaply; points exactly
// on the AABB edge fall through to the full test. Edges are half-open
// (lower vertex included), so a point on a shared vertex is counted once.
func (c *Contour) Contains(p mgl32.Vec2) bool {
	if p.X() < c.AABBMin.X() || p.X() > c.AABBMax.X() ||
		p.Y() < c.AABBMin.Y() || p.Y() > c.AABBMax.Y() {
		return false
	}

	inside := false
	n := len(c.Points)
	for i := 0; i < n; i++ {
		a := c.Points[i]
		b := c.Points[(i+1)%n]
		if (a.Y() > p.Y()) != (b.Y() > p.Y()) {
			xCross := a.X() + (p.Y()-a.Y())/(b.Y()-a.Y())*(b.X()-a.X())
			if p.X() < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsObjectPoint projects an object-space point through the stored
// camera and tests it against the polygon. Points behind the camera are
// never inside.
func (c *Contour) ContainsObjectPoint(p mgl32.Vec3, model mgl32.Mat4) bool {
	world := model.Mul4x1(p.Vec4(1))
	clip := c.Proj.Mul4(c.View).Mul4x1(world)
	if clip.W() <= 1e-7 {
		return false
	}
	ndc := mgl32.Vec2{clip.X() / clip.W(), clip.Y() / clip.W()}
	return c.Contains(ndc)
}
