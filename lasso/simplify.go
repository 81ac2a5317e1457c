// Package lasso implements freehand contour capture and the volumetric
// visibility mask rasterized from it.
package lasso

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Simplify reduces a polyline with Ramer-Douglas-Peucker: a point survives
// only if its perpendicular distance from the chord between the segment
// endpoints exceeds eps. Deterministic, no side effects. Endpoints are
// always kept.
func Simplify(points []mgl32.Vec2, eps float32) []mgl32.Vec2 {
	if len(points) <= 2 {
		return append([]mgl32.Vec2(nil), points...)
	}
	if eps < 0 {
		eps = 0
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	simplifyRange(points, 0, len(points)-1, eps, keep)

	out := make([]mgl32.Vec2, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func simplifyRange(points []mgl32.Vec2, first, last int, eps float32, keep []bool) {
	if last-first < 2 {
		return
	}

	maxDist := float32(-1)
	maxIdx := -1
	for i := first + 1; i < last; i++ {
		d := perpendicularDistance(points[i], points[first], points[last])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist > eps {
		keep[maxIdx] = true
		simplifyRange(points, first, maxIdx, eps, keep)
		simplifyRange(points, maxIdx, last, eps, keep)
	}
}

// perpendicularDistance is the distance from p to the segment ab. When a
// and b coincide the chord degenerates and the point distance is used, so
// duplicate input points never divide by zero.
func perpendicularDistance(p, a, b mgl32.Vec2) float32 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < 1e-12 {
		return p.Sub(a).Len()
	}
	cross := ab.X()*(p.Y()-a.Y()) - ab.Y()*(p.X()-a.X())
	return float32(math.Abs(float64(cross))) / float32(math.Sqrt(float64(lenSq)))
}
