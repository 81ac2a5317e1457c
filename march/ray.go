// Package march is the CPU ray-march kernel. It renders the same image the
// compute shader renders, sample for sample, and exists so the marching
// semantics (chunk skipping, masking, shading, termination) stay testable
// without a GPU device.
package march

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/volume"
)

// rayEpsilon pushes a jump target just past a chunk boundary so the next
// sample lands inside the neighbor chunk instead of re-testing the same one.
const rayEpsilon = 1e-4

// IntersectBox is the slab test against an axis-aligned box. Returns the
// entry and exit distances along the ray and whether the ray hits at all.
// A zero direction component degenerates the slab to the origin's position:
// outside the slab means a guaranteed miss.
func IntersectBox(origin, dir, boxMin, boxMax mgl32.Vec3) (tNear, tFar float32, hit bool) {
	tNear = float32(math.Inf(-1))
	tFar = float32(math.Inf(1))

	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		if d == 0 {
			if o < boxMin[axis] || o > boxMax[axis] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		t0 := (boxMin[axis] - o) * inv
		t1 := (boxMax[axis] - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
	}

	if tNear > tFar || tFar < 0 {
		return 0, 0, false
	}
	return tNear, tFar, true
}

// ChunkExitT returns the distance at which the ray leaves the chunk that
// contains the object-space point at distance t. The result is strictly
// greater than t, so a skipping march always makes progress even when the
// sample sits exactly on a chunk face.
func ChunkExitT(origin, dir mgl32.Vec3, t float32, vol *volume.Volume, grid *volume.ChunkGrid) float32 {
	p := origin.Add(dir.Mul(t))
	vox := vol.ObjectToVoxel(p)
	cx, cy, cz := grid.ChunkOf(int(vox.X()), int(vox.Y()), int(vox.Z()))

	boxMin, boxMax := chunkBounds(cx, cy, cz, vol, grid)

	exit := float32(math.Inf(1))
	for axis := 0; axis < 3; axis++ {
		d := dir[axis]
		if d == 0 {
			continue
		}
		face := boxMax[axis]
		if d < 0 {
			face = boxMin[axis]
		}
		tx := (face - origin[axis]) / d
		if tx < exit {
			exit = tx
		}
	}

	exit += rayEpsilon
	if exit <= t {
		exit = t + rayEpsilon
	}
	return exit
}

// chunkBounds maps a chunk's voxel extent into object space [-1,1]. Edge
// chunks only cover the remainder of the volume.
func chunkBounds(cx, cy, cz int, vol *volume.Volume, grid *volume.ChunkGrid) (mgl32.Vec3, mgl32.Vec3) {
	cs := grid.ChunkSize
	x0, x1 := cx*cs, mini((cx+1)*cs, vol.Width)
	y0, y1 := cy*cs, mini((cy+1)*cs, vol.Height)
	z0, z1 := cz*cs, mini((cz+1)*cs, vol.Depth)

	boxMin := mgl32.Vec3{
		float32(x0)/float32(vol.Width)*2 - 1,
		float32(y0)/float32(vol.Height)*2 - 1,
		float32(z0)/float32(vol.Depth)*2 - 1,
	}
	boxMax := mgl32.Vec3{
		float32(x1)/float32(vol.Width)*2 - 1,
		float32(y1)/float32(vol.Height)*2 - 1,
		float32(z1)/float32(vol.Depth)*2 - 1,
	}
	return boxMin, boxMax
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}
