package march

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
	"github.com/voxscope/voxscope/volume"
)

// Object ids written to the pick buffer.
const (
	ObjectNone   uint32 = 0
	ObjectVolume uint32 = 1
)

// Scene bundles everything one ray march reads. All fields are read-only
// during a frame.
type Scene struct {
	Vol    *volume.Volume
	Chunks *volume.ChunkGrid
	Grad   *volume.GradientField

	// Mask has one entry per voxel, 1 = visible. Nil means no mask.
	Mask []uint32

	Transfer core.TransferFunction
	Cut      core.CuttingCube
	Params   core.RenderParams

	// LightDir points from the surface toward the light. Zero means
	// headlight (light rides the camera).
	LightDir mgl32.Vec3

	// SkipChunks toggles empty-space skipping. On in production; tests turn
	// it off to compare against the brute-force march.
	SkipChunks bool
}

// Result of marching a single ray, before background blending.
type Result struct {
	Color    mgl32.Vec3
	Alpha    float32
	ObjectID uint32
}

// MarchRay composites one ray front to back through the cutting cube.
// Every loop iteration counts against MaxSteps, chunk jumps included, so
// the per-ray cost is bounded no matter how the skip pattern works out.
func MarchRay(s *Scene, origin, dir mgl32.Vec3) Result {
	p := s.Params

	tNear, tFar, hit := IntersectBox(origin, dir, s.Cut.Min, s.Cut.Max)
	if !hit {
		return Result{}
	}
	if tNear < 0 {
		tNear = 0
	}

	light := s.LightDir
	if light == (mgl32.Vec3{}) {
		light = dir.Mul(-1)
	}
	light = light.Normalize()
	view := dir.Mul(-1)
	half := light.Add(view).Normalize()

	var accColor mgl32.Vec3
	var accAlpha float32

	// Samples sit on the fixed grid tNear + k*StepSize. Chunk jumps advance
	// k instead of t directly, so skipping never shifts the phase of later
	// samples and a skipped march composites the same values as a full one.
	t := tNear
	sample := 0
	for step := 0; step < p.MaxSteps && t < tFar; step++ {
		pos := origin.Add(dir.Mul(t))
		vox := s.Vol.ObjectToVoxel(pos)

		if s.SkipChunks && s.Chunks != nil {
			cx, cy, cz := s.Chunks.ChunkOf(int(vox.X()), int(vox.Y()), int(vox.Z()))
			r := s.Chunks.RangeAt(cx, cy, cz)
			if !s.Transfer.Overlaps(r.Min, r.Max) {
				exit := ChunkExitT(origin, dir, t, s.Vol, s.Chunks)
				sample = int(math.Ceil(float64((exit - tNear) / p.StepSize)))
				t = tNear + float32(sample)*p.StepSize
				continue
			}
		}

		if s.Mask != nil {
			if idx, ok := s.Vol.VoxelIndex(pos); ok && s.Mask[idx] == 0 {
				sample++
				t = tNear + float32(sample)*p.StepSize
				continue
			}
		}

		op := s.Transfer.Apply(s.Vol.Sample(vox))
		if op <= 0 {
			sample++
			t = tNear + float32(sample)*p.StepSize
			continue
		}

		alpha := op * p.DensityScale
		if alpha > 1 {
			alpha = 1
		}

		color := ShadeColor(p.ColorMode(), op)
		if p.Shading {
			color = s.shade(color, pos, vox, dir, op, light, half)
		}

		remain := 1 - accAlpha
		accColor = accColor.Add(color.Mul(remain * alpha))
		accAlpha += remain * alpha

		if accAlpha > p.AccumulatedThreshold || 1-accAlpha < p.TransmittanceThreshold {
			break
		}
		sample++
		t = tNear + float32(sample)*p.StepSize
	}

	if accAlpha <= 0 {
		return Result{}
	}
	return Result{Color: accColor, Alpha: accAlpha, ObjectID: ObjectVolume}
}

// shade applies Blinn-Phong only where the ray crosses a surface. Surface
// detection compares windowed opacity against a sample a small offset back
// toward the camera; an absolute jump above SurfaceThreshold marks a
// boundary worth the gradient fetch, on both the front and the back face of
// a structure. Interior samples stay at the ambient term.
func (s *Scene) shade(base, pos, vox mgl32.Vec3, dir mgl32.Vec3, op float32, light, half mgl32.Vec3) mgl32.Vec3 {
	p := s.Params

	behind := pos.Sub(dir.Mul(p.SurfaceOffset))
	opBehind := s.Transfer.Apply(s.Vol.Sample(s.Vol.ObjectToVoxel(behind)))
	delta := op - opBehind
	if delta < 0 {
		delta = -delta
	}
	if delta <= p.SurfaceThreshold {
		return base.Mul(p.Ambient)
	}

	if s.Grad == nil {
		return base.Mul(p.Ambient)
	}
	grad, mag := s.Grad.At(int(vox.X()), int(vox.Y()), int(vox.Z()))
	if mag <= 1e-8 {
		return base.Mul(p.Ambient)
	}

	// Gradients point toward increasing density; the outward normal is the
	// negation.
	normal := grad.Mul(-1)
	nl := normal.Dot(light)
	if nl < 0 {
		nl = 0
	}
	nh := normal.Dot(half)
	if nh < 0 {
		nh = 0
	}

	lit := p.Ambient + p.Diffuse*nl
	spec := p.Specular * powf(nh, p.Shininess)
	return base.Mul(lit).Add(mgl32.Vec3{spec, spec, spec})
}

func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(math.Pow(float64(base), float64(exp)))
}
