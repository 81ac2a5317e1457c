package volume

import (
	"math"
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// GradientField stores one normalized direction plus magnitude per voxel,
// packed as four float32 per voxel (matching the GPU rgba32float layout).
// Derived data: recomputed from scratch whenever the volume changes, which
// after load is never.
type GradientField struct {
	Width  int
	Height int
	Depth  int

	data []float32 // [nx, ny, nz, mag] per voxel
}

func (f *GradientField) Data() []float32 { return f.data }

// At returns the normalized gradient direction and magnitude of a voxel.
func (f *GradientField) At(x, y, z int) (mgl32.Vec3, float32) {
	x = clampi(x, 0, f.Width-1)
	y = clampi(y, 0, f.Height-1)
	z = clampi(z, 0, f.Depth-1)
	i := ((z*f.Height+y)*f.Width + x) * 4
	return mgl32.Vec3{f.data[i], f.data[i+1], f.data[i+2]}, f.data[i+3]
}

// ComputeGradients estimates the density gradient at every voxel with
// central differences (one-sided at the borders via edge clamping in At).
// One bulk pass, parallel across z-slabs; there is no incremental update.
func ComputeGradients(vol *Volume) *GradientField {
	f := &GradientField{
		Width:  vol.Width,
		Height: vol.Height,
		Depth:  vol.Depth,
		data:   make([]float32, vol.Width*vol.Height*vol.Depth*4),
	}

	workers := runtime.NumCPU()
	if workers > vol.Depth {
		workers = vol.Depth
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	slab := (vol.Depth + workers - 1) / workers
	for w := 0; w < workers; w++ {
		z0 := w * slab
		z1 := mini(z0+slab, vol.Depth)
		if z0 >= z1 {
			break
		}
		wg.Add(1)
		go func(z0, z1 int) {
			defer wg.Done()
			f.computeSlab(vol, z0, z1)
		}(z0, z1)
	}
	wg.Wait()
	return f
}

func (f *GradientField) computeSlab(vol *Volume, z0, z1 int) {
	for z := z0; z < z1; z++ {
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				gx := (vol.At(x+1, y, z) - vol.At(x-1, y, z)) * 0.5
				gy := (vol.At(x, y+1, z) - vol.At(x, y-1, z)) * 0.5
				gz := (vol.At(x, y, z+1) - vol.At(x, y, z-1)) * 0.5

				mag := float32(math.Sqrt(float64(gx*gx + gy*gy + gz*gz)))
				i := ((z*f.Height+y)*f.Width + x) * 4
				if mag > 1e-8 {
					inv := 1.0 / mag
					f.data[i] = gx * inv
					f.data[i+1] = gy * inv
					f.data[i+2] = gz * inv
				}
				f.data[i+3] = mag
			}
		}
	}
}
