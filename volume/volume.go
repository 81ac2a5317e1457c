// Package volume holds the immutable scalar density field, its chunk
// acceleration grid and the derived gradient field.
package volume

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Volume is a W x H x D density field in Hounsfield units, stored as a flat
// float32 slice, x fastest, then y, then z (one z index per DICOM slice).
// Immutable after load; every frame render reads it concurrently with no
// synchronization.
type Volume struct {
	Width  int
	Height int
	Depth  int

	// Spacing is the physical voxel size per axis in millimeters.
	Spacing mgl32.Vec3

	// HuMin/HuMax is the global density range of the dataset.
	HuMin float32
	HuMax float32

	data []float32
}

func NewVolume(width, height, depth int) (*Volume, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, fmt.Errorf("invalid volume dimensions %dx%dx%d", width, height, depth)
	}
	return &Volume{
		Width:   width,
		Height:  height,
		Depth:   depth,
		Spacing: mgl32.Vec3{1, 1, 1},
		data:    make([]float32, width*height*depth),
	}, nil
}

func (v *Volume) Data() []float32 { return v.data }

func (v *Volume) index(x, y, z int) int {
	return (z*v.Height+y)*v.Width + x
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// At returns the density at integer voxel coordinates, clamping to the edge.
func (v *Volume) At(x, y, z int) float32 {
	x = clampi(x, 0, v.Width-1)
	y = clampi(y, 0, v.Height-1)
	z = clampi(z, 0, v.Depth-1)
	return v.data[v.index(x, y, z)]
}

// Set writes a voxel. Only used while building or synthesizing a volume;
// never called after the volume is handed to the renderer.
func (v *Volume) Set(x, y, z int, d float32) {
	v.data[v.index(x, y, z)] = d
}

// SetSlice copies one z-slice worth of densities.
func (v *Volume) SetSlice(z int, slice []float32) error {
	if len(slice) != v.Width*v.Height {
		return fmt.Errorf("slice %d has %d samples, want %d", z, len(slice), v.Width*v.Height)
	}
	copy(v.data[z*v.Width*v.Height:], slice)
	return nil
}

// Sample returns the trilinearly interpolated density at fractional voxel
// coordinates. Out-of-range coordinates clamp to the border.
func (v *Volume) Sample(p mgl32.Vec3) float32 {
	fx, fy, fz := p.X()-0.5, p.Y()-0.5, p.Z()-0.5

	x0 := int(floorf(fx))
	y0 := int(floorf(fy))
	z0 := int(floorf(fz))
	tx := fx - floorf(fx)
	ty := fy - floorf(fy)
	tz := fz - floorf(fz)

	c000 := v.At(x0, y0, z0)
	c100 := v.At(x0+1, y0, z0)
	c010 := v.At(x0, y0+1, z0)
	c110 := v.At(x0+1, y0+1, z0)
	c001 := v.At(x0, y0, z0+1)
	c101 := v.At(x0+1, y0, z0+1)
	c011 := v.At(x0, y0+1, z0+1)
	c111 := v.At(x0+1, y0+1, z0+1)

	c00 := lerp(c000, c100, tx)
	c10 := lerp(c010, c110, tx)
	c01 := lerp(c001, c101, tx)
	c11 := lerp(c011, c111, tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// ObjectToVoxel maps normalized object space [-1,1]^3 into voxel coordinates.
func (v *Volume) ObjectToVoxel(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		(p.X()*0.5 + 0.5) * float32(v.Width),
		(p.Y()*0.5 + 0.5) * float32(v.Height),
		(p.Z()*0.5 + 0.5) * float32(v.Depth),
	}
}

// VoxelIndex returns the flat index of the voxel containing the object-space
// point, and false if it lies outside the volume. Coordinates are floored,
// not truncated: points just below the lower faces must stay outside.
func (v *Volume) VoxelIndex(p mgl32.Vec3) (int, bool) {
	vox := v.ObjectToVoxel(p)
	x := int(floorf(vox.X()))
	y := int(floorf(vox.Y()))
	z := int(floorf(vox.Z()))
	if x < 0 || x >= v.Width || y < 0 || y >= v.Height || z < 0 || z >= v.Depth {
		return 0, false
	}
	return v.index(x, y, z), true
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func floorf(f float32) float32 {
	i := float32(int(f))
	if f < i {
		return i - 1
	}
	return i
}
