package volume

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAtClampsToEdges(t *testing.T) {
	v, err := NewVolume(4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	v.Set(0, 0, 0, 7)
	v.Set(3, 3, 3, 9)

	if got := v.At(-5, -5, -5); got != 7 {
		t.Errorf("At(-5,-5,-5) = %g, want 7", got)
	}
	if got := v.At(10, 10, 10); got != 9 {
		t.Errorf("At(10,10,10) = %g, want 9", got)
	}
}

func TestSampleTrilinearRamp(t *testing.T) {
	// Density equals the x coordinate, so interpolation along x must be
	// exact and interpolation along y/z must not change the value.
	v, _ := NewVolume(8, 8, 8)
	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				v.Set(x, y, z, float32(x))
			}
		}
	}

	got := v.Sample(mgl32.Vec3{3.0, 4.5, 4.5})
	if math.Abs(float64(got-2.5)) > 1e-5 {
		t.Errorf("Sample at x=3.0 = %g, want 2.5", got)
	}

	got = v.Sample(mgl32.Vec3{3.75, 2.5, 6.5})
	if math.Abs(float64(got-3.25)) > 1e-5 {
		t.Errorf("Sample at x=3.75 = %g, want 3.25", got)
	}
}

func TestSampleAtVoxelCenterIsExact(t *testing.T) {
	v, _ := NewVolume(4, 4, 4)
	v.Set(1, 2, 3, 42)

	got := v.Sample(mgl32.Vec3{1.5, 2.5, 3.5})
	if got != 42 {
		t.Errorf("Sample at voxel center = %g, want 42", got)
	}
}

func TestObjectToVoxelMapsUnitCube(t *testing.T) {
	v, _ := NewVolume(10, 20, 30)

	p := v.ObjectToVoxel(mgl32.Vec3{-1, -1, -1})
	if p != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("ObjectToVoxel(-1,-1,-1) = %v, want origin", p)
	}
	p = v.ObjectToVoxel(mgl32.Vec3{1, 1, 1})
	if p != (mgl32.Vec3{10, 20, 30}) {
		t.Errorf("ObjectToVoxel(1,1,1) = %v, want dims", p)
	}
	p = v.ObjectToVoxel(mgl32.Vec3{0, 0, 0})
	if p != (mgl32.Vec3{5, 10, 15}) {
		t.Errorf("ObjectToVoxel(0,0,0) = %v, want center", p)
	}
}

func TestVoxelIndexBounds(t *testing.T) {
	v, _ := NewVolume(4, 4, 4)

	if _, ok := v.VoxelIndex(mgl32.Vec3{0, 0, 0}); !ok {
		t.Error("center should be inside")
	}
	if _, ok := v.VoxelIndex(mgl32.Vec3{1.5, 0, 0}); ok {
		t.Error("x=1.5 should be outside")
	}
	if _, ok := v.VoxelIndex(mgl32.Vec3{-1.01, 0, 0}); ok {
		t.Error("x=-1.01 should be outside")
	}
}

func TestSetSliceRejectsWrongLength(t *testing.T) {
	v, _ := NewVolume(4, 4, 4)
	if err := v.SetSlice(0, make([]float32, 15)); err == nil {
		t.Error("expected error for short slice")
	}
	if err := v.SetSlice(0, make([]float32, 16)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
