package lasso

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
)

func TestMaskNoContoursAllVisible(t *testing.T) {
	k := NewMaskKernel(8, 8, 8, core.NewNopLogger())
	mask := k.NewMask()

	if err := k.Compute(nil, mgl32.Ident4(), mask, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range mask {
		if v != 1 {
			t.Fatalf("voxel %d hidden with no contours", i)
		}
	}
}

func TestMaskHidesLeftHalf(t *testing.T) {
	// With identity matrices NDC x equals object x, so a rectangle over
	// x < 0 hides exactly the left half of the volume.
	points := []mgl32.Vec2{{-2, -2}, {0, -2}, {0, 2}, {-2, 2}}
	c, err := NewContour(points, mgl32.Ident4(), mgl32.Ident4(), 0, core.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	k := NewMaskKernel(8, 8, 8, core.NewNopLogger())
	mask := k.NewMask()
	if err := k.Compute([]*Contour{c}, mgl32.Ident4(), mask, nil); err != nil {
		t.Fatal(err)
	}

	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				got := mask[(z*8+y)*8+x]
				want := uint32(1)
				if x < 4 {
					want = 0
				}
				if got != want {
					t.Fatalf("voxel (%d,%d,%d) = %d, want %d", x, y, z, got, want)
				}
			}
		}
	}
}

func TestMaskUnionOfExclusions(t *testing.T) {
	// Two disjoint rectangles both cut; a voxel inside either is hidden.
	left, err := NewContour([]mgl32.Vec2{{-0.9, -2}, {-0.5, -2}, {-0.5, 2}, {-0.9, 2}},
		mgl32.Ident4(), mgl32.Ident4(), 0, core.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	right, err := NewContour([]mgl32.Vec2{{0.5, -2}, {0.9, -2}, {0.9, 2}, {0.5, 2}},
		mgl32.Ident4(), mgl32.Ident4(), 0, core.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}

	k := NewMaskKernel(16, 16, 4, core.NewNopLogger())
	mask := k.NewMask()
	if err := k.Compute([]*Contour{left, right}, mgl32.Ident4(), mask, nil); err != nil {
		t.Fatal(err)
	}

	// Voxel centers: x=1 -> object -0.8125 (hidden left), x=8 -> 0.0625
	// (visible), x=12 -> 0.5625 (hidden right).
	if mask[1] != 0 {
		t.Error("voxel inside the left contour should be hidden")
	}
	if mask[8] != 1 {
		t.Error("voxel between contours should be visible")
	}
	if mask[12] != 0 {
		t.Error("voxel inside the right contour should be hidden")
	}
}

func TestMaskChunkingMatchesSinglePass(t *testing.T) {
	points := []mgl32.Vec2{{-0.7, -0.7}, {0.3, -0.6}, {0.5, 0.4}, {-0.4, 0.6}}
	c, err := NewContour(points, mgl32.Ident4(), mgl32.Ident4(), 0, core.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	contours := []*Contour{c}

	single := NewMaskKernel(8, 8, 11, core.NewNopLogger())
	single.SlicesPerChunk = 11
	maskA := single.NewMask()
	if err := single.Compute(contours, mgl32.Ident4(), maskA, nil); err != nil {
		t.Fatal(err)
	}

	chunked := NewMaskKernel(8, 8, 11, core.NewNopLogger())
	chunked.SlicesPerChunk = 3
	maskB := chunked.NewMask()
	var calls []int
	err = chunked.Compute(contours, mgl32.Ident4(), maskB, func(done, total int) {
		calls = append(calls, done)
		if total != 4 {
			t.Errorf("total = %d, want 4", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := range maskA {
		if maskA[i] != maskB[i] {
			t.Fatalf("voxel %d differs between chunked and single-pass", i)
		}
	}
	if len(calls) != 4 || calls[0] != 1 || calls[3] != 4 {
		t.Errorf("progress calls = %v, want sequential 1..4", calls)
	}
}

func TestMaskRejectsWrongSize(t *testing.T) {
	k := NewMaskKernel(4, 4, 4, core.NewNopLogger())
	if err := k.Compute(nil, mgl32.Ident4(), make([]uint32, 10), nil); err == nil {
		t.Error("expected error for wrong mask size")
	}
}

func TestMaskRejectsReentrantCompute(t *testing.T) {
	k := NewMaskKernel(4, 4, 4, core.NewNopLogger())
	mask := k.NewMask()

	// Trigger a nested Compute from the progress callback.
	var nested error
	err := k.Compute(nil, mgl32.Ident4(), mask, func(done, total int) {
		if nested == nil {
			nested = k.Compute(nil, mgl32.Ident4(), mask, nil)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if nested == nil {
		t.Error("nested compute should have been rejected")
	}
}
