package march

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/volume"
)

var unitMin = mgl32.Vec3{-1, -1, -1}
var unitMax = mgl32.Vec3{1, 1, 1}

func TestIntersectBoxHit(t *testing.T) {
	origin := mgl32.Vec3{0, 0, -5}
	dir := mgl32.Vec3{0, 0, 1}

	tNear, tFar, hit := IntersectBox(origin, dir, unitMin, unitMax)
	if !hit {
		t.Fatal("ray through the center must hit")
	}
	if tNear != 4 || tFar != 6 {
		t.Errorf("t = [%g, %g], want [4, 6]", tNear, tFar)
	}
}

func TestIntersectBoxMiss(t *testing.T) {
	origin := mgl32.Vec3{0, 5, -5}
	dir := mgl32.Vec3{0, 0, 1}

	if _, _, hit := IntersectBox(origin, dir, unitMin, unitMax); hit {
		t.Error("offset parallel ray must miss")
	}
}

func TestIntersectBoxBehind(t *testing.T) {
	origin := mgl32.Vec3{0, 0, 5}
	dir := mgl32.Vec3{0, 0, 1}

	if _, _, hit := IntersectBox(origin, dir, unitMin, unitMax); hit {
		t.Error("box behind the origin must miss")
	}
}

func TestIntersectBoxInside(t *testing.T) {
	origin := mgl32.Vec3{0, 0, 0}
	dir := mgl32.Vec3{1, 0, 0}

	tNear, tFar, hit := IntersectBox(origin, dir, unitMin, unitMax)
	if !hit {
		t.Fatal("origin inside the box must hit")
	}
	if tNear != -1 || tFar != 1 {
		t.Errorf("t = [%g, %g], want [-1, 1]", tNear, tFar)
	}
}

func TestIntersectBoxDegenerateAxis(t *testing.T) {
	// Zero direction component with the origin inside that slab.
	origin := mgl32.Vec3{0.5, 0, -5}
	dir := mgl32.Vec3{0, 0, 1}
	if _, _, hit := IntersectBox(origin, dir, unitMin, unitMax); !hit {
		t.Error("ray in-slab should hit")
	}

	// Zero direction component with the origin outside that slab.
	origin = mgl32.Vec3{2, 0, -5}
	if _, _, hit := IntersectBox(origin, dir, unitMin, unitMax); hit {
		t.Error("ray out-of-slab can never enter")
	}
}

func TestIntersectBoxOriginOnSlabBoundary(t *testing.T) {
	// Zero direction component with the origin exactly on the slab face:
	// the degenerate axis must resolve to containment, not NaN.
	origin := mgl32.Vec3{-5, 0, -1}
	dir := mgl32.Vec3{1, 0, 0}

	tNear, tFar, hit := IntersectBox(origin, dir, unitMin, unitMax)
	if !hit {
		t.Fatal("origin on the boundary face should hit")
	}
	if tNear != 4 || tFar != 6 {
		t.Errorf("t = [%g, %g], want [4, 6]", tNear, tFar)
	}
	if tNear != tNear || tFar != tFar {
		t.Error("slab test produced NaN")
	}
}

func TestChunkExitAdvances(t *testing.T) {
	vol, _ := volume.NewVolume(64, 64, 64)
	grid, err := volume.BuildChunkGrid(vol, 16)
	if err != nil {
		t.Fatal(err)
	}

	origin := mgl32.Vec3{-2, 0.01, 0.01}
	dir := mgl32.Vec3{1, 0, 0}

	// Walk chunk to chunk across the volume; t must strictly increase and
	// leave the cube within the chunk count.
	tCur := float32(1.0) // entry at x = -1
	for i := 0; i < grid.NX+1; i++ {
		next := ChunkExitT(origin, dir, tCur, vol, grid)
		if next <= tCur {
			t.Fatalf("step %d: exit %g did not advance past %g", i, next, tCur)
		}
		tCur = next
		if origin.X()+tCur > 1 {
			return
		}
	}
	t.Fatalf("still inside the volume after %d chunk exits", grid.NX+1)
}

func TestChunkExitOnBoundary(t *testing.T) {
	vol, _ := volume.NewVolume(64, 64, 64)
	grid, err := volume.BuildChunkGrid(vol, 16)
	if err != nil {
		t.Fatal(err)
	}

	// Sample sitting exactly on a chunk face must still make progress.
	origin := mgl32.Vec3{-1, 0.01, 0.01}
	dir := mgl32.Vec3{1, 0, 0}
	tFace := float32(0.5) // x = -0.5, the first chunk boundary

	next := ChunkExitT(origin, dir, tFace, vol, grid)
	if next <= tFace {
		t.Errorf("exit %g must be strictly past the boundary %g", next, tFace)
	}
}
