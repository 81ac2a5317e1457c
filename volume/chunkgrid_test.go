package volume

import (
	"testing"
)

func TestValidateChunkSize(t *testing.T) {
	for _, size := range []int{16, 32, 64, 256} {
		if err := ValidateChunkSize(size); err != nil {
			t.Errorf("size %d should be valid: %v", size, err)
		}
	}
	for _, size := range []int{0, 8, 15, 17, 30, 272, 512} {
		if err := ValidateChunkSize(size); err == nil {
			t.Errorf("size %d should be rejected", size)
		}
	}
}

func TestBuildChunkGridTilesExactly(t *testing.T) {
	// 48 voxels with chunk size 32: two chunks per axis, the second covers
	// only the 16-voxel remainder.
	v, _ := NewVolume(48, 48, 48)
	for z := 0; z < 48; z++ {
		for y := 0; y < 48; y++ {
			for x := 0; x < 48; x++ {
				v.Set(x, y, z, float32(x))
			}
		}
	}

	g, err := BuildChunkGrid(v, 32)
	if err != nil {
		t.Fatal(err)
	}
	if g.NX != 2 || g.NY != 2 || g.NZ != 2 {
		t.Fatalf("got %dx%dx%d chunks, want 2x2x2", g.NX, g.NY, g.NZ)
	}

	r := g.RangeAt(0, 0, 0)
	if r.Min != 0 || r.Max != 31 {
		t.Errorf("chunk (0,0,0) range [%g,%g], want [0,31]", r.Min, r.Max)
	}
	// Edge chunk covers x in [32,48) only.
	r = g.RangeAt(1, 1, 1)
	if r.Min != 32 || r.Max != 47 {
		t.Errorf("chunk (1,1,1) range [%g,%g], want [32,47]", r.Min, r.Max)
	}
}

func TestChunkBlobRoundTrip(t *testing.T) {
	v, _ := NewVolume(32, 32, 48)
	for z := 0; z < 48; z++ {
		v.Set(0, 0, z, float32(z)*10)
	}

	g, err := BuildChunkGrid(v, 16)
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseChunkBlob(g.Bytes(), g.NX, g.NY, g.NZ, g.ChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	for cz := 0; cz < g.NZ; cz++ {
		for cy := 0; cy < g.NY; cy++ {
			for cx := 0; cx < g.NX; cx++ {
				if g.RangeAt(cx, cy, cz) != parsed.RangeAt(cx, cy, cz) {
					t.Fatalf("chunk (%d,%d,%d) mismatch after round trip", cx, cy, cz)
				}
			}
		}
	}
}

func TestParseChunkBlobRejectsBadInput(t *testing.T) {
	if _, err := ParseChunkBlob(make([]byte, 7), 1, 1, 1, 16); err == nil {
		t.Error("expected error for truncated blob")
	}

	// Swapping min and max of a valid single-chunk blob makes it corrupt.
	v := mustVolume(t, 16, 16, 16)
	v.Set(0, 0, 0, 5)
	good, err := BuildChunkGrid(v, 16)
	if err != nil {
		t.Fatal(err)
	}
	data := good.Bytes()
	blob := make([]byte, 8)
	copy(blob[0:4], data[4:8])
	copy(blob[4:8], data[0:4])
	if _, err := ParseChunkBlob(blob, 1, 1, 1, 16); err == nil {
		t.Error("expected error for max < min")
	}
}

func TestChunkOfClamps(t *testing.T) {
	v := mustVolume(t, 48, 48, 48)
	g, _ := BuildChunkGrid(v, 32)

	cx, cy, cz := g.ChunkOf(47, 0, 0)
	if cx != 1 || cy != 0 || cz != 0 {
		t.Errorf("ChunkOf(47,0,0) = (%d,%d,%d), want (1,0,0)", cx, cy, cz)
	}
	cx, _, _ = g.ChunkOf(1000, 0, 0)
	if cx != 1 {
		t.Errorf("ChunkOf clamps to grid, got cx=%d", cx)
	}
}

func mustVolume(t *testing.T, w, h, d int) *Volume {
	t.Helper()
	v, err := NewVolume(w, h, d)
	if err != nil {
		t.Fatal(err)
	}
	return v
}
