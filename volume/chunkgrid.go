package volume

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Range is the (min, max) density span of one chunk.
type Range struct {
	Min float32
	Max float32
}

// ChunkGrid partitions the volume into cubic chunks and stores the density
// range of each. The ray marcher uses it to skip whole chunks whose range
// cannot intersect the active window. Built once (or loaded from the
// converter's chunk_minmax.bin), read-only afterwards.
//
// Entries are row-major, x fastest, then y, then z, matching the converter
// output.
type ChunkGrid struct {
	ChunkSize int
	NX        int
	NY        int
	NZ        int

	ranges []Range
}

// ValidateChunkSize applies the converter's rule: a multiple of 16 between
// 16 and 256.
func ValidateChunkSize(size int) error {
	if size%16 != 0 {
		return fmt.Errorf("chunk size must be a multiple of 16, got %d", size)
	}
	if size < 16 || size > 256 {
		return fmt.Errorf("chunk size must be between 16 and 256, got %d", size)
	}
	return nil
}

func chunkCounts(vol *Volume, chunkSize int) (int, int, int) {
	nx := (vol.Width + chunkSize - 1) / chunkSize
	ny := (vol.Height + chunkSize - 1) / chunkSize
	nz := (vol.Depth + chunkSize - 1) / chunkSize
	return nx, ny, nz
}

// BuildChunkGrid scans the volume once and records per-chunk density
// ranges. Chunks at the +edges cover only the remainder of the volume, so
// the grid tiles the volume exactly.
func BuildChunkGrid(vol *Volume, chunkSize int) (*ChunkGrid, error) {
	if err := ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}

	nx, ny, nz := chunkCounts(vol, chunkSize)
	g := &ChunkGrid{
		ChunkSize: chunkSize,
		NX:        nx,
		NY:        ny,
		NZ:        nz,
		ranges:    make([]Range, nx*ny*nz),
	}

	for cz := 0; cz < nz; cz++ {
		for cy := 0; cy < ny; cy++ {
			for cx := 0; cx < nx; cx++ {
				x0, x1 := cx*chunkSize, mini((cx+1)*chunkSize, vol.Width)
				y0, y1 := cy*chunkSize, mini((cy+1)*chunkSize, vol.Height)
				z0, z1 := cz*chunkSize, mini((cz+1)*chunkSize, vol.Depth)

				lo := float32(math.Inf(1))
				hi := float32(math.Inf(-1))
				for z := z0; z < z1; z++ {
					for y := y0; y < y1; y++ {
						row := vol.data[(z*vol.Height+y)*vol.Width+x0 : (z*vol.Height+y)*vol.Width+x1]
						for _, d := range row {
							if d < lo {
								lo = d
							}
							if d > hi {
								hi = d
							}
						}
					}
				}
				g.ranges[(cz*ny+cy)*nx+cx] = Range{Min: lo, Max: hi}
			}
		}
	}
	return g, nil
}

// ParseChunkBlob decodes the converter's chunk_minmax.bin: little-endian
// float32 (min, max) pairs, x fastest.
func ParseChunkBlob(data []byte, nx, ny, nz, chunkSize int) (*ChunkGrid, error) {
	if err := ValidateChunkSize(chunkSize); err != nil {
		return nil, err
	}
	want := nx * ny * nz * 8
	if len(data) != want {
		return nil, fmt.Errorf("chunk blob is %d bytes, want %d for %dx%dx%d chunks", len(data), want, nx, ny, nz)
	}

	g := &ChunkGrid{
		ChunkSize: chunkSize,
		NX:        nx,
		NY:        ny,
		NZ:        nz,
		ranges:    make([]Range, nx*ny*nz),
	}
	for i := range g.ranges {
		lo := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:]))
		hi := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:]))
		if hi < lo {
			return nil, fmt.Errorf("chunk %d has max %g below min %g", i, hi, lo)
		}
		g.ranges[i] = Range{Min: lo, Max: hi}
	}
	return g, nil
}

// Bytes serializes the grid in the chunk_minmax.bin layout.
func (g *ChunkGrid) Bytes() []byte {
	out := make([]byte, len(g.ranges)*8)
	for i, r := range g.ranges {
		binary.LittleEndian.PutUint32(out[i*8:], math.Float32bits(r.Min))
		binary.LittleEndian.PutUint32(out[i*8+4:], math.Float32bits(r.Max))
	}
	return out
}

// RangeAt returns the density range of chunk (cx, cy, cz).
func (g *ChunkGrid) RangeAt(cx, cy, cz int) Range {
	return g.ranges[(cz*g.NY+cy)*g.NX+cx]
}

// ChunkOf maps voxel coordinates to chunk coordinates, clamped into the
// grid.
func (g *ChunkGrid) ChunkOf(x, y, z int) (int, int, int) {
	cx := clampi(x/g.ChunkSize, 0, g.NX-1)
	cy := clampi(y/g.ChunkSize, 0, g.NY-1)
	cz := clampi(z/g.ChunkSize, 0, g.NZ-1)
	return cx, cy, cz
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}
