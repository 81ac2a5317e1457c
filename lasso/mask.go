package lasso

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
)

// DefaultSlicesPerChunk bounds how many z-slices one mask pass covers. The
// full-volume test is width x height x depth x contours point-in-polygon
// evaluations; one giant pass stalls the device long enough to trip the
// watchdog, so the work is split along z and submitted sequentially.
const DefaultSlicesPerChunk = 16

// ProgressFunc receives (done, total) chunk counts during a mask compute.
type ProgressFunc func(done, total int)

// MaskKernel rasterizes the contour set into a per-voxel visibility mask:
// 1 = visible, 0 = hidden. Convention: union of exclusions — a voxel is
// hidden exactly when its projection through some contour's stored camera
// lands inside that contour's polygon.
//
// State machine: Idle -> Computing (chunk 1..N, strictly sequential) ->
// Idle. A second Compute while one is in flight is a caller bug and is
// rejected, never interleaved.
type MaskKernel struct {
	Width  int
	Height int
	Depth  int

	SlicesPerChunk int

	running bool
	log     core.Logger
}

func NewMaskKernel(width, height, depth int, log core.Logger) *MaskKernel {
	if log == nil {
		log = core.NewNopLogger()
	}
	return &MaskKernel{
		Width:          width,
		Height:         height,
		Depth:          depth,
		SlicesPerChunk: DefaultSlicesPerChunk,
		log:            log,
	}
}

// NumChunks is how many sequential passes one full recompute takes.
func (k *MaskKernel) NumChunks() int {
	spc := k.SlicesPerChunk
	if spc <= 0 {
		spc = DefaultSlicesPerChunk
	}
	return (k.Depth + spc - 1) / spc
}

// Compute rebuilds the whole mask in place. With zero contours every voxel
// is visible. Progress is reported after each chunk; progress may be nil.
//
// The mask is a wholesale-invalidated cache: there is no incremental
// update, and if a compute dies partway (device loss) the mask is left
// inconsistent until the next contour change triggers a full rebuild.
func (k *MaskKernel) Compute(contours []*Contour, model mgl32.Mat4, mask []uint32, progress ProgressFunc) error {
	if k.running {
		return fmt.Errorf("mask computation already in flight")
	}
	if len(mask) != k.Width*k.Height*k.Depth {
		return fmt.Errorf("mask has %d entries, want %d", len(mask), k.Width*k.Height*k.Depth)
	}
	k.running = true
	defer func() { k.running = false }()

	total := k.NumChunks()
	spc := k.SlicesPerChunk
	if spc <= 0 {
		spc = DefaultSlicesPerChunk
	}

	for chunk := 0; chunk < total; chunk++ {
		z0 := chunk * spc
		z1 := z0 + spc
		if z1 > k.Depth {
			z1 = k.Depth
		}
		k.computeSlab(contours, model, mask, z0, z1)
		if progress != nil {
			progress(chunk+1, total)
		}
	}
	return nil
}

// computeSlab covers z in [z0, z1). The z offset must be applied exactly:
// a shifted slab silently corrupts the mask.
func (k *MaskKernel) computeSlab(contours []*Contour, model mgl32.Mat4, mask []uint32, z0, z1 int) {
	invW := 2.0 / float32(k.Width)
	invH := 2.0 / float32(k.Height)
	invD := 2.0 / float32(k.Depth)

	for z := z0; z < z1; z++ {
		pz := (float32(z)+0.5)*invD - 1
		for y := 0; y < k.Height; y++ {
			py := (float32(y)+0.5)*invH - 1
			row := mask[(z*k.Height+y)*k.Width : (z*k.Height+y+1)*k.Width]
			for x := 0; x < k.Width; x++ {
				px := (float32(x)+0.5)*invW - 1
				visible := uint32(1)
				for _, c := range contours {
					if c.ContainsObjectPoint(mgl32.Vec3{px, py, pz}, model) {
						visible = 0
						break
					}
				}
				row[x] = visible
			}
		}
	}
}

// NewMask allocates an all-visible mask for the kernel's dimensions.
func (k *MaskKernel) NewMask() []uint32 {
	mask := make([]uint32, k.Width*k.Height*k.Depth)
	for i := range mask {
		mask[i] = 1
	}
	return mask
}
