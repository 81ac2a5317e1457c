package march

import (
	"runtime"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
)

// Frame is one rendered image plus its object-id pick buffer, both
// row-major from the top-left.
type Frame struct {
	Width  int
	Height int
	Pixels []uint8  // RGBA
	Pick   []uint32 // object id per pixel
}

// RenderFrame marches every pixel of a width x height image through the
// scene with the given camera. Rays are generated by unprojecting each
// pixel center through the inverse view-projection; rows are rendered in
// parallel.
func RenderFrame(s *Scene, cam *core.CameraState, width, height int) *Frame {
	f := &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height*4),
		Pick:   make([]uint32, width*height),
	}

	view := cam.ViewMatrix()
	proj := cam.ProjMatrix(float32(width) / float32(height))
	invVP := proj.Mul4(view).Inv()
	eye := cam.Position()
	bg := s.Params.Background

	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	rows := (height + workers - 1) / workers
	for w := 0; w < workers; w++ {
		y0 := w * rows
		y1 := y0 + rows
		if y1 > height {
			y1 = height
		}
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			f.renderRows(s, eye, invVP, bg, y0, y1)
		}(y0, y1)
	}
	wg.Wait()
	return f
}

func (f *Frame) renderRows(s *Scene, eye mgl32.Vec3, invVP mgl32.Mat4, bg [3]float32, y0, y1 int) {
	for y := y0; y < y1; y++ {
		ndcY := 1 - (float32(y)+0.5)/float32(f.Height)*2
		for x := 0; x < f.Width; x++ {
			ndcX := (float32(x)+0.5)/float32(f.Width)*2 - 1
			dir := PixelRay(invVP, eye, ndcX, ndcY)

			res := MarchRay(s, eye, dir)
			r := res.Color.X() + (1-res.Alpha)*bg[0]
			g := res.Color.Y() + (1-res.Alpha)*bg[1]
			b := res.Color.Z() + (1-res.Alpha)*bg[2]

			i := (y*f.Width + x) * 4
			f.Pixels[i] = toByte(r)
			f.Pixels[i+1] = toByte(g)
			f.Pixels[i+2] = toByte(b)
			f.Pixels[i+3] = 255
			f.Pick[y*f.Width+x] = res.ObjectID
		}
	}
}

// PixelRay unprojects an NDC point on the far plane and returns the
// normalized world-space direction from the eye through it.
func PixelRay(invVP mgl32.Mat4, eye mgl32.Vec3, ndcX, ndcY float32) mgl32.Vec3 {
	far := invVP.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	if far.W() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	target := far.Vec3().Mul(1 / far.W())
	return target.Sub(eye).Normalize()
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
