package march

import (
	"testing"

	"github.com/voxscope/voxscope/core"
)

func TestRenderFramePicksCenterObject(t *testing.T) {
	s := denseCubeScene(t)
	s.SkipChunks = true
	cam := core.NewCameraState()

	f := RenderFrame(s, cam, 32, 32)

	// The orbit camera looks through the target at the origin, so the
	// center pixel must hit the dense cube.
	center := 16*f.Width + 16
	if f.Pick[center] != ObjectVolume {
		t.Errorf("center pick = %d, want %d", f.Pick[center], ObjectVolume)
	}
	if f.Pixels[center*4+3] != 255 {
		t.Error("output must be fully opaque RGBA")
	}

	// Corner rays pass well outside the cube's silhouette.
	if f.Pick[0] != ObjectNone {
		t.Errorf("corner pick = %d, want %d", f.Pick[0], ObjectNone)
	}
}

func TestRenderFrameBackgroundFill(t *testing.T) {
	s := denseCubeScene(t)
	s.Params.Background = [3]float32{0.1, 0.2, 0.3}
	cam := core.NewCameraState()

	f := RenderFrame(s, cam, 16, 16)

	// Corner pixel composites nothing, so it carries the background color.
	want := [3]uint8{toByte(0.1), toByte(0.2), toByte(0.3)}
	if f.Pixels[0] != want[0] || f.Pixels[1] != want[1] || f.Pixels[2] != want[2] {
		t.Errorf("corner = (%d,%d,%d), want (%d,%d,%d)",
			f.Pixels[0], f.Pixels[1], f.Pixels[2], want[0], want[1], want[2])
	}
}

func TestPixelRayAimsAtTarget(t *testing.T) {
	cam := core.NewCameraState()
	view := cam.ViewMatrix()
	proj := cam.ProjMatrix(1)
	invVP := proj.Mul4(view).Inv()
	eye := cam.Position()

	// The exact screen center unprojects to a ray through the orbit target.
	dir := PixelRay(invVP, eye, 0, 0)
	want := cam.Target.Sub(eye).Normalize()
	if !nearVec3(dir, want, 1e-4) {
		t.Errorf("center ray %v, want %v", dir, want)
	}
}
