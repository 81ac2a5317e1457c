package march

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
)

// ctfStop is one control point of the color transfer ramp, keyed by
// windowed opacity in [0,1].
type ctfStop struct {
	pos   float32
	color mgl32.Vec3
}

// ctfRamp runs dark blue through soft tissue red into bone white. Only the
// color assignment differs between modes; opacity, skipping, masking and
// termination are shared.
var ctfRamp = []ctfStop{
	{0.00, mgl32.Vec3{0.05, 0.05, 0.25}},
	{0.25, mgl32.Vec3{0.45, 0.12, 0.12}},
	{0.50, mgl32.Vec3{0.80, 0.45, 0.30}},
	{0.75, mgl32.Vec3{0.95, 0.85, 0.70}},
	{1.00, mgl32.Vec3{1.00, 1.00, 1.00}},
}

// ShadeColor maps a windowed opacity to a base color for the given mode.
func ShadeColor(mode core.ColorMode, op float32) mgl32.Vec3 {
	if mode == core.ColorModeWL {
		return mgl32.Vec3{op, op, op}
	}
	return sampleRamp(ctfRamp, op)
}

func sampleRamp(ramp []ctfStop, pos float32) mgl32.Vec3 {
	if pos <= ramp[0].pos {
		return ramp[0].color
	}
	for i := 1; i < len(ramp); i++ {
		if pos <= ramp[i].pos {
			t := (pos - ramp[i-1].pos) / (ramp[i].pos - ramp[i-1].pos)
			a, b := ramp[i-1].color, ramp[i].color
			return a.Add(b.Sub(a).Mul(t))
		}
	}
	return ramp[len(ramp)-1].color
}
