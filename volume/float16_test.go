package volume

import (
	"math"
	"testing"
)

func TestFloat16KnownValues(t *testing.T) {
	cases := []struct {
		bits uint16
		want float32
	}{
		{0x0000, 0},
		{0x3C00, 1},
		{0xBC00, -1},
		{0x4000, 2},
		{0x3800, 0.5},
		{0x4100, 2.5},
		{0xC500, -5},
		{0x7BFF, 65504}, // largest finite half
	}
	for _, c := range cases {
		if got := Float16ToFloat32(c.bits); got != c.want {
			t.Errorf("Float16ToFloat32(%#04x) = %g, want %g", c.bits, got, c.want)
		}
		if got := Float32ToFloat16(c.want); got != c.bits {
			t.Errorf("Float32ToFloat16(%g) = %#04x, want %#04x", c.want, got, c.bits)
		}
	}
}

func TestFloat16Subnormals(t *testing.T) {
	// Smallest positive subnormal: 2^-24.
	got := Float16ToFloat32(0x0001)
	want := float32(math.Ldexp(1, -24))
	if got != want {
		t.Errorf("subnormal decode = %g, want %g", got, want)
	}
	if back := Float32ToFloat16(want); back != 0x0001 {
		t.Errorf("subnormal encode = %#04x, want 0x0001", back)
	}
}

func TestFloat16Specials(t *testing.T) {
	if got := Float16ToFloat32(0x7C00); !math.IsInf(float64(got), 1) {
		t.Errorf("0x7C00 should decode to +inf, got %g", got)
	}
	if got := Float16ToFloat32(0xFC00); !math.IsInf(float64(got), -1) {
		t.Errorf("0xFC00 should decode to -inf, got %g", got)
	}
	if got := Float16ToFloat32(0x7E00); !math.IsNaN(float64(got)) {
		t.Errorf("0x7E00 should decode to NaN, got %g", got)
	}

	if got := Float32ToFloat16(1e6); got != 0x7C00 {
		t.Errorf("overflow should encode to +inf, got %#04x", got)
	}
	if got := Float32ToFloat16(float32(math.Inf(-1))); got != 0xFC00 {
		t.Errorf("-inf should encode to 0xFC00, got %#04x", got)
	}
}

func TestFloat16RoundTripHURange(t *testing.T) {
	// Typical CT densities survive a round trip within half precision.
	for _, hu := range []float32{-1024, -500, -100, 0, 40, 400, 1000, 3071} {
		back := Float16ToFloat32(Float32ToFloat16(hu))
		if math.Abs(float64(back-hu)) > math.Abs(float64(hu))/1024+0.5 {
			t.Errorf("round trip of %g drifted to %g", hu, back)
		}
	}
}
