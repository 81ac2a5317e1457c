package volume

import (
	"testing"
)

func TestHistogramQuantileUniform(t *testing.T) {
	// Uniform fill over [0, 1000]: the median lands near 500.
	v := mustVolume(t, 10, 10, 10)
	i := 0
	for z := 0; z < 10; z++ {
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				v.Set(x, y, z, float32(i))
				i++
			}
		}
	}
	v.HuMin = 0
	v.HuMax = 999

	h := BuildHistogram(v)
	q := h.Quantile(0.5)
	if q < 400 || q > 600 {
		t.Errorf("median = %g, want near 500", q)
	}
	if lo := h.Quantile(0.01); lo > 100 {
		t.Errorf("1%% quantile = %g, want near the bottom", lo)
	}
}

func TestAutoWindowSpansQuantiles(t *testing.T) {
	v := mustVolume(t, 10, 10, 10)
	i := 0
	for z := 0; z < 10; z++ {
		for y := 0; y < 10; y++ {
			for x := 0; x < 10; x++ {
				v.Set(x, y, z, float32(i))
				i++
			}
		}
	}
	v.HuMin = 0
	v.HuMax = 999

	h := BuildHistogram(v)
	center, width, err := h.AutoWindow(0.05, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	if center < 400 || center > 600 {
		t.Errorf("center = %g, want near 500", center)
	}
	if width < 700 || width > 1000 {
		t.Errorf("width = %g, want near 900", width)
	}
}

func TestAutoWindowRejectsBadQuantiles(t *testing.T) {
	v := mustVolume(t, 2, 2, 2)
	h := BuildHistogram(v)
	if _, _, err := h.AutoWindow(0.9, 0.1); err == nil {
		t.Error("expected error for inverted quantiles")
	}
	if _, _, err := h.AutoWindow(-0.1, 0.5); err == nil {
		t.Error("expected error for negative quantile")
	}
}
