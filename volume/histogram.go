package volume

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

const histogramBins = 1024

// Histogram is a fixed-bin density histogram over the volume's HU range.
// Used to derive window/level presets when the dataset metadata does not
// carry one.
type Histogram struct {
	Lo      float64
	Hi      float64
	centers []float64
	counts  []float64
}

// BuildHistogram bins every voxel density once.
func BuildHistogram(vol *Volume) *Histogram {
	lo := float64(vol.HuMin)
	hi := float64(vol.HuMax)
	if hi <= lo {
		hi = lo + 1
	}

	h := &Histogram{
		Lo:      lo,
		Hi:      hi,
		centers: make([]float64, histogramBins),
		counts:  make([]float64, histogramBins),
	}
	binWidth := (hi - lo) / histogramBins
	for i := range h.centers {
		h.centers[i] = lo + (float64(i)+0.5)*binWidth
	}

	scale := float64(histogramBins) / (hi - lo)
	for _, d := range vol.data {
		bin := int((float64(d) - lo) * scale)
		if bin < 0 {
			bin = 0
		}
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		h.counts[bin]++
	}
	return h
}

// Quantile returns the density below which fraction p of the voxels fall.
func (h *Histogram) Quantile(p float64) float64 {
	return stat.Quantile(p, stat.Empirical, h.centers, h.counts)
}

// AutoWindow derives a window/level pair that spans the [pLo, pHi] density
// quantiles. Air padding around medical scans dominates the low end, which
// is why the default low quantile sits high.
func (h *Histogram) AutoWindow(pLo, pHi float64) (center, width float32, err error) {
	if pLo < 0 || pHi > 1 || pLo >= pHi {
		return 0, 0, fmt.Errorf("invalid quantile range [%g, %g]", pLo, pHi)
	}
	qLo := h.Quantile(pLo)
	qHi := h.Quantile(pHi)
	return float32((qLo + qHi) / 2), float32(qHi - qLo), nil
}
