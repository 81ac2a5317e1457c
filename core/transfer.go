package core

// MinWindowWidth is the smallest window width the transfer function will
// operate with. Narrower (or non-positive) widths degenerate the density
// ramp into a step or invert it, so SetWindow clamps instead of trusting
// the caller.
const MinWindowWidth = 0.001

// TransferFunction is a window/level mapping from density (in HU) to
// opacity in [0,1]. Densities below center-width/2 map to 0, above
// center+width/2 map to 1, linear in between.
type TransferFunction struct {
	Center float32
	Width  float32
}

func NewTransferFunction(center, width float32) TransferFunction {
	tf := TransferFunction{Center: center}
	tf.SetWidth(width)
	return tf
}

func (t *TransferFunction) SetWidth(width float32) {
	if width < MinWindowWidth {
		width = MinWindowWidth
	}
	t.Width = width
}

func (t *TransferFunction) SetCenter(center float32) {
	t.Center = center
}

// Bounds returns the density interval [lo, hi] the window spans.
func (t TransferFunction) Bounds() (float32, float32) {
	w := t.Width
	if w < MinWindowWidth {
		w = MinWindowWidth
	}
	return t.Center - w/2, t.Center + w/2
}

// Apply maps a density to opacity.
func (t TransferFunction) Apply(density float32) float32 {
	lo, hi := t.Bounds()
	if density <= lo {
		return 0
	}
	if density >= hi {
		return 1
	}
	return (density - lo) / (hi - lo)
}

// Overlaps reports whether any density in [min, max] can map to a non-zero
// opacity. This is the chunk-skip test: a chunk whose value range does not
// overlap the window can never contribute.
func (t TransferFunction) Overlaps(min, max float32) bool {
	lo, _ := t.Bounds()
	// Values above hi saturate to opacity 1, so only the low edge cuts off.
	return max > lo
}
