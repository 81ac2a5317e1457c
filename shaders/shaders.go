// Package shaders embeds the WGSL sources. The compute kernels mirror the
// CPU kernels in march and lasso; keep them in sync when either changes.
package shaders

import (
	_ "embed"
)

//go:embed raycast.wgsl
var RaycastWGSL string

//go:embed gradient.wgsl
var GradientWGSL string

//go:embed lasso_mask.wgsl
var LassoMaskWGSL string

//go:embed fullscreen.wgsl
var FullscreenWGSL string

//go:embed text.wgsl
var TextWGSL string
