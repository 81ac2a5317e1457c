package volume

import "math"

// The converter stores slices as raw IEEE 754 half floats. None of our
// dependencies ship a half codec, so the two conversions live here.

// Float16ToFloat32 decodes an IEEE 754 binary16 value.
func Float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 1
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h) & 0x3FF

	var bits uint32
	switch {
	case exp == 0 && frac == 0:
		bits = sign << 31
	case exp == 0:
		// Subnormal: renormalize.
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3FF
		bits = sign<<31 | e<<23 | frac<<13
	case exp == 0x1F:
		// Inf/NaN
		bits = sign<<31 | 0xFF<<23 | frac<<13
	default:
		bits = sign<<31 | (exp+127-15)<<23 | frac<<13
	}
	return math.Float32frombits(bits)
}

// Float32ToFloat16 encodes to binary16 with round-to-nearest-even. Used by
// tests and synthetic dataset writers.
func Float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23)&0xFF - 127 + 15
	frac := bits & 0x7FFFFF

	switch {
	case int32(bits>>23)&0xFF == 0xFF:
		// Inf/NaN
		if frac != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00
	case exp >= 0x1F:
		return sign | 0x7C00 // overflow to inf
	case exp <= 0:
		if exp < -10 {
			return sign // underflow to zero
		}
		// Subnormal
		frac |= 0x800000
		shift := uint32(14 - exp)
		half := uint16(frac >> shift)
		round := frac >> (shift - 1) & 1
		if round != 0 {
			half++
		}
		return sign | half
	default:
		half := sign | uint16(exp)<<10 | uint16(frac>>13)
		if frac&0x1000 != 0 {
			if frac&0xFFF != 0 || half&1 != 0 {
				half++
			}
		}
		return half
	}
}
