package isa

import "math"

// float24 layout: sign at bit 23, 7-bit exponent (bias 63) at 22:16,
// 16-bit mantissa at 15:0.
const (
	float24ExpBias = 0x40 // IEEE bias 127 minus float24 bias 63
	float24ExpMax  = 0x7F
)

// Float24 converts f to the 24-bit float used by float constant registers,
// returned in the low 24 bits of the word.
//
// The low 7 mantissa bits are dropped. Magnitudes below the float24 exponent
// range flush to a zero carrying the sign of f. Magnitudes above it,
// infinities and NaNs are rejected.
func Float24(f float32) (uint32, error) {
	bits := math.Float32bits(f)
	sign := bits >> 31
	exp := int32((bits>>23)&0xFF) - float24ExpBias
	mantissa := (bits & 0x7FFFFF) >> 7

	if exp < 0 {
		return sign << 23, nil
	}
	if exp > float24ExpMax {
		return 0, errorf(KindRange, "float %g is out of float24 range", f)
	}
	return sign<<23 | uint32(exp)<<16 | mantissa, nil
}

// DecodeFloat24 converts a float24 value back to float32. A zero exponent
// and mantissa decode as a signed zero.
func DecodeFloat24(v uint32) float32 {
	sign := (v >> 23) & 1
	exp := (v >> 16) & 0x7F
	mantissa := v & 0xFFFF
	if exp == 0 && mantissa == 0 {
		return math.Float32frombits(sign << 31)
	}
	return math.Float32frombits(sign<<31 | (exp+float24ExpBias)<<23 | mantissa<<7)
}
