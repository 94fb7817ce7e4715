package cpu

import (
	"math"
)

const (
	FLOATING_BIAS = 4    // Exponent bias.
	FLOATING_MAX  = 0x7f // Largest magnitude, 7.5
)

// Floating is the one byte floating point format of the float-add opcode.
//
//	  7    6..4     3..0
//	sign  exponent  mantissa
//
// The exponent is biased by 4, and the binary point sits left of the
// mantissa, so the value is ±(mantissa/16) * 2^exponent.
type Floating uint8

// Sign returns the sign bit.
func (fl Floating) Sign() uint8 {
	return uint8(fl >> 7)
}

// Exponent returns the unbiased exponent, in the range -4..3.
func (fl Floating) Exponent() int {
	return int((fl>>4)&0x7) - FLOATING_BIAS
}

// Mantissa returns the four mantissa bits.
func (fl Floating) Mantissa() uint8 {
	return uint8(fl & 0xf)
}

// Float decodes the value.
func (fl Floating) Float() (value float64) {
	value = math.Ldexp(float64(fl.Mantissa())/16, fl.Exponent())
	if fl.Sign() == 1 {
		value = -value
	}
	return
}

// MakeFloating encodes a value, truncating mantissa bits that do not fit.
// Magnitudes above 7.5 saturate, magnitudes too small for the smallest
// exponent flush to zero, and zero is always 0x00.
func MakeFloating(value float64) (fl Floating) {
	if math.IsNaN(value) {
		return
	}

	var sign Floating
	if value < 0 {
		sign = 0x80
		value = -value
	}

	if value == 0 {
		return
	}

	if math.IsInf(value, 0) {
		fl = sign | FLOATING_MAX
		return
	}

	frac, exp := math.Frexp(value)
	if exp > 3 {
		fl = sign | FLOATING_MAX
		return
	}

	if exp < -FLOATING_BIAS {
		frac = math.Ldexp(frac, exp+FLOATING_BIAS)
		exp = -FLOATING_BIAS
	}

	mantissa := Floating(frac * 16)
	if mantissa == 0 {
		return
	}

	fl = sign | Floating(exp+FLOATING_BIAS)<<4 | mantissa
	return
}
