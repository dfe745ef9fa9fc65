// Package fixedpoint provides the fixed-point fractional-frame position
// type used throughout the mixing core. Source positions are tracked as
// signed 64-bit integers with FracBits fractional bits, enabling
// sub-sample accuracy without floating-point drift. The bit layout is
// part of the core's position-exactness contract and must not change.
package fixedpoint

import "fmt"

const (
	// FracBits is the number of fractional bits in a Frac value.
	FracBits = 13

	// One is one whole frame in frac-frame units.
	One Frac = 1 << FracBits

	// Half is half a frame in frac-frame units.
	Half Frac = One >> 1

	// Mask isolates the fractional part of a Frac value.
	Mask Frac = One - 1
)

// Frac is a frame position or distance in fixed-point fractional
// frames. Negative values are valid and refer to positions before
// frame zero (filter history).
type Frac int64

// FromFrames converts a whole frame count to frac-frames.
func FromFrames(frames int64) Frac {
	return Frac(frames) << FracBits
}

// Floor returns the whole-frame index at or below f.
// Shifting, not dividing, keeps flooring correct for negative values.
func (f Frac) Floor() int64 {
	return int64(f >> FracBits)
}

// Ceiling returns the whole-frame index at or above f.
func (f Frac) Ceiling() int64 {
	return int64((f + Mask) >> FracBits)
}

// Fraction returns the fractional part of f, always in [0, One).
func (f Frac) Fraction() Frac {
	return f & Mask
}

// Frames returns f as a float64 frame count. Diagnostic use only.
func (f Frac) Frames() float64 {
	return float64(f) / float64(One)
}

// String implements fmt.Stringer, rendering as "frames+fraction/8192".
func (f Frac) String() string {
	return fmt.Sprintf("%d+%d/%d", f.Floor(), f.Fraction(), int64(One))
}

// AddChecked adds two positions, reporting rather than wrapping on
// overflow.
func AddChecked(a, b Frac) (Frac, bool) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, false
	}
	return sum, true
}

// MulFrames multiplies a whole frame count by a per-frame Frac step,
// reporting rather than wrapping on overflow.
func MulFrames(frames int64, step Frac) (Frac, bool) {
	if frames == 0 || step == 0 {
		return 0, true
	}
	product := Frac(frames) * step
	if product/Frac(frames) != step {
		return 0, false
	}
	return product, true
}
