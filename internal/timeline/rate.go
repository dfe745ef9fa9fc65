// Package timeline provides exact rational arithmetic for clock rate
// ratios and affine time maps. Rates are kept in lowest terms so that
// repeated composition never accumulates rounding error; scaling uses
// 128-bit intermediates and clamps to sentinel values on overflow
// instead of wrapping.
package timeline

import (
	"fmt"
	"math"
	"math/bits"
)

// Sentinel results from Scale. Callers must check for these before
// using a scaled value in further arithmetic or comparisons.
const (
	// ScaleOverflow is returned when the scaled value exceeds int64 range.
	ScaleOverflow = int64(math.MaxInt64)

	// ScaleUnderflow is returned when the scaled value is below int64 range.
	ScaleUnderflow = int64(math.MinInt64)
)

// RoundingMode selects how Scale resolves values that fall between
// representable integers.
type RoundingMode int

const (
	// RoundDown truncates toward negative infinity.
	RoundDown RoundingMode = iota

	// RoundUp rounds toward positive infinity.
	RoundUp
)

// Rate is a non-negative rational subjectDelta/referenceDelta, always
// stored in lowest terms with referenceDelta > 0. The zero value is the
// zero rate (0/1). Rate is an immutable value type.
type Rate struct {
	subjectDelta   uint64
	referenceDelta uint64
}

// NewRate constructs a rate from any two deltas, reducing by GCD.
// A zero referenceDelta is a programming error and panics.
func NewRate(subjectDelta, referenceDelta uint64) Rate {
	if referenceDelta == 0 {
		panic("timeline: rate with zero reference delta")
	}
	g := gcd(subjectDelta, referenceDelta)
	if g > 1 {
		subjectDelta /= g
		referenceDelta /= g
	}
	if subjectDelta == 0 {
		referenceDelta = 1
	}
	return Rate{subjectDelta: subjectDelta, referenceDelta: referenceDelta}
}

// Unity is the 1/1 rate.
func Unity() Rate { return Rate{subjectDelta: 1, referenceDelta: 1} }

// SubjectDelta returns the reduced numerator.
func (r Rate) SubjectDelta() uint64 { return r.subjectDelta }

// ReferenceDelta returns the reduced denominator.
// Zero-value rates report a denominator of 1.
func (r Rate) ReferenceDelta() uint64 {
	if r.referenceDelta == 0 {
		return 1
	}
	return r.referenceDelta
}

// Invertible reports whether Inverse is defined (numerator non-zero).
func (r Rate) Invertible() bool { return r.subjectDelta != 0 }

// Inverse swaps subject and reference deltas. The operands are already
// reduced so no further reduction is needed. Panics if the rate is zero.
func (r Rate) Inverse() Rate {
	if r.subjectDelta == 0 {
		panic("timeline: inverse of zero rate")
	}
	return Rate{subjectDelta: r.ReferenceDelta(), referenceDelta: r.subjectDelta}
}

// IsUnity reports whether the rate is exactly 1/1.
func (r Rate) IsUnity() bool {
	return r.subjectDelta == r.ReferenceDelta()
}

// Float returns the rate as a float64. Diagnostic use only; the exact
// rational form is authoritative.
func (r Rate) Float() float64 {
	return float64(r.subjectDelta) / float64(r.ReferenceDelta())
}

// String implements fmt.Stringer.
func (r Rate) String() string {
	return fmt.Sprintf("%d/%d", r.subjectDelta, r.ReferenceDelta())
}

// Scale multiplies a signed value by the rate using a 128-bit
// intermediate product. Results outside int64 range clamp to
// ScaleOverflow / ScaleUnderflow rather than wrapping.
func (r Rate) Scale(value int64, mode RoundingMode) int64 {
	ref := r.ReferenceDelta()

	negative := value < 0
	var absValue uint64
	if negative {
		// Two's-complement negate handles math.MinInt64.
		absValue = -uint64(value)
	} else {
		absValue = uint64(value)
	}

	hi, lo := bits.Mul64(absValue, r.subjectDelta)

	// The division below floors the magnitude. The magnitude must round
	// away from zero exactly when the signed result rounds toward the
	// requested direction: RoundUp on positive values, RoundDown
	// (toward negative infinity) on negative values.
	roundAway := (mode == RoundUp) != negative
	if roundAway {
		var carry uint64
		lo, carry = bits.Add64(lo, ref-1, 0)
		hi += carry
	}

	if hi >= ref {
		// Quotient does not fit in 64 bits.
		if negative {
			return ScaleUnderflow
		}
		return ScaleOverflow
	}
	quo, _ := bits.Div64(hi, lo, ref)

	if negative {
		if quo > 1<<63 {
			return ScaleUnderflow
		}
		return -int64(quo)
	}
	if quo > uint64(math.MaxInt64) {
		return ScaleOverflow
	}
	return int64(quo)
}

// Product multiplies two rates. When exact is true, any loss of
// precision is a programming error and panics. When exact is false the
// numerator and denominator are right-shifted together until both fit
// in 64 bits, silently losing low-order precision.
func Product(a, b Rate, exact bool) Rate {
	// Cross-reduce first so the common cases never need 128 bits.
	as, ar := a.subjectDelta, a.ReferenceDelta()
	bs, br := b.subjectDelta, b.ReferenceDelta()

	if g := gcd(as, br); g > 1 {
		as /= g
		br /= g
	}
	if g := gcd(bs, ar); g > 1 {
		bs /= g
		ar /= g
	}

	subjectHi, subjectLo := bits.Mul64(as, bs)
	referenceHi, referenceLo := bits.Mul64(ar, br)

	for subjectHi != 0 || referenceHi != 0 {
		if exact {
			panic("timeline: product does not fit in 64/64 bits")
		}
		subjectLo = subjectLo>>1 | subjectHi<<63
		subjectHi >>= 1
		referenceLo = referenceLo>>1 | referenceHi<<63
		referenceHi >>= 1
	}
	if referenceLo == 0 {
		// Denominator shifted to zero; the rate is too extreme to
		// represent at all.
		panic("timeline: product reference delta underflowed to zero")
	}
	return NewRate(subjectLo, referenceLo)
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
