// Package filter synthesizes the resampling filters used by the mixer
// samplers: nearest-neighbor (point), linear, and windowed sinc. Filter
// taps are precomputed into coefficient tables indexed by fixed-point
// fractional offset, so the per-sample hot path is a table lookup and
// multiply with no runtime trigonometry.
package filter

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// CoefficientTable stores filter taps for one side of a symmetric
// filter, covering fractional offsets [0, sideWidth).
//
// The logical index is a frac-frame offset. Physically the taps are
// reordered so that all taps sharing the same fractional part (the same
// resampling phase) are contiguous: a single output sample walks one
// phase, so this layout keeps its lookups in cache. The reordering is
// a performance invariant only; Read hides it completely.
type CoefficientTable struct {
	coeffs    []float64
	sideWidth fixedpoint.Frac
	stride    int // taps per phase: ceil(sideWidth / One)
}

// newCoefficientTable allocates a zeroed table covering [0, sideWidth).
func newCoefficientTable(sideWidth fixedpoint.Frac) *CoefficientTable {
	stride := int(sideWidth.Ceiling())
	return &CoefficientTable{
		coeffs:    make([]float64, stride*int(fixedpoint.One)),
		sideWidth: sideWidth,
		stride:    stride,
	}
}

// SideWidth returns the covered offset range in frac-frame units.
func (t *CoefficientTable) SideWidth() fixedpoint.Frac { return t.sideWidth }

// Stride returns the number of taps in each phase.
func (t *CoefficientTable) Stride() int { return t.stride }

// physicalIndex maps a logical frac-frame offset to the flat slice
// index: fraction selects the phase block, the integer part indexes
// within it.
func (t *CoefficientTable) physicalIndex(offset fixedpoint.Frac) int {
	integer := int(offset >> fixedpoint.FracBits)
	fraction := int(offset & fixedpoint.Mask)
	return fraction*t.stride + integer
}

// Read returns the tap at the given frac-frame offset.
// Offsets at or beyond SideWidth are a programming error.
func (t *CoefficientTable) Read(offset fixedpoint.Frac) float64 {
	return t.coeffs[t.physicalIndex(offset)]
}

// set stores a tap during table construction.
func (t *CoefficientTable) set(offset fixedpoint.Frac, value float64) {
	t.coeffs[t.physicalIndex(offset)] = value
}

// forEach visits every logical offset in [0, sideWidth) in order,
// replacing each tap with the returned value when mutate is true.
func (t *CoefficientTable) forEach(mutate bool, fn func(offset fixedpoint.Frac, value float64) float64) {
	for offset := fixedpoint.Frac(0); offset < t.sideWidth; offset++ {
		v := fn(offset, t.Read(offset))
		if mutate {
			t.set(offset, v)
		}
	}
}

// MemoryUsage returns the approximate table size in bytes.
func (t *CoefficientTable) MemoryUsage() int64 {
	const bytesPerFloat64 = 8
	return int64(len(t.coeffs)) * bytesPerFloat64
}
