package filter

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// Filter evaluates a symmetric two-sided convolution by direct lookup
// into a shared coefficient table. A Filter is immutable after
// construction and must be Released when no longer needed so its table
// can leave the cache.
type Filter struct {
	table    *CoefficientTable
	release  func()
	posWidth fixedpoint.Frac
	negWidth fixedpoint.Frac
}

// PosWidth returns how far beyond the nominal sampling point the
// kernel reaches, in frac-frame units.
func (f *Filter) PosWidth() fixedpoint.Frac { return f.posWidth }

// NegWidth returns how far before the nominal sampling point the
// kernel reaches, in frac-frame units.
func (f *Filter) NegWidth() fixedpoint.Frac { return f.negWidth }

// Table exposes the underlying coefficient table for tests and
// diagnostics.
func (f *Filter) Table() *CoefficientTable { return f.table }

// Release drops the filter's reference on its shared table.
func (f *Filter) Release() {
	if f.release != nil {
		f.release()
		f.release = nil
		f.table = nil
	}
}

// ComputeSample convolves source samples around center with the filter
// at the given sub-frame offset. fracOffset must be in [0, One);
// src must hold NegWidth() of history before center and PosWidth() of
// lookahead after it.
//
// The negative side walks center, center-1, ... at table offsets
// fracOffset, fracOffset+One, ...; the positive side walks center+1,
// center+2, ... at offsets One-fracOffset, 2*One-fracOffset, ....
func (f *Filter) ComputeSample(fracOffset fixedpoint.Frac, src []float32, center int) float32 {
	t := f.table
	width := t.sideWidth

	var sum float64

	tap := 0
	for offset := fracOffset; offset < width; offset += fixedpoint.One {
		sum += t.Read(offset) * float64(src[center-tap])
		tap++
	}

	tap = 0
	for offset := fixedpoint.One - fracOffset; offset < width; offset += fixedpoint.One {
		sum += t.Read(offset) * float64(src[center+1+tap])
		tap++
	}

	return float32(sum)
}
