package filter

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// Linear filter geometry: a full frame-step per side, with widths one
// fixed-point unit short of a frame so that frame-aligned positions
// touch only one source frame.
const (
	linearSideWidth = fixedpoint.One
	linearPosWidth  = fixedpoint.One - 1
	linearNegWidth  = fixedpoint.One - 1
)

// linearEpsilon clamps vanishing tail coefficients to exactly zero.
const linearEpsilon = 1e-7

type linearKey struct {
	sideWidth fixedpoint.Frac
	fracBits  int
}

var linearCache tableCache[linearKey]

// NewLinearFilter returns the shared two-point linear (Bartlett
// window) filter.
func NewLinearFilter() *Filter {
	key := linearKey{sideWidth: linearSideWidth, fracBits: fixedpoint.FracBits}
	ref := linearCache.get(key, buildLinearTable)
	return &Filter{
		table:    ref.Table(),
		release:  ref.Release,
		posWidth: linearPosWidth,
		negWidth: linearNegWidth,
	}
}

// buildLinearTable fills a triangular window falling from unity at
// offset zero to zero at one full frame.
func buildLinearTable() *CoefficientTable {
	const transition = float64(fixedpoint.One)

	t := newCoefficientTable(linearSideWidth)
	t.forEach(true, func(offset fixedpoint.Frac, _ float64) float64 {
		c := (transition - float64(offset)) / transition
		if c < linearEpsilon {
			return 0.0
		}
		return c
	})
	return t
}
