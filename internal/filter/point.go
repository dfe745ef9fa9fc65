package filter

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// Point filter geometry. The table covers offsets [0, Half] so that a
// position resolves to whichever source frame lies within half a frame
// of it.
const (
	pointSideWidth = fixedpoint.Half + 1
	pointPosWidth  = fixedpoint.Half
	pointNegWidth  = fixedpoint.Half - 1
)

// Tie-break coefficient for a position exactly midway between frames:
// both neighbors contribute equally, keeping the response zero-phase.
const pointMidpointCoefficient = 0.5

type pointKey struct {
	sideWidth fixedpoint.Frac
	fracBits  int
}

var pointCache tableCache[pointKey]

// NewPointFilter returns the shared nearest-neighbor filter.
func NewPointFilter() *Filter {
	key := pointKey{sideWidth: pointSideWidth, fracBits: fixedpoint.FracBits}
	ref := pointCache.get(key, buildPointTable)
	return &Filter{
		table:    ref.Table(),
		release:  ref.Release,
		posWidth: pointPosWidth,
		negWidth: pointNegWidth,
	}
}

// buildPointTable fills a rectangular window: unity strictly inside the
// half-frame boundary, 0.5 exactly at it.
func buildPointTable() *CoefficientTable {
	t := newCoefficientTable(pointSideWidth)
	t.forEach(true, func(offset fixedpoint.Frac, _ float64) float64 {
		if offset < fixedpoint.Half {
			return 1.0
		}
		return pointMidpointCoefficient
	})
	return t
}
