package filter

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

const (
	// DefaultSincSideTaps is the number of whole source frames the sinc
	// kernel reaches on each side of the sampling point.
	DefaultSincSideTaps = 13

	// sincZeroThreshold is the float32 machine epsilon. After DC
	// normalization, taps below epsilon times the unity DC amplitude
	// contribute nothing at output precision and are snapped to zero,
	// which also eliminates denormals in the hot loop.
	sincZeroThreshold = 1.19209290e-7
)

type sincKey struct {
	sideWidth      fixedpoint.Frac
	fracBits       int
	subjectDelta   uint64
	referenceDelta uint64
}

var sincCache tableCache[sincKey]

// SincSideLength returns the per-side table coverage for a given tap
// count, in frac-frame units.
func SincSideLength(sideTaps int) fixedpoint.Frac {
	return fixedpoint.FromFrames(int64(sideTaps) + 1)
}

// NewSincFilter returns a shared windowed-sinc filter for the given
// source and destination frame rates. Tables are cached per
// (width, rate ratio) pair: the kernel's cutoff depends on the
// conversion ratio, so each distinct ratio gets its own table.
func NewSincFilter(sourceRate, destRate uint32, sideTaps int) *Filter {
	if sideTaps <= 0 {
		sideTaps = DefaultSincSideTaps
	}
	sideWidth := SincSideLength(sideTaps)

	// Reduce the ratio so equivalent rate pairs share one table.
	g := gcdU32(sourceRate, destRate)
	key := sincKey{
		sideWidth:      sideWidth,
		fracBits:       fixedpoint.FracBits,
		subjectDelta:   uint64(destRate / g),
		referenceDelta: uint64(sourceRate / g),
	}

	ref := sincCache.get(key, func() *CoefficientTable {
		return buildSincTable(sideWidth, float64(destRate)/float64(sourceRate))
	})
	return &Filter{
		table:    ref.Table(),
		release:  ref.Release,
		posWidth: sideWidth - 1,
		negWidth: sideWidth - 1,
	}
}

// buildSincTable synthesizes one side of the symmetric windowed-sinc
// kernel and normalizes it to exactly unity DC response.
//
// The sinc argument is scaled by min(conversionRatio, 1): when
// down-sampling, the low-pass band must narrow to the output Nyquist;
// when up-sampling it stays at the input Nyquist so the passband is
// not needlessly narrowed.
func buildSincTable(sideWidth fixedpoint.Frac, conversionRatio float64) *CoefficientTable {
	cutoff := math.Min(conversionRatio, 1.0)
	thetaFactor := cutoff * math.Pi / float64(fixedpoint.One)

	t := newCoefficientTable(sideWidth)
	t.forEach(true, func(offset fixedpoint.Frac, _ float64) float64 {
		if offset == 0 {
			return 1.0
		}
		theta := thetaFactor * float64(offset)
		sinc := math.Sin(theta) / theta

		// Von Hann window over the filter width, reaching zero at the
		// kernel edge.
		window := 0.5 * (1.0 + math.Cos(math.Pi*float64(offset)/float64(sideWidth)))

		return sinc * window
	})

	normalizeSincDC(t)
	return t
}

// normalizeSincDC scales the table so the sum of taps touched at a
// frame-aligned offset is exactly 1.0 (unity response at 0 Hz), then
// snaps sub-epsilon taps to zero.
func normalizeSincDC(t *CoefficientTable) {
	// A frame-aligned position reads offset 0 plus every whole-frame
	// offset on both sides; by symmetry that is coeff(0) + 2*sum of the
	// frame-aligned side taps.
	aligned := make([]float64, 0, t.Stride())
	for offset := fixedpoint.One; offset < t.sideWidth; offset += fixedpoint.One {
		aligned = append(aligned, t.Read(offset))
	}
	dcGain := t.Read(0) + 2.0*floats.Sum(aligned)

	f64.Scale(t.coeffs, t.coeffs, 1.0/dcGain)

	t.forEach(true, func(_ fixedpoint.Frac, v float64) float64 {
		if math.Abs(v) < sincZeroThreshold {
			return 0.0
		}
		return v
	})
}

func gcdU32(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
