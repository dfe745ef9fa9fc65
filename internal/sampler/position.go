package sampler

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// positionManager tracks the source and destination cursors of one Mix
// call and applies the rational step exactly. Every sampler's inner
// loop consults frameCanBeMixed / sourceIsConsumed each iteration and
// advances through advanceFrame; the muted fast path uses advanceToEnd
// to skip to the exhaustion point without per-frame iteration.
type positionManager struct {
	srcOffset     fixedpoint.Frac
	destOffset    int
	fracSrcFrames fixedpoint.Frac
	destFrames    int

	posFilterWidth fixedpoint.Frac

	stepSize     fixedpoint.Frac
	rateModulo   uint64
	denominator  uint64
	srcPosModulo uint64
}

// setup primes the manager for one Mix call from the link Bookkeeping.
func (pm *positionManager) setup(b *Bookkeeping, posFilterWidth fixedpoint.Frac,
	srcOffset fixedpoint.Frac, fracSrcFrames fixedpoint.Frac,
	destOffset, destFrames int) {

	if b.Denominator == 0 || b.SrcPosModulo >= b.Denominator {
		panic("sampler: position modulo out of range")
	}

	pm.srcOffset = srcOffset
	pm.destOffset = destOffset
	pm.fracSrcFrames = fracSrcFrames
	pm.destFrames = destFrames
	pm.posFilterWidth = posFilterWidth
	pm.stepSize = b.StepSize
	pm.rateModulo = b.RateModulo
	pm.denominator = b.Denominator
	pm.srcPosModulo = b.SrcPosModulo
}

// save writes the running modulo back to the Bookkeeping.
func (pm *positionManager) save(b *Bookkeeping) {
	b.SrcPosModulo = pm.srcPosModulo
}

// sourceIsConsumed reports whether no further output can be produced
// from this source buffer: the position has advanced past the last
// sample for which the filter's positive width is still available.
func (pm *positionManager) sourceIsConsumed() bool {
	return pm.srcOffset+pm.posFilterWidth >= pm.fracSrcFrames
}

// frameCanBeMixed reports whether one more destination frame can be
// produced: destination capacity remains and the source provides the
// filter's full positive reach.
func (pm *positionManager) frameCanBeMixed() bool {
	return pm.destOffset < pm.destFrames && !pm.sourceIsConsumed()
}

// advanceFrame applies one destination-frame step, carrying the exact
// rational remainder.
func (pm *positionManager) advanceFrame() {
	pm.destOffset++
	pm.srcOffset += pm.stepSize
	if pm.rateModulo != 0 {
		pm.srcPosModulo += pm.rateModulo
		if pm.srcPosModulo >= pm.denominator {
			pm.srcPosModulo -= pm.denominator
			pm.srcOffset++
		}
	}
}

// advanceToEnd advances in one computation to the first position where
// the source is consumed or the destination is full, whichever comes
// first. Used by the muted path, where only bookkeeping moves.
func (pm *positionManager) advanceToEnd() {
	if pm.sourceIsConsumed() {
		return
	}

	remainingDest := int64(pm.destFrames - pm.destOffset)

	// Destination frames needed to consume the source, ignoring the
	// modulo carry, as a starting estimate.
	need := int64(pm.fracSrcFrames - pm.posFilterWidth - pm.srcOffset)
	step := int64(pm.stepSize)
	estimate := need / (step + 1)

	// The estimate can be short by at most a few frames of carry;
	// settle it exactly.
	n := estimate
	if n > remainingDest {
		n = remainingDest
	}
	if n < 0 {
		n = 0
	}
	pm.advanceBy(n)
	for pm.destOffset < pm.destFrames && !pm.sourceIsConsumed() {
		pm.advanceFrame()
	}
}

// advanceBy applies n steps in closed form.
func (pm *positionManager) advanceBy(n int64) {
	if n <= 0 {
		return
	}
	pm.destOffset += int(n)
	pm.srcOffset += fixedpoint.Frac(n) * pm.stepSize
	if pm.rateModulo != 0 {
		total := pm.srcPosModulo + uint64(n)*pm.rateModulo
		pm.srcOffset += fixedpoint.Frac(total / pm.denominator)
		pm.srcPosModulo = total % pm.denominator
	}
}
