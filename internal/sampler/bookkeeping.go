// Package sampler implements the per-link resamplers that consume
// queued source frames and produce destination frames into the mix
// accumulator: nearest-neighbor (point), linear, and windowed-sinc.
// Sampler selection is by source/destination format pair; the per-link
// mutable resampling state lives in Bookkeeping and is owned by the mix
// thread.
package sampler

import (
	"fmt"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/gain"
	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

// Bookkeeping is the mutable resampling state of one source→destination
// link. After link setup it is written only by that destination's mix
// thread; no locking is required.
//
// StepSize, RateModulo and Denominator express the exact rational
// source step per destination frame: StepSize whole frac-frame units
// plus RateModulo/Denominator of one unit. SrcPosModulo accumulates the
// fractional remainder so position error never compounds, no matter how
// long the stream runs. Denominator > RateModulo and
// Denominator > SrcPosModulo hold whenever these are used.
type Bookkeeping struct {
	// Gain is the link's gain stage, consulted once per Mix call.
	Gain *gain.Gain

	// StepSize is the whole frac-frames of source consumed per
	// destination frame produced.
	StepSize fixedpoint.Frac

	// RateModulo / Denominator is the sub-unit remainder of the step.
	RateModulo  uint64
	Denominator uint64

	// SrcPosModulo is the running fractional position in Denominator
	// units.
	SrcPosModulo uint64

	// DestFramesToFracSource maps destination frame numbers to
	// fractional source frames for the current timeline snapshot.
	DestFramesToFracSource timeline.Function

	// Generation stamps of the upstream and output timelines this
	// snapshot was derived from. A mismatch means the snapshot is
	// stale and must be recomputed before mixing.
	SourceTransGen uint32
	DestTransGen   uint32
}

// NewBookkeeping returns unity-rate bookkeeping with a fresh gain
// stage.
func NewBookkeeping() *Bookkeeping {
	return &Bookkeeping{
		Gain:        gain.NewGain(),
		StepSize:    fixedpoint.One,
		Denominator: 1,
	}
}

// SetRateModuloAndDenominator installs a new rational step remainder,
// rescaling the running position modulo so the sub-unit position is
// preserved across a rate change.
func (b *Bookkeeping) SetRateModuloAndDenominator(rateModulo, denominator uint64) {
	if denominator == 0 || rateModulo >= denominator {
		panic(fmt.Sprintf("sampler: invalid rate modulo %d/%d", rateModulo, denominator))
	}
	if denominator != b.Denominator {
		if b.Denominator != 0 {
			b.SrcPosModulo = b.SrcPosModulo * denominator / b.Denominator
		} else {
			b.SrcPosModulo = 0
		}
	}
	b.RateModulo = rateModulo
	b.Denominator = denominator
}

// SetStepFromRate installs the full rational step from a
// destination-frame→frac-source-frame rate.
func (b *Bookkeeping) SetStepFromRate(rate timeline.Rate) {
	subject := rate.SubjectDelta()
	reference := rate.ReferenceDelta()
	b.StepSize = fixedpoint.Frac(subject / reference)
	b.SetRateModuloAndDenominator(subject%reference, reference)
}

// Reset clears the running position state, used when a link's stream is
// flushed or its timeline is discontinuous.
func (b *Bookkeeping) Reset() {
	b.SrcPosModulo = 0
}
