package sampler

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
)

// Resampler names a concrete resampling algorithm.
type Resampler int

const (
	// ResamplerDefault lets Select choose by rate ratio.
	ResamplerDefault Resampler = iota

	// ResamplerPoint forces nearest-neighbor sampling.
	ResamplerPoint

	// ResamplerLinear forces two-point linear interpolation.
	ResamplerLinear

	// ResamplerSinc forces windowed-sinc interpolation.
	ResamplerSinc
)

// String implements fmt.Stringer.
func (r Resampler) String() string {
	switch r {
	case ResamplerDefault:
		return "default"
	case ResamplerPoint:
		return "point"
	case ResamplerLinear:
		return "linear"
	case ResamplerSinc:
		return "sinc"
	default:
		return fmt.Sprintf("Resampler(%d)", int(r))
	}
}

// Selection failures. These mean the format pair is fundamentally
// unsupported; callers must fail the link, not retry.
var (
	// ErrUnsupportedChannels rejects a channel-count combination no
	// sampler can serve.
	ErrUnsupportedChannels = errors.New("unsupported channel configuration")

	// ErrUnsupportedResampler rejects an explicit resampler hint that
	// cannot serve the format pair.
	ErrUnsupportedResampler = errors.New("resampler cannot serve format pair")
)

// resampledMaxChannels bounds the channel counts the resampling matrix
// covers; equal counts above it run through the N→N passthrough.
const resampledMaxChannels = 4

// Mixer is the per-link resampler. Mix is the single hot-path
// contract:
//
//   - dest is the interleaved float32 accumulator, destFrames its
//     capacity; destOffset is where production starts and must be less
//     than destFrames on entry.
//   - src holds interleaved source samples; fracSrcFrames is the whole
//     source length in frac-frames (at least one frame).
//   - srcOffset is the current position. It may be as low as
//     -PosFilterWidth (filter history reaching before frame zero) and
//     as high as fracSrcFrames, the equality priming history without
//     producing output.
//   - accumulate sums into dest instead of overwriting. A muted gain
//     stage requires accumulate: the buffer is assumed pre-zeroed and
//     only position bookkeeping advances.
//
// The returned consumed is true iff the source buffer is exhausted:
// the position has advanced past the last sample for which output can
// still be produced, accounting for the positive filter width. The
// caller then retires the packet and rebases srcOffset by
// -fracSrcFrames for the next one. False means the destination filled
// first (or the source is ahead of the mix position) and the packet
// must be retained.
type Mixer interface {
	Mix(dest []float32, destOffset int, src []float32,
		srcOffset fixedpoint.Frac, accumulate bool,
	) (newDestOffset int, newSrcOffset fixedpoint.Frac, consumed bool)

	// Reset discards cached stream history (on flush or timeline
	// discontinuity) so the next Mix starts clean.
	Reset()

	// PosFilterWidth is the filter's reach beyond the sampling point.
	PosFilterWidth() fixedpoint.Frac

	// NegFilterWidth is the filter's reach before the sampling point.
	NegFilterWidth() fixedpoint.Frac

	// Bookkeeping returns the link's mutable resampling state.
	Bookkeeping() *Bookkeeping

	// Close releases shared filter resources.
	Close()
}

// Select translates a source/destination format pair into a resampler.
// An explicit hint is honored or fails; it is never silently
// substituted. With ResamplerDefault: integer rate ratios (source an
// exact multiple of destination, or rates equal) take the point
// sampler, all others take sinc.
//
// A nil Mixer with an error means the formats are fundamentally
// incompatible for mixing; this is a hard per-link failure.
func Select(src, dest format.Format, hint Resampler) (Mixer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	if _, err := selectChannelMap(src.Channels, dest.Channels); err != nil {
		return nil, err
	}

	switch hint {
	case ResamplerPoint:
		if src.FramesPerSecond%dest.FramesPerSecond != 0 {
			return nil, fmt.Errorf("%w: %s cannot resample %d Hz to %d Hz",
				ErrUnsupportedResampler, hint, src.FramesPerSecond, dest.FramesPerSecond)
		}
		return newPointSampler(src, dest)
	case ResamplerLinear:
		return newLinearSampler(src, dest)
	case ResamplerSinc:
		return newSincSampler(src, dest)
	case ResamplerDefault:
		if src.FramesPerSecond%dest.FramesPerSecond == 0 {
			return newPointSampler(src, dest)
		}
		return newSincSampler(src, dest)
	default:
		return nil, fmt.Errorf("%w: unknown resampler hint %d", ErrUnsupportedResampler, int(hint))
	}
}

// channelMapFunc folds one source frame into one destination frame.
// Selected once at Select time, called once per destination frame.
type channelMapFunc func(dest, src []float32)

// selectChannelMap returns the mapping for a channel-count pair or an
// error if no sampler supports it. Supported: equal counts (any),
// 1→N and N→1 for N up to four, and the 2↔4 pairings.
func selectChannelMap(srcChans, destChans int) (channelMapFunc, error) {
	if srcChans == destChans {
		return func(dest, src []float32) { copy(dest, src) }, nil
	}
	if srcChans > resampledMaxChannels || destChans > resampledMaxChannels {
		return nil, fmt.Errorf("%w: %d -> %d", ErrUnsupportedChannels, srcChans, destChans)
	}

	switch {
	case srcChans == 1:
		return func(dest, src []float32) {
			for i := range dest {
				dest[i] = src[0]
			}
		}, nil
	case destChans == 1:
		inv := 1.0 / float32(srcChans)
		return func(dest, src []float32) {
			var sum float32
			for _, s := range src {
				sum += s
			}
			dest[0] = sum * inv
		}, nil
	case srcChans == 2 && destChans == 4:
		return func(dest, src []float32) {
			dest[0], dest[1] = src[0], src[1]
			dest[2], dest[3] = src[0], src[1]
		}, nil
	case srcChans == 4 && destChans == 2:
		return func(dest, src []float32) {
			dest[0] = (src[0] + src[2]) * 0.5
			dest[1] = (src[1] + src[3]) * 0.5
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d -> %d", ErrUnsupportedChannels, srcChans, destChans)
	}
}
