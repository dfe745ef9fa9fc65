package sampler

import (
	"github.com/tphakala/go-audio-mixer/internal/filter"
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
)

// pointSampler is the nearest-neighbor resampler: each destination
// frame takes the closest source frame, with the exact midpoint
// averaging its two neighbors. Selected for integer rate ratios, where
// nearest-neighbor is exact and the cheapest option.
type pointSampler struct {
	mixerBase
	flt *filter.Filter
}

func newPointSampler(src, dest format.Format) (*pointSampler, error) {
	flt := filter.NewPointFilter()
	base, err := newMixerBase(src, dest, flt.PosWidth(), flt.NegWidth())
	if err != nil {
		flt.Release()
		return nil, err
	}
	s := &pointSampler{mixerBase: base, flt: flt}
	s.bk.SetStepFromRate(stepRate(src, dest))
	return s, nil
}

// Mix implements Mixer.
func (s *pointSampler) Mix(dest []float32, destOffset int, src []float32,
	srcOffset fixedpoint.Frac, accumulate bool,
) (int, fixedpoint.Frac, bool) {
	return s.runMix(dest, destOffset, src, srcOffset, accumulate, s.sample)
}

func (s *pointSampler) sample(pos fixedpoint.Frac, src, out []float32) {
	frac := pos.Fraction()
	center := pos.Floor()

	switch {
	case frac < fixedpoint.Half:
		frame := src[center*int64(s.srcChans):]
		copy(out, frame[:s.srcChans])
	case frac > fixedpoint.Half:
		frame := src[(center+1)*int64(s.srcChans):]
		copy(out, frame[:s.srcChans])
	default:
		// Exactly between two frames: average them. At the buffer's
		// leading edge only the first frame exists.
		if center < 0 {
			copy(out, src[:s.srcChans])
			return
		}
		lo := src[center*int64(s.srcChans):]
		hi := src[(center+1)*int64(s.srcChans):]
		for ch := 0; ch < s.srcChans; ch++ {
			out[ch] = (lo[ch] + hi[ch]) * 0.5
		}
	}
}

// Reset implements Mixer. The point sampler keeps no stream history.
func (s *pointSampler) Reset() {}

// Close implements Mixer.
func (s *pointSampler) Close() {
	if s.flt != nil {
		s.flt.Release()
		s.flt = nil
	}
}
