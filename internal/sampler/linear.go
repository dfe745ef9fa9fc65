package sampler

import (
	"github.com/tphakala/go-audio-mixer/internal/filter"
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
)

// linearSampler interpolates each destination frame from the two
// source frames bracketing its position, weighted by the coefficient
// table. One frame of history per channel carries the interpolation
// across buffer boundaries, so back-to-back buffers splice without a
// seam.
type linearSampler struct {
	mixerBase
	flt *filter.Filter

	history    []float32
	hasHistory bool
}

func newLinearSampler(src, dest format.Format) (*linearSampler, error) {
	flt := filter.NewLinearFilter()
	base, err := newMixerBase(src, dest, flt.PosWidth(), flt.NegWidth())
	if err != nil {
		flt.Release()
		return nil, err
	}
	s := &linearSampler{
		mixerBase: base,
		flt:       flt,
		history:   make([]float32, src.Channels),
	}
	s.bk.SetStepFromRate(stepRate(src, dest))
	return s, nil
}

// Mix implements Mixer.
func (s *linearSampler) Mix(dest []float32, destOffset int, src []float32,
	srcOffset fixedpoint.Frac, accumulate bool,
) (int, fixedpoint.Frac, bool) {

	if s.bk.Gain.IsSilent() {
		// Nothing audible crosses the boundary while silent, so the
		// history restarts from silence on unmute.
		newDest, newSrc, consumed := s.runMix(dest, destOffset, src, srcOffset, accumulate, s.sample)
		s.Reset()
		return newDest, newSrc, consumed
	}

	newDest, newSrc, consumed := s.runMix(dest, destOffset, src, srcOffset, accumulate, s.sample)
	if consumed {
		last := src[len(src)-s.srcChans:]
		copy(s.history, last)
		s.hasHistory = true
	}
	return newDest, newSrc, consumed
}

func (s *linearSampler) sample(pos fixedpoint.Frac, src, out []float32) {
	frac := pos.Fraction()
	center := pos.Floor()

	if frac == 0 {
		frame := src[center*int64(s.srcChans):]
		copy(out, frame[:s.srcChans])
		return
	}

	t := s.flt.Table()
	c0 := t.Read(frac)
	c1 := t.Read(fixedpoint.One - frac)

	s1 := src[(center+1)*int64(s.srcChans):]
	if center < 0 {
		for ch := 0; ch < s.srcChans; ch++ {
			out[ch] = float32(c0*float64(s.history[ch]) + c1*float64(s1[ch]))
		}
		return
	}

	s0 := src[center*int64(s.srcChans):]
	for ch := 0; ch < s.srcChans; ch++ {
		out[ch] = float32(c0*float64(s0[ch]) + c1*float64(s1[ch]))
	}
}

// Reset implements Mixer, discarding the carried boundary frame.
func (s *linearSampler) Reset() {
	for i := range s.history {
		s.history[i] = 0
	}
	s.hasHistory = false
}

// Close implements Mixer.
func (s *linearSampler) Close() {
	if s.flt != nil {
		s.flt.Release()
		s.flt = nil
	}
}
