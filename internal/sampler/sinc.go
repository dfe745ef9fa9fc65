package sampler

import (
	"github.com/tphakala/go-audio-mixer/internal/filter"
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
)

// sincSampler interpolates with a windowed-sinc kernel, the
// band-limited resampler used for all non-integer rate conversions.
// A per-channel strip caches the kernel's full reach so convolution
// windows that straddle buffer boundaries read seamless history.
type sincSampler struct {
	mixerBase
	flt      *filter.Filter
	strip    *channelStrip
	sideTaps int64

	// stripBase is the source frame index held at strip position 0.
	// Negative after a buffer is consumed and positions rebase, when
	// the strip's tail is the previous buffer's final frames.
	// stripTop is the first source frame not yet loaded; slots at or
	// above it are zero until a buffer that contains them arrives.
	stripBase int64
	stripTop  int64
	primed    bool
}

func newSincSampler(src, dest format.Format) (*sincSampler, error) {
	flt := filter.NewSincFilter(uint32(src.FramesPerSecond),
		uint32(dest.FramesPerSecond), filter.DefaultSincSideTaps)
	base, err := newMixerBase(src, dest, flt.PosWidth(), flt.NegWidth())
	if err != nil {
		flt.Release()
		return nil, err
	}

	// The kernel needs NegWidth of history plus the center frame on
	// one side and PosWidth of lookahead on the other.
	stripLen := int(flt.NegWidth().Ceiling() + flt.PosWidth().Ceiling())
	s := &sincSampler{
		mixerBase: base,
		flt:       flt,
		strip:     newChannelStrip(src.Channels, stripLen),
		sideTaps:  flt.NegWidth().Floor(),
	}
	s.bk.SetStepFromRate(stepRate(src, dest))
	return s, nil
}

// Mix implements Mixer.
func (s *sincSampler) Mix(dest []float32, destOffset int, src []float32,
	srcOffset fixedpoint.Frac, accumulate bool,
) (int, fixedpoint.Frac, bool) {

	if s.bk.Gain.IsSilent() {
		newDest, newSrc, consumed := s.runMix(dest, destOffset, src, srcOffset, accumulate, s.sample)
		// History restarts from silence on unmute.
		s.primed = false
		return newDest, newSrc, consumed
	}

	newDest, newSrc, consumed := s.runMix(dest, destOffset, src, srcOffset, accumulate, s.sample)
	if consumed {
		srcFrames := int64(len(src) / s.srcChans)
		// Pull the buffer's tail into the strip, then rebase so the
		// next buffer's frame zero lines up.
		s.ensureWindow(srcFrames-int64(s.strip.len()), src)
		s.stripBase -= srcFrames
		s.stripTop -= srcFrames
	}
	return newDest, newSrc, consumed
}

func (s *sincSampler) sample(pos fixedpoint.Frac, src, out []float32) {
	frac := pos.Fraction()
	center := pos.Floor()

	s.ensureWindow(center-s.sideTaps, src)
	idx := int(center - s.stripBase)
	for ch := 0; ch < s.srcChans; ch++ {
		out[ch] = s.flt.ComputeSample(frac, s.strip.channel(ch), idx)
	}
}

// ensureWindow slides the strip forward so position 0 holds at least
// source frame base, then loads every strip slot at or above stripTop
// that the buffer covers. Frames before the buffer keep whatever
// history the strip carries; slots past stripTop stay zero until a
// buffer containing them arrives, so a rebase at a buffer boundary
// never strands an unloaded slot behind the load cursor.
func (s *sincSampler) ensureWindow(base int64, src []float32) {
	stripLen := int64(s.strip.len())

	if !s.primed {
		s.strip.clear()
		s.stripBase = base
		s.stripTop = base
		s.primed = true
	} else if base > s.stripBase {
		n := base - s.stripBase
		if n >= stripLen {
			s.strip.clear()
			s.stripTop = base
		} else {
			s.strip.shiftBy(int(n))
			if s.stripTop < base {
				s.stripTop = base
			}
		}
		s.stripBase = base
	}

	s.loadFrames(src, s.stripTop, s.stripBase+stripLen)
}

// loadFrames copies source frames [from, to) into the strip, skipping
// indices outside the buffer, and advances stripTop past everything
// loaded. Negative frames are pre-stream silence and count as loaded.
func (s *sincSampler) loadFrames(src []float32, from, to int64) {
	srcFrames := int64(len(src) / s.srcChans)
	loadable := to
	if loadable > srcFrames {
		loadable = srcFrames
	}
	if from < 0 {
		from = 0
	}
	for frame := from; frame < loadable; frame++ {
		idx := int(frame - s.stripBase)
		in := src[frame*int64(s.srcChans):]
		for ch := 0; ch < s.srcChans; ch++ {
			s.strip.channel(ch)[idx] = in[ch]
		}
	}
	if loadable > s.stripTop {
		s.stripTop = loadable
	}
}

// Reset implements Mixer, discarding the cached convolution history.
func (s *sincSampler) Reset() {
	s.primed = false
}

// Close implements Mixer.
func (s *sincSampler) Close() {
	if s.flt != nil {
		s.flt.Release()
		s.flt = nil
	}
}
