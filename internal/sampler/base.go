package sampler

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
	"github.com/tphakala/go-audio-mixer/internal/gain"
	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

// nanosPerSecond converts a destination frame rate into the
// frames-per-nanosecond rate ramps resolve against.
const nanosPerSecond = 1_000_000_000

// stepRate is the default frac-source-frames per destination frame
// for a format pair, before any link timeline overrides it.
func stepRate(src, dest format.Format) timeline.Rate {
	return timeline.NewRate(
		uint64(src.FramesPerSecond)*uint64(fixedpoint.One),
		uint64(dest.FramesPerSecond))
}

// sampleFunc produces one source frame's worth of interpolated samples
// at a fractional source position, one value per source channel.
// Implementations read from src and, for positions whose filter reach
// extends before the buffer, from their cached history.
type sampleFunc func(pos fixedpoint.Frac, src []float32, out []float32)

// mixerBase carries the state every sampler shares: the link
// bookkeeping, filter widths, channel mapping and the gain-resolved
// inner loop. Samplers embed it and supply only their sampleFunc.
type mixerBase struct {
	bk        *Bookkeeping
	chanMap   channelMapFunc
	srcChans  int
	destChans int

	posWidth fixedpoint.Frac
	negWidth fixedpoint.Frac

	framesPerNanosecond timeline.Rate

	// Per-call scratch. Samplers are single-threaded per link, so
	// these persist across Mix calls without synchronization.
	scaleArr  []gain.Scale
	srcFrame  []float32
	destFrame []float32
}

func newMixerBase(src, dest format.Format, posWidth, negWidth fixedpoint.Frac) (mixerBase, error) {
	chanMap, err := selectChannelMap(src.Channels, dest.Channels)
	if err != nil {
		return mixerBase{}, err
	}
	return mixerBase{
		bk:                  NewBookkeeping(),
		chanMap:             chanMap,
		srcChans:            src.Channels,
		destChans:           dest.Channels,
		posWidth:            posWidth,
		negWidth:            negWidth,
		framesPerNanosecond: timeline.NewRate(uint64(dest.FramesPerSecond), nanosPerSecond),
		scaleArr:            make([]gain.Scale, gain.MaxRampFrames),
		srcFrame:            make([]float32, src.Channels),
		destFrame:           make([]float32, dest.Channels),
	}, nil
}

// PosFilterWidth implements Mixer.
func (b *mixerBase) PosFilterWidth() fixedpoint.Frac { return b.posWidth }

// NegFilterWidth implements Mixer.
func (b *mixerBase) NegFilterWidth() fixedpoint.Frac { return b.negWidth }

// Bookkeeping implements Mixer.
func (b *mixerBase) Bookkeeping() *Bookkeeping { return b.bk }

// runMix is the shared Mix body. It resolves the gain stage once,
// selects one of four inner loops (silent, unity, constant scale,
// ramping) and drives positionManager across the call. sample is
// invoked once per produced destination frame.
func (b *mixerBase) runMix(dest []float32, destOffset int, src []float32,
	srcOffset fixedpoint.Frac, accumulate bool, sample sampleFunc,
) (int, fixedpoint.Frac, bool) {

	destFrames := len(dest) / b.destChans
	fracSrcFrames := fixedpoint.FromFrames(int64(len(src) / b.srcChans))

	var pm positionManager
	pm.setup(b.bk, b.posWidth, srcOffset, fracSrcFrames, destOffset, destFrames)

	g := b.bk.Gain
	startDest := destOffset

	switch {
	case g.IsSilent():
		pm.advanceToEnd()
		if !accumulate {
			region := dest[startDest*b.destChans : pm.destOffset*b.destChans]
			for i := range region {
				region[i] = 0
			}
		}

	case g.IsRamping():
		// One scale array bounds one pass. Production stops at the
		// array's end and the caller re-enters Mix for the remainder,
		// so per-frame scales never lag the advancing ramp.
		filled := g.GetScaleArray(b.scaleArr, b.framesPerNanosecond)
		for pm.frameCanBeMixed() {
			frame := pm.destOffset - startDest
			if frame >= filled {
				break
			}
			scale := b.scaleArr[frame]
			sample(pm.srcOffset, src, b.srcFrame)
			b.chanMap(b.destFrame, b.srcFrame)
			out := dest[pm.destOffset*b.destChans:]
			if accumulate {
				for ch := 0; ch < b.destChans; ch++ {
					out[ch] += b.destFrame[ch] * scale
				}
			} else {
				for ch := 0; ch < b.destChans; ch++ {
					out[ch] = b.destFrame[ch] * scale
				}
			}
			pm.advanceFrame()
		}

	case g.IsUnity():
		for pm.frameCanBeMixed() {
			sample(pm.srcOffset, src, b.srcFrame)
			b.chanMap(b.destFrame, b.srcFrame)
			out := dest[pm.destOffset*b.destChans:]
			if accumulate {
				for ch := 0; ch < b.destChans; ch++ {
					out[ch] += b.destFrame[ch]
				}
			} else {
				copy(out[:b.destChans], b.destFrame)
			}
			pm.advanceFrame()
		}

	default:
		scale := g.GetGainScale()
		for pm.frameCanBeMixed() {
			sample(pm.srcOffset, src, b.srcFrame)
			b.chanMap(b.destFrame, b.srcFrame)
			out := dest[pm.destOffset*b.destChans:]
			if accumulate {
				for ch := 0; ch < b.destChans; ch++ {
					out[ch] += b.destFrame[ch] * scale
				}
			} else {
				for ch := 0; ch < b.destChans; ch++ {
					out[ch] = b.destFrame[ch] * scale
				}
			}
			pm.advanceFrame()
		}
	}

	produced := int64(pm.destOffset - startDest)
	if produced > 0 {
		g.Advance(produced)
	}
	pm.save(b.bk)

	return pm.destOffset, pm.srcOffset, pm.sourceIsConsumed()
}
