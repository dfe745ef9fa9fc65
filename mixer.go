package mixer

import (
	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
	"github.com/tphakala/go-audio-mixer/internal/gain"
	"github.com/tphakala/go-audio-mixer/internal/output"
	"github.com/tphakala/go-audio-mixer/internal/packetqueue"
	"github.com/tphakala/go-audio-mixer/internal/sampler"
	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

// Stream format surface.
type (
	// Format describes one stream: sample encoding, channel count and
	// frame rate.
	Format = format.Format

	// SampleFormat enumerates the supported wire encodings.
	SampleFormat = format.SampleFormat
)

const (
	Unsigned8    = format.Unsigned8
	Signed16     = format.Signed16
	Signed24In32 = format.Signed24In32
	Float32      = format.Float32
)

// ErrInvalidFormat reports an unsupported Format.
var ErrInvalidFormat = format.ErrInvalidFormat

// Frac is a stream position in fixed-point fractional frames
// (13 fractional bits).
type Frac = fixedpoint.Frac

// FracOne is one whole frame in Frac units.
const FracOne = fixedpoint.One

// FramesToFrac converts a whole frame count to Frac units.
func FramesToFrac(frames int64) Frac {
	return fixedpoint.FromFrames(frames)
}

// Resampler selection.
type (
	// Mixer is a selected per-link resampler. See Select.
	Mixer = sampler.Mixer

	// Resampler names a resampling algorithm for Select hints.
	Resampler = sampler.Resampler
)

const (
	ResamplerDefault = sampler.ResamplerDefault
	ResamplerPoint   = sampler.ResamplerPoint
	ResamplerLinear  = sampler.ResamplerLinear
	ResamplerSinc    = sampler.ResamplerSinc
)

var (
	ErrUnsupportedChannels  = sampler.ErrUnsupportedChannels
	ErrUnsupportedResampler = sampler.ErrUnsupportedResampler
)

// Select translates a source/destination format pair into a resampler,
// or fails hard when the pair is unsupported. An explicit hint is
// honored or rejected, never silently substituted.
func Select(src, dest Format, hint Resampler) (Mixer, error) {
	return sampler.Select(src, dest, hint)
}

// Gain staging.
type (
	// Gain is a two-stage (source and destination) gain control with
	// mute and ramp support.
	Gain = gain.Gain

	// GainCurve maps normalized volume [0,1] to dB by piecewise-linear
	// interpolation.
	GainCurve = gain.Curve

	// VolumeMapping is one GainCurve control point.
	VolumeMapping = gain.VolumeMapping
)

const (
	UnityGainDB = gain.UnityGainDB
	MinGainDB   = gain.MinGainDB
	MaxGainDB   = gain.MaxGainDB
)

// NewGainCurve validates mappings and builds a curve.
func NewGainCurve(mappings []VolumeMapping) (*GainCurve, error) {
	return gain.CurveFromMappings(mappings)
}

// DefaultGainCurve is the stock two-point curve from minGainDB to 0 dB.
func DefaultGainCurve(minGainDB float64) *GainCurve {
	return gain.DefaultCurve(minGainDB)
}

// Packet transport.
type (
	// Packet is one refcounted run of interleaved float32 frames with
	// a fractional-frame timestamp and a completion callback.
	Packet = packetqueue.Packet

	// Queue is a per-link pending packet queue.
	Queue = packetqueue.Queue
)

// NewPacket wraps a payload; see packetqueue.NewPacket.
func NewPacket(start Frac, frames int64, payload []float32, done func()) *Packet {
	return packetqueue.NewPacket(start, frames, payload, done)
}

// NewQueue returns an empty pending queue.
func NewQueue() *Queue {
	return packetqueue.NewQueue()
}

// Output scheduling.
type (
	// Link ties a packet queue and a selected resampler to an output.
	Link = output.Link

	// StandardOutput runs one device's periodic mix/trim loop.
	StandardOutput = output.StandardOutput

	// Device is the driver-facing mix job interface.
	Device = output.Device

	// MixJob is one device buffer to fill.
	MixJob = output.MixJob

	// OutputConfig parameterizes a StandardOutput.
	OutputConfig = output.Config
)

// NewLink pairs a queue with a mixer under a destination-frame to
// fractional-source-frame timeline.
func NewLink(q *Queue, m Mixer, destToFracSource TimelineFunction) *Link {
	return output.NewLink(q, m, destToFracSource)
}

// NewStandardOutput builds the mix loop for a device.
func NewStandardOutput(device Device, cfg OutputConfig) (*StandardOutput, error) {
	return output.NewStandardOutput(device, cfg)
}

// Timelines.
type (
	// TimelineRate is an exact rational rate between two timelines.
	TimelineRate = timeline.Rate

	// TimelineFunction is an affine mapping between two timelines.
	TimelineFunction = timeline.Function
)

// NewTimelineRate reduces subjectDelta/referenceDelta to lowest terms.
func NewTimelineRate(subjectDelta, referenceDelta uint64) TimelineRate {
	return timeline.NewRate(subjectDelta, referenceDelta)
}

// NewTimelineFunction builds the affine mapping anchored at the given
// correspondence point.
func NewTimelineFunction(subjectTime, referenceTime int64, rate TimelineRate) TimelineFunction {
	return timeline.NewFunction(subjectTime, referenceTime, rate)
}

// UnityFrameTimeline maps destination frame n to fractional source
// frame n, the natural timeline for rate-matched streams starting at
// zero.
func UnityFrameTimeline() TimelineFunction {
	return timeline.NewFunction(0, 0, timeline.NewRate(uint64(fixedpoint.One), 1))
}

// FrameRateTimeline maps destination frames at destRate to fractional
// source frames at srcRate, both streams anchored at zero.
func FrameRateTimeline(srcRate, destRate int) TimelineFunction {
	return timeline.NewFunction(0, 0,
		timeline.NewRate(uint64(srcRate)*uint64(fixedpoint.One), uint64(destRate)))
}
