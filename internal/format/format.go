// Package format describes audio stream formats and converts between
// wire sample formats and the float32 samples the mix pipeline works
// in. Conversion scale factors are part of the core's bit-exactness
// contract: converting to float and back must reproduce the original
// samples for in-range values.
package format

import (
	"errors"
	"fmt"
)

// SampleFormat enumerates the wire sample encodings the core accepts
// and produces.
type SampleFormat int

const (
	// Unsigned8 is 8-bit unsigned PCM biased at 0x80.
	Unsigned8 SampleFormat = iota

	// Signed16 is 16-bit signed little-endian PCM.
	Signed16

	// Signed24In32 is 24-bit signed PCM right-justified in a 32-bit
	// little-endian word.
	Signed24In32

	// Float32 is 32-bit IEEE-754 little-endian samples in [-1, 1].
	Float32
)

// String implements fmt.Stringer.
func (sf SampleFormat) String() string {
	switch sf {
	case Unsigned8:
		return "u8"
	case Signed16:
		return "i16"
	case Signed24In32:
		return "i24-in-32"
	case Float32:
		return "f32"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(sf))
	}
}

// BytesPerSample returns the wire size of one sample.
func (sf SampleFormat) BytesPerSample() int {
	switch sf {
	case Unsigned8:
		return 1
	case Signed16:
		return 2
	case Signed24In32, Float32:
		return 4
	default:
		return 0
	}
}

// Stream format limits.
const (
	MinChannels = 1
	MaxChannels = 8

	MinFramesPerSecond = 1000
	MaxFramesPerSecond = 192000
)

// ErrInvalidFormat indicates invalid stream format parameters.
var ErrInvalidFormat = errors.New("invalid stream format")

// Format describes one audio stream: sample encoding, channel count,
// and frame rate. Immutable value type.
type Format struct {
	SampleFormat    SampleFormat
	Channels        int
	FramesPerSecond int
}

// Validate checks the format against the supported ranges.
func (f Format) Validate() error {
	if f.SampleFormat.BytesPerSample() == 0 {
		return fmt.Errorf("%w: unknown sample format %d", ErrInvalidFormat, int(f.SampleFormat))
	}
	if f.Channels < MinChannels || f.Channels > MaxChannels {
		return fmt.Errorf("%w: channels %d out of range [%d, %d]",
			ErrInvalidFormat, f.Channels, MinChannels, MaxChannels)
	}
	if f.FramesPerSecond < MinFramesPerSecond || f.FramesPerSecond > MaxFramesPerSecond {
		return fmt.Errorf("%w: frame rate %d out of range [%d, %d]",
			ErrInvalidFormat, f.FramesPerSecond, MinFramesPerSecond, MaxFramesPerSecond)
	}
	return nil
}

// BytesPerFrame returns the wire size of one frame.
func (f Format) BytesPerFrame() int {
	return f.SampleFormat.BytesPerSample() * f.Channels
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return fmt.Sprintf("%s/%dch/%dHz", f.SampleFormat, f.Channels, f.FramesPerSecond)
}
