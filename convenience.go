package mixer

import (
	"fmt"
	"math"

	"github.com/go-audio/audio"

	"github.com/tphakala/go-audio-mixer/internal/format"
)

// PayloadFromIntBuffer converts a go-audio integer buffer into the
// normalized interleaved float32 payload packets carry, scaling by the
// buffer's source bit depth so full negative scale maps to -1.0.
func PayloadFromIntBuffer(buf *audio.IntBuffer) ([]float32, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrInvalidFormat)
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidFormat, depth)
	}

	scale := 1.0 / float64(int64(1)<<(depth-1))
	payload := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		payload[i] = float32(float64(s) * scale)
	}
	return payload, nil
}

// IntBufferFromPayload converts mixed float32 samples back into a
// go-audio integer buffer at the given bit depth, clipping
// out-of-range samples.
func IntBufferFromPayload(payload []float32, f Format, bitDepth int) (*audio.IntBuffer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidFormat, bitDepth)
	}
	if len(payload)%f.Channels != 0 {
		return nil, fmt.Errorf("%w: payload length %d not a whole frame count",
			ErrInvalidFormat, len(payload))
	}

	fullScale := int64(1) << (bitDepth - 1)
	data := make([]int, len(payload))
	for i, v := range payload {
		s := int64(math.Round(float64(v) * float64(fullScale)))
		if s > fullScale-1 {
			s = fullScale - 1
		} else if s < -fullScale {
			s = -fullScale
		}
		data[i] = int(s)
	}

	return &audio.IntBuffer{
		Data:           data,
		SourceBitDepth: bitDepth,
		Format: &audio.Format{
			NumChannels: f.Channels,
			SampleRate:  f.FramesPerSecond,
		},
	}, nil
}

// PacketFromIntBuffer wraps a go-audio buffer as a packet starting at
// the given fractional-frame timestamp.
func PacketFromIntBuffer(buf *audio.IntBuffer, start Frac, done func()) (*Packet, error) {
	payload, err := PayloadFromIntBuffer(buf)
	if err != nil {
		return nil, err
	}
	frames := int64(len(payload) / buf.Format.NumChannels)
	return NewPacket(start, frames, payload, done), nil
}

// DecodePayload converts raw wire bytes in any supported sample format
// to the float32 payload representation.
func DecodePayload(src []byte, sf SampleFormat) ([]float32, error) {
	bps := sf.BytesPerSample()
	if bps == 0 {
		return nil, fmt.Errorf("%w: unknown sample format %d", ErrInvalidFormat, int(sf))
	}
	dst := make([]float32, len(src)/bps)
	if err := format.DecodeToFloat32(dst, src, sf); err != nil {
		return nil, err
	}
	return dst, nil
}
