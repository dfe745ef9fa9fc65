package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Normalization factors: one over the largest negative magnitude of
// each integer encoding, so the full negative range maps to exactly
// -1.0 and conversion back is lossless for in-range values.
const (
	scaleU8  = 1.0 / 128.0
	scaleI16 = 1.0 / 32768.0
	scaleI24 = 1.0 / 8388608.0

	biasU8 = 0x80
)

// DecodeToFloat32 converts interleaved wire samples to float32.
// dst must hold exactly len(src)/BytesPerSample samples.
func DecodeToFloat32(dst []float32, src []byte, sf SampleFormat) error {
	bps := sf.BytesPerSample()
	if bps == 0 {
		return fmt.Errorf("%w: unknown sample format %d", ErrInvalidFormat, int(sf))
	}
	if len(src)%bps != 0 || len(dst) != len(src)/bps {
		return fmt.Errorf("%w: payload size %d does not match %d %s samples",
			ErrInvalidFormat, len(src), len(dst), sf)
	}

	switch sf {
	case Unsigned8:
		for i, s := range src {
			dst[i] = float32(int(s)-biasU8) * scaleU8
		}
	case Signed16:
		for i := range dst {
			s := int16(binary.LittleEndian.Uint16(src[2*i:]))
			dst[i] = float32(s) * scaleI16
		}
	case Signed24In32:
		for i := range dst {
			s := int32(binary.LittleEndian.Uint32(src[4*i:]))
			// Right-justified 24 bits; drop the padding byte by
			// shifting through the sign.
			dst[i] = float32(s<<8>>8) * scaleI24
		}
	case Float32:
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	}
	return nil
}

// OutputProducer converts a float32 accumulator into one wire format,
// clipping out-of-range samples, and fills silence for muted cycles.
type OutputProducer struct {
	sampleFormat SampleFormat
}

// NewOutputProducer returns a producer for the given wire format.
func NewOutputProducer(sf SampleFormat) (*OutputProducer, error) {
	if sf.BytesPerSample() == 0 {
		return nil, fmt.Errorf("%w: unknown sample format %d", ErrInvalidFormat, int(sf))
	}
	return &OutputProducer{sampleFormat: sf}, nil
}

// Produce converts len(acc) accumulator samples into dst, clipping to
// the format's representable range. dst must hold exactly
// len(acc)*BytesPerSample bytes.
func (p *OutputProducer) Produce(dst []byte, acc []float32) error {
	bps := p.sampleFormat.BytesPerSample()
	if len(dst) != len(acc)*bps {
		return fmt.Errorf("%w: output size %d does not match %d samples",
			ErrInvalidFormat, len(dst), len(acc))
	}

	switch p.sampleFormat {
	case Unsigned8:
		for i, v := range acc {
			dst[i] = byte(clampInt(v, 128) + biasU8)
		}
	case Signed16:
		for i, v := range acc {
			binary.LittleEndian.PutUint16(dst[2*i:], uint16(int16(clampInt(v, 32768))))
		}
	case Signed24In32:
		for i, v := range acc {
			binary.LittleEndian.PutUint32(dst[4*i:], uint32(clampInt(v, 8388608)))
		}
	case Float32:
		for i, v := range acc {
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}
			binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
		}
	}
	return nil
}

// FillSilence writes the format's silent value over frames*channels
// samples of dst.
func (p *OutputProducer) FillSilence(dst []byte) {
	if p.sampleFormat == Unsigned8 {
		for i := range dst {
			dst[i] = biasU8
		}
		return
	}
	for i := range dst {
		dst[i] = 0
	}
}

// clampInt scales a normalized sample by fullScale and clips to the
// signed range [-fullScale, fullScale-1].
func clampInt(v float32, fullScale int32) int32 {
	scaled := int64(math.Round(float64(v) * float64(fullScale)))
	if scaled > int64(fullScale)-1 {
		return fullScale - 1
	}
	if scaled < -int64(fullScale) {
		return -fullScale
	}
	return int32(scaled)
}
