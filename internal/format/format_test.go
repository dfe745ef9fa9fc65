package format

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 48000

func TestFormat_Validate(t *testing.T) {
	tests := []struct {
		name string
		f    Format
		ok   bool
	}{
		{"stereo float", Format{Float32, 2, testRate}, true},
		{"mono u8 at floor rate", Format{Unsigned8, 1, 1000}, true},
		{"eight channel i24 at ceiling rate", Format{Signed24In32, 8, 192000}, true},
		{"zero channels", Format{Signed16, 0, testRate}, false},
		{"too many channels", Format{Signed16, 9, testRate}, false},
		{"rate below floor", Format{Signed16, 2, 999}, false},
		{"rate above ceiling", Format{Signed16, 2, 192001}, false},
		{"unknown sample format", Format{SampleFormat(99), 2, testRate}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidFormat)
			}
		})
	}
}

func TestFormat_BytesPerFrame(t *testing.T) {
	assert.Equal(t, 2, Format{Unsigned8, 2, testRate}.BytesPerFrame())
	assert.Equal(t, 4, Format{Signed16, 2, testRate}.BytesPerFrame())
	assert.Equal(t, 16, Format{Signed24In32, 4, testRate}.BytesPerFrame())
	assert.Equal(t, 8, Format{Float32, 2, testRate}.BytesPerFrame())
}

func TestDecode_Unsigned8(t *testing.T) {
	dst := make([]float32, 4)
	require.NoError(t, DecodeToFloat32(dst, []byte{0x80, 0x00, 0xFF, 0xC0}, Unsigned8))
	assert.InDeltaSlice(t, []float32{0, -1, 127.0 / 128.0, -0.5}, dst, 1e-7)
}

func TestDecode_Signed16(t *testing.T) {
	src := make([]byte, 8)
	binary.LittleEndian.PutUint16(src[0:], 0)
	binary.LittleEndian.PutUint16(src[2:], 0x8000) // -32768
	binary.LittleEndian.PutUint16(src[4:], 0x7FFF) // 32767
	binary.LittleEndian.PutUint16(src[6:], 0xC000) // -16384

	dst := make([]float32, 4)
	require.NoError(t, DecodeToFloat32(dst, src, Signed16))
	assert.Equal(t, []float32{0, -1, 32767.0 / 32768.0, -0.5}, dst)
}

func TestDecode_Signed24SignExtension(t *testing.T) {
	src := make([]byte, 8)
	binary.LittleEndian.PutUint32(src[0:], 0x00800000) // -2^23 in 24 bits
	binary.LittleEndian.PutUint32(src[4:], 0x007FFFFF) // 2^23-1

	dst := make([]float32, 2)
	require.NoError(t, DecodeToFloat32(dst, src, Signed24In32))
	assert.Equal(t, float32(-1), dst[0])
	assert.Equal(t, float32(8388607.0/8388608.0), dst[1])
}

func TestDecode_SizeMismatch(t *testing.T) {
	dst := make([]float32, 2)
	assert.ErrorIs(t, DecodeToFloat32(dst, []byte{1, 2, 3}, Signed16), ErrInvalidFormat)
	assert.ErrorIs(t, DecodeToFloat32(dst, make([]byte, 8), Signed16), ErrInvalidFormat)
}

// In-range samples must survive a decode/produce round trip untouched
// in every integer format.
func TestRoundTrip_AllFormats(t *testing.T) {
	for _, sf := range []SampleFormat{Unsigned8, Signed16, Signed24In32, Float32} {
		t.Run(sf.String(), func(t *testing.T) {
			bps := sf.BytesPerSample()
			wire := make([]byte, 6*bps)
			switch sf {
			case Unsigned8:
				copy(wire, []byte{0x00, 0x40, 0x80, 0xC0, 0xFF, 0x81})
			case Signed16:
				for i, s := range []int16{-32768, -16384, 0, 16384, 32767, 1} {
					binary.LittleEndian.PutUint16(wire[2*i:], uint16(s))
				}
			case Signed24In32:
				for i, s := range []int32{-8388608, -4194304, 0, 4194304, 8388607, 1} {
					binary.LittleEndian.PutUint32(wire[4*i:], uint32(s)&0x00FFFFFF)
				}
			case Float32:
				for i, v := range []float32{-1, -0.5, 0, 0.5, 0.999, 1e-7} {
					binary.LittleEndian.PutUint32(wire[4*i:], math.Float32bits(v))
				}
			}

			dst := make([]float32, 6)
			require.NoError(t, DecodeToFloat32(dst, wire, sf))

			p, err := NewOutputProducer(sf)
			require.NoError(t, err)
			out := make([]byte, len(wire))
			require.NoError(t, p.Produce(out, dst))

			if sf == Signed24In32 {
				// The padding byte is not part of the sample.
				for i := 0; i < 6; i++ {
					got := binary.LittleEndian.Uint32(out[4*i:]) & 0x00FFFFFF
					want := binary.LittleEndian.Uint32(wire[4*i:]) & 0x00FFFFFF
					assert.Equal(t, want, got, "sample %d", i)
				}
				return
			}
			assert.Equal(t, wire, out)
		})
	}
}

func TestProduce_ClipsOutOfRange(t *testing.T) {
	acc := []float32{2.0, -2.0, 1.0, -1.0}

	p, err := NewOutputProducer(Signed16)
	require.NoError(t, err)
	out := make([]byte, 8)
	require.NoError(t, p.Produce(out, acc))

	assert.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(out[0:])))
	assert.Equal(t, int16(-32768), int16(binary.LittleEndian.Uint16(out[2:])))
	assert.Equal(t, int16(32767), int16(binary.LittleEndian.Uint16(out[4:])))
	assert.Equal(t, int16(-32768), int16(binary.LittleEndian.Uint16(out[6:])))

	pf, err := NewOutputProducer(Float32)
	require.NoError(t, err)
	outF := make([]byte, 16)
	require.NoError(t, pf.Produce(outF, acc))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(outF[0:])))
	assert.Equal(t, float32(-1), math.Float32frombits(binary.LittleEndian.Uint32(outF[4:])))
}

func TestFillSilence(t *testing.T) {
	p8, err := NewOutputProducer(Unsigned8)
	require.NoError(t, err)
	buf := []byte{1, 2, 3, 4}
	p8.FillSilence(buf)
	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x80}, buf)

	p16, err := NewOutputProducer(Signed16)
	require.NoError(t, err)
	p16.FillSilence(buf)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf)
}
