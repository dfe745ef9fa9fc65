package mixer

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-mixer/internal/testutil"
)

func TestSelect_PublicSurface(t *testing.T) {
	m, err := Select(StereoFloat(RateCD), StereoFloat(RateDAT), ResamplerDefault)
	require.NoError(t, err)
	defer m.Close()

	assert.Greater(t, int64(m.PosFilterWidth()), int64(0))
	assert.NotNil(t, m.Bookkeeping())

	_, err = Select(StereoFloat(RateCD), StereoFloat(RateDAT), ResamplerPoint)
	assert.ErrorIs(t, err, ErrUnsupportedResampler)

	bad := Format{SampleFormat: Float32, Channels: 0, FramesPerSecond: RateDAT}
	_, err = Select(bad, StereoFloat(RateDAT), ResamplerDefault)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestMix_UnityPassthrough(t *testing.T) {
	m, err := Select(MonoFloat(RateDAT), MonoFloat(RateDAT), ResamplerDefault)
	require.NoError(t, err)
	defer m.Close()

	src := testutil.SineFrames(256, 1, 1000, RateDAT, 0.8)
	dest := make([]float32, 256)

	destOff, srcOff, consumed := m.Mix(dest, 0, src, 0, false)
	require.True(t, consumed)
	require.Equal(t, 256, destOff)
	assert.Equal(t, FramesToFrac(256), srcOff)
	assert.InDeltaSlice(t, src, dest, testutil.PassthroughTolerance)
	testutil.AssertNoNaNOrInf(t, dest)
}

// Resampling a constant 44.1k stereo stream to 48k in two 512-frame
// pushes must show no seam: every produced sample near the call
// boundary stays within a thousandth of the constant.
func TestMix_ConstantSeamAcrossCalls(t *testing.T) {
	const (
		srcFrames = 512
		value     = 0.25
	)

	m, err := Select(StereoFloat(RateCD), StereoFloat(RateDAT), ResamplerSinc)
	require.NoError(t, err)
	defer m.Close()

	src := testutil.ConstantFrames(srcFrames, 2, value)
	// 1024 source frames at 44.1k produce just over 1100 frames at
	// 48k; leave headroom so the destination never fills first.
	destFrames := 3 * srcFrames
	dest := make([]float32, 2*destFrames)

	destOff, srcOff, consumed := m.Mix(dest, 0, src, 0, false)
	require.True(t, consumed)
	firstCallEnd := destOff

	srcOff -= FramesToFrac(srcFrames)
	destOff, _, consumed = m.Mix(dest, destOff, src, srcOff, false)
	require.True(t, consumed)

	// The filter settles within its width of the stream head; after
	// that every sample, including the two frames on each side of the
	// call boundary, holds the constant.
	settle := 2 * int(m.PosFilterWidth().Ceiling())
	steady := dest[2*settle : 2*destOff]
	testutil.AssertAllInDelta(t, value, steady, testutil.SeamTolerance)

	boundary := dest[2*(firstCallEnd-2) : 2*(firstCallEnd+2)]
	testutil.AssertAllInDelta(t, value, boundary, testutil.SeamTolerance)
}

func TestGainCurve_PublicSurface(t *testing.T) {
	curve, err := NewGainCurve([]VolumeMapping{
		{Volume: 0, GainDB: MinGainDB},
		{Volume: 0.5, GainDB: -20},
		{Volume: 1, GainDB: UnityGainDB},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(MinGainDB), curve.VolumeToDB(0))
	assert.Equal(t, float64(UnityGainDB), curve.VolumeToDB(1))
	assert.InDelta(t, -20, curve.VolumeToDB(0.5), testutil.DBTolerance)

	_, err = NewGainCurve([]VolumeMapping{{Volume: 0, GainDB: -10}})
	assert.Error(t, err)

	def := DefaultGainCurve(MinGainDB)
	assert.Equal(t, float64(MinGainDB), def.VolumeToDB(0))
}

func TestPayloadBridge_RoundTrip(t *testing.T) {
	in := &audio.IntBuffer{
		Data:           []int{-32768, -16384, 0, 16384, 32767, 1},
		SourceBitDepth: 16,
		Format:         &audio.Format{NumChannels: 2, SampleRate: RateDAT},
	}

	payload, err := PayloadFromIntBuffer(in)
	require.NoError(t, err)
	assert.Equal(t, float32(-1), payload[0])
	assert.Equal(t, float32(-0.5), payload[1])
	assert.Equal(t, float32(0), payload[2])

	out, err := IntBufferFromPayload(payload, StereoFloat(RateDAT), 16)
	require.NoError(t, err)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, 2, out.Format.NumChannels)
}

func TestPacketFromIntBuffer(t *testing.T) {
	buf := &audio.IntBuffer{
		Data:           make([]int, 8),
		SourceBitDepth: 16,
		Format:         &audio.Format{NumChannels: 2, SampleRate: RateDAT},
	}

	p, err := PacketFromIntBuffer(buf, FramesToFrac(100), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.Frames())
	assert.Equal(t, FramesToFrac(100), p.Start())
	assert.Equal(t, FramesToFrac(104), p.End())
}

func TestDecodePayload(t *testing.T) {
	payload, err := DecodePayload([]byte{0x00, 0x80, 0x00, 0x00, 0x00, 0x40}, Signed16)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0, 0.5}, payload)

	_, err = DecodePayload([]byte{1, 2, 3}, Signed16)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
