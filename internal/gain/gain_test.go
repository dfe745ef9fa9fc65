package gain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

const (
	scaleTolerance = 1e-6
	dbTolerance    = 1e-9
)

// framesPerNano48k is 48000 frames per second as a frames/nanosecond
// rate, the form the mix loop feeds to GetScaleArray.
var framesPerNano48k = timeline.NewRate(48000, 1_000_000_000)

// TestDBToScale verifies the dB/scale conversions round trip.
func TestDBToScale(t *testing.T) {
	tests := []struct {
		name  string
		db    float64
		scale Scale
	}{
		{"unity", 0.0, 1.0},
		{"minus6", -6.0205999, 0.5},
		{"minus20", -20.0, 0.1},
		{"plus6", 6.0205999, 2.0},
		{"floor", MinGainDB, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.scale, DBToScale(tt.db), scaleTolerance)
			if tt.scale > 0 {
				assert.InDelta(t, tt.db, ScaleToDB(tt.scale), 1e-4)
			}
		})
	}
}

// TestGain_FastPathPredicates verifies the branch-selection predicates
// the samplers consult once per Mix call.
func TestGain_FastPathPredicates(t *testing.T) {
	g := NewGain()
	assert.True(t, g.IsUnity())
	assert.False(t, g.IsSilent())
	assert.False(t, g.IsRamping())
	assert.Equal(t, UnityScale, g.GetGainScale())

	g.SetSourceGain(-6.0)
	assert.False(t, g.IsUnity())
	assert.False(t, g.IsSilent())
	assert.InDelta(t, 0.501187, g.GetGainScale(), scaleTolerance)

	g.SetSourceMute(true)
	assert.True(t, g.IsSilent())
	assert.Equal(t, MuteScale, g.GetGainScale())
	g.SetSourceMute(false)

	g.SetDestMute(true)
	assert.True(t, g.IsSilent())
	g.SetDestMute(false)

	g.SetSourceGain(MinGainDB)
	assert.True(t, g.IsSilent())
}

// TestGain_CombinesStages verifies source and destination stages sum in
// decibels.
func TestGain_CombinesStages(t *testing.T) {
	g := NewGain()
	g.SetSourceGain(-10.0)
	g.SetDestGain(-10.0)
	assert.InDelta(t, DBToScale(-20.0), g.GetGainScale(), scaleTolerance)

	// Clamping at both ends.
	g.SetSourceGain(-1000.0)
	assert.Equal(t, MinGainDB, g.SourceGainDB())
	g.SetSourceGain(1000.0)
	assert.Equal(t, MaxGainDB, g.SourceGainDB())
}

// TestGain_Ramp verifies a ramp produces a monotone per-frame scale
// array that lands on the target, and retires after Advance.
func TestGain_Ramp(t *testing.T) {
	g := NewGain()
	g.SetSourceGainWithRamp(MinGainDB, time.Millisecond)
	require.True(t, g.IsRamping())

	// 1 ms at 48 kHz is 48 frames; ask for more to see the tail clamp.
	scales := make([]Scale, 96)
	n := g.GetScaleArray(scales, framesPerNano48k)
	require.Equal(t, 96, n)

	assert.InDelta(t, UnityScale, scales[0], scaleTolerance, "ramp starts at prior scale")
	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, scales[i], scales[i-1], "ramp down must be monotone")
	}
	assert.Equal(t, MuteScale, scales[n-1], "ramp must land on target")

	g.Advance(96)
	assert.False(t, g.IsRamping(), "completed ramp must retire")
	assert.Equal(t, MuteScale, g.GetGainScale())
}

// TestGain_ScaleArrayCap verifies the array is truncated to
// MaxRampFrames.
func TestGain_ScaleArrayCap(t *testing.T) {
	g := NewGain()
	scales := make([]Scale, MaxRampFrames+100)
	n := g.GetScaleArray(scales, framesPerNano48k)
	assert.Equal(t, MaxRampFrames, n)
}

// TestCurveFromMappings_Validation covers every documented failure.
func TestCurveFromMappings_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mappings []VolumeMapping
		wantErr  error
	}{
		{
			"too_few",
			[]VolumeMapping{{0, -100}},
			ErrLessThanTwoMappings,
		},
		{
			"domain_not_covered_low",
			[]VolumeMapping{{0.1, -100}, {1, 0}},
			ErrDomainNotCovered,
		},
		{
			"domain_not_covered_high",
			[]VolumeMapping{{0, -100}, {0.9, 0}},
			ErrDomainNotCovered,
		},
		{
			"non_increasing_domain",
			[]VolumeMapping{{0, -100}, {0.5, -50}, {0.5, -20}, {1, 0}},
			ErrNonIncreasingDomain,
		},
		{
			"non_increasing_range",
			[]VolumeMapping{{0, -100}, {0.5, -100}, {1, 0}},
			ErrNonIncreasingRange,
		},
		{
			"range_not_covered",
			[]VolumeMapping{{0, -100}, {1, -1}},
			ErrRangeNotCovered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CurveFromMappings(tt.mappings)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestCurve_VolumeToDB verifies endpoints, clamping, interpolation, and
// monotonicity.
func TestCurve_VolumeToDB(t *testing.T) {
	curve, err := CurveFromMappings([]VolumeMapping{
		{Volume: 0.0, GainDB: -100.0},
		{Volume: 0.5, GainDB: -20.0},
		{Volume: 1.0, GainDB: 0.0},
	})
	require.NoError(t, err)

	assert.InDelta(t, -100.0, curve.VolumeToDB(0.0), dbTolerance)
	assert.InDelta(t, 0.0, curve.VolumeToDB(1.0), dbTolerance)

	// Out-of-range volumes clamp.
	assert.InDelta(t, -100.0, curve.VolumeToDB(-5.0), dbTolerance)
	assert.InDelta(t, 0.0, curve.VolumeToDB(2.0), dbTolerance)

	// Linear interpolation in dB by volume fraction.
	assert.InDelta(t, -60.0, curve.VolumeToDB(0.25), dbTolerance)
	assert.InDelta(t, -10.0, curve.VolumeToDB(0.75), dbTolerance)

	// Monotone non-decreasing across the domain.
	prev := curve.VolumeToDB(0)
	for v := 0.01; v <= 1.0; v += 0.01 {
		db := curve.VolumeToDB(v)
		assert.GreaterOrEqual(t, db, prev)
		prev = db
	}
}

// TestDefaultCurve verifies the stock curve shape.
func TestDefaultCurve(t *testing.T) {
	curve := DefaultCurve(MinGainDB)
	assert.InDelta(t, MinGainDB, curve.VolumeToDB(0), dbTolerance)
	assert.InDelta(t, 0.0, curve.VolumeToDB(1), dbTolerance)
	assert.InDelta(t, MinGainDB/2, curve.VolumeToDB(0.5), dbTolerance)
}
