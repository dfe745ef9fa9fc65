// Package testutil provides reusable helpers for mixing-core tests:
// interleaved test signal generators and float32 assertion utilities.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for common test scenarios.
const (
	// SeamTolerance bounds the discontinuity allowed around a packet
	// boundary for band-limited resamplers.
	SeamTolerance = 1e-3

	// PassthroughTolerance bounds the error of unity-rate passthrough.
	PassthroughTolerance = 1e-6

	// DBTolerance compares decibel quantities.
	DBTolerance = 0.01
)

// ConstantFrames returns frames interleaved frames of channels
// channels, every sample set to value.
func ConstantFrames(frames, channels int, value float32) []float32 {
	s := make([]float32, frames*channels)
	for i := range s {
		s[i] = value
	}
	return s
}

// SineFrames returns an interleaved sine at the given frequency and
// frame rate, identical on every channel.
func SineFrames(frames, channels int, freq, frameRate, amplitude float64) []float32 {
	s := make([]float32, frames*channels)
	for f := 0; f < frames; f++ {
		v := float32(amplitude * math.Sin(2*math.Pi*freq*float64(f)/frameRate))
		for ch := 0; ch < channels; ch++ {
			s[f*channels+ch] = v
		}
	}
	return s
}

// AssertNoNaNOrInf verifies that no element is NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that every element is within [minVal, maxVal].
func AssertAllInRange(t *testing.T, s []float32, minVal, maxVal float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertAllInDelta verifies that every element is within delta of want.
func AssertAllInDelta(t *testing.T, want float32, s []float32, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if !assert.InDelta(t, want, v, delta, "s[%d]", i) {
			return false
		}
	}
	return true
}

// AssertMonotonicNonIncreasing verifies s never rises.
func AssertMonotonicNonIncreasing(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			return assert.Fail(t, "not monotonically non-increasing",
				"s[%d]=%f > s[%d]=%f", i, s[i], i-1, s[i-1])
		}
	}
	return true
}

// AssertRelativeError verifies the relative error between actual and
// expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}
