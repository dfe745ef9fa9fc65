package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFracConstants verifies the bit layout contract.
func TestFracConstants(t *testing.T) {
	assert.Equal(t, Frac(8192), One)
	assert.Equal(t, Frac(4096), Half)
	assert.Equal(t, Frac(8191), Mask)
}

// TestFrac_FloorCeilingFraction covers positive, negative, and
// frame-aligned positions.
func TestFrac_FloorCeilingFraction(t *testing.T) {
	tests := []struct {
		name         string
		f            Frac
		wantFloor    int64
		wantCeiling  int64
		wantFraction Frac
	}{
		{"zero", 0, 0, 0, 0},
		{"aligned", FromFrames(3), 3, 3, 0},
		{"midway", FromFrames(3) + Half, 3, 4, Half},
		{"negative_aligned", FromFrames(-2), -2, -2, 0},
		{"negative_midway", FromFrames(-2) + Half, -2, -1, Half},
		{"just_below_zero", -1, -1, 0, Mask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFloor, tt.f.Floor())
			assert.Equal(t, tt.wantCeiling, tt.f.Ceiling())
			assert.Equal(t, tt.wantFraction, tt.f.Fraction())
		})
	}
}

// TestAddChecked verifies overflow is reported, not wrapped.
func TestAddChecked(t *testing.T) {
	sum, ok := AddChecked(FromFrames(5), Half)
	assert.True(t, ok)
	assert.Equal(t, FromFrames(5)+Half, sum)

	_, ok = AddChecked(Frac(math.MaxInt64), One)
	assert.False(t, ok)

	_, ok = AddChecked(Frac(math.MinInt64), -One)
	assert.False(t, ok)
}

// TestMulFrames verifies step multiplication with overflow reporting.
func TestMulFrames(t *testing.T) {
	product, ok := MulFrames(100, One)
	assert.True(t, ok)
	assert.Equal(t, FromFrames(100), product)

	_, ok = MulFrames(math.MaxInt64/2, One)
	assert.False(t, ok)

	product, ok = MulFrames(0, One)
	assert.True(t, ok)
	assert.Zero(t, product)
}
