package gain

import (
	"errors"
	"fmt"
)

// Curve construction failures. Each invalid input class gets its own
// sentinel so callers can surface precise validation errors.
var (
	// ErrLessThanTwoMappings rejects curves with fewer than two points.
	ErrLessThanTwoMappings = errors.New("gain curve requires at least two mappings")

	// ErrDomainNotCovered rejects curves whose volume domain does not
	// span exactly [0, 1].
	ErrDomainNotCovered = errors.New("gain curve domain must cover [0, 1]")

	// ErrNonIncreasingDomain rejects volume values that do not strictly
	// increase.
	ErrNonIncreasingDomain = errors.New("gain curve domain must be strictly increasing")

	// ErrNonIncreasingRange rejects decibel values that do not strictly
	// increase.
	ErrNonIncreasingRange = errors.New("gain curve range must be strictly increasing")

	// ErrRangeNotCovered rejects curves whose final mapping is not
	// exactly 0 dB.
	ErrRangeNotCovered = errors.New("gain curve range must end at 0 dB")
)

// VolumeMapping is one point of a volume-to-decibel curve.
type VolumeMapping struct {
	// Volume is the user-facing volume in [0, 1].
	Volume float64

	// GainDB is the decibel gain applied at that volume.
	GainDB float64
}

// Curve is a piecewise-linear volume-to-decibel map. Interpolation is
// linear in the decibel domain by volume fraction. Immutable after
// construction.
type Curve struct {
	mappings []VolumeMapping
}

// CurveFromMappings validates and builds a curve. The mappings must:
// contain at least two points; start at volume 0 and end at volume 1;
// be strictly increasing in both volume and decibels; and end at
// exactly 0 dB.
func CurveFromMappings(mappings []VolumeMapping) (*Curve, error) {
	if len(mappings) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrLessThanTwoMappings, len(mappings))
	}

	if mappings[0].Volume != 0.0 || mappings[len(mappings)-1].Volume != 1.0 {
		return nil, ErrDomainNotCovered
	}

	for i := 1; i < len(mappings); i++ {
		if mappings[i].Volume <= mappings[i-1].Volume {
			return nil, ErrNonIncreasingDomain
		}
		if mappings[i].GainDB <= mappings[i-1].GainDB {
			return nil, ErrNonIncreasingRange
		}
	}

	if mappings[len(mappings)-1].GainDB != UnityGainDB {
		return nil, ErrRangeNotCovered
	}

	curve := &Curve{mappings: make([]VolumeMapping, len(mappings))}
	copy(curve.mappings, mappings)
	return curve, nil
}

// DefaultCurve returns the stock two-point curve from minGainDB at
// volume 0 to 0 dB at volume 1. minGainDB must be negative.
func DefaultCurve(minGainDB float64) *Curve {
	curve, err := CurveFromMappings([]VolumeMapping{
		{Volume: 0.0, GainDB: minGainDB},
		{Volume: 1.0, GainDB: UnityGainDB},
	})
	if err != nil {
		// Only reachable with a non-negative minGainDB.
		panic(err)
	}
	return curve
}

// VolumeToDB maps a volume to decibels, clamping volume to [0, 1] and
// interpolating linearly in dB between the bracketing mappings.
func (c *Curve) VolumeToDB(volume float64) float64 {
	if volume <= 0.0 {
		return c.mappings[0].GainDB
	}
	if volume >= 1.0 {
		return c.mappings[len(c.mappings)-1].GainDB
	}

	// Locate the bracketing pair; domains are strictly increasing.
	hi := 1
	for c.mappings[hi].Volume < volume {
		hi++
	}
	lo := hi - 1

	a, b := c.mappings[lo], c.mappings[hi]
	fraction := (volume - a.Volume) / (b.Volume - a.Volume)
	return a.GainDB + fraction*(b.GainDB-a.GainDB)
}
