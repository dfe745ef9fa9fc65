package filter

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// Response holds the magnitude response of a filter at frame-aligned
// resolution. Diagnostic only; nothing in the mix path consumes it.
type Response struct {
	// Frequencies are normalized (0 to 0.5, where 0.5 is Nyquist).
	Frequencies []float64

	// MagnitudeDB is the response at each frequency in decibels.
	MagnitudeDB []float64
}

// FrequencyResponse evaluates the filter's response for frame-aligned
// inputs: the symmetric impulse response is reconstructed at
// whole-frame taps and transformed with a real FFT.
func (f *Filter) FrequencyResponse(numPoints int) Response {
	const defaultPoints = 512
	if numPoints <= 0 {
		numPoints = defaultPoints
	}

	sideTaps := int(f.table.sideWidth.Ceiling())

	// Full symmetric kernel at whole-frame offsets: [-side .. +side].
	impulse := make([]float64, 2*numPoints)
	for k := 0; k < sideTaps; k++ {
		offset := fixedpoint.FromFrames(int64(k))
		if offset >= f.table.sideWidth {
			break
		}
		c := f.table.Read(offset)
		impulse[k] = c
		if k > 0 {
			impulse[len(impulse)-k] = c
		}
	}

	fft := fourier.NewFFT(len(impulse))
	spectrum := fft.Coefficients(nil, impulse)

	resp := Response{
		Frequencies: make([]float64, numPoints),
		MagnitudeDB: make([]float64, numPoints),
	}
	for i := 0; i < numPoints; i++ {
		resp.Frequencies[i] = 0.5 * float64(i) / float64(numPoints)
		resp.MagnitudeDB[i] = magnitudeDB(cmplx.Abs(spectrum[i]))
	}
	return resp
}

// magnitudeDB converts linear magnitude to decibels with a floor that
// avoids log of zero.
func magnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10
		dbMultiplier = 20.0
	)
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
