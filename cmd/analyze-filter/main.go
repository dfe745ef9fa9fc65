// Command analyze-filter prints the magnitude response of the
// windowed-sinc resampling filter for a source/destination rate pair,
// for verifying passband flatness and stopband attenuation after
// kernel changes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tphakala/go-audio-mixer/internal/filter"
)

const (
	defaultSrcRate  = 44100
	defaultDestRate = 48000
	defaultPoints   = 64
)

func main() {
	srcRate := flag.Int("src", defaultSrcRate, "source frame rate")
	destRate := flag.Int("dest", defaultDestRate, "destination frame rate")
	points := flag.Int("points", defaultPoints, "number of response points to print")
	taps := flag.Int("taps", filter.DefaultSincSideTaps, "sinc side taps")
	flag.Parse()

	if *srcRate <= 0 || *destRate <= 0 {
		fmt.Fprintln(os.Stderr, "rates must be positive")
		os.Exit(1)
	}

	f := filter.NewSincFilter(uint32(*srcRate), uint32(*destRate), *taps)
	defer f.Release()

	resp := f.FrequencyResponse(*points)

	fmt.Printf("windowed-sinc response, %d -> %d Hz, %d side taps\n",
		*srcRate, *destRate, *taps)
	fmt.Printf("%-12s %-12s %s\n", "normalized", "frequency", "magnitude")
	for i, nf := range resp.Frequencies {
		fmt.Printf("%-12.4f %-12.0f %8.2f dB\n",
			nf, nf*float64(*srcRate), resp.MagnitudeDB[i])
	}
}
