// Command mixwav demonstrates the mixing core end to end: it pushes
// two generated tone streams at different frame rates through packet
// queues, runs the output mix loop into an in-memory device, and
// writes the mixed result as a 16-bit WAV file.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"
	"go.uber.org/zap"

	mixer "github.com/tphakala/go-audio-mixer"
)

const (
	outputChannels = 2
	outputBitDepth = 16

	// jobFrames is the device buffer granularity, 10ms at 48kHz.
	jobFrames = 480
)

func main() {
	outPath := flag.String("out", "mix.wav", "output WAV path")
	seconds := flag.Float64("seconds", 2.0, "duration to render")
	rate := flag.Int("rate", mixer.RateDAT, "output frame rate")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(*outPath, *seconds, *rate, logger); err != nil {
		logger.Fatal("mixwav failed", zap.Error(err))
	}
}

func run(outPath string, seconds float64, rate int, logger *zap.Logger) error {
	destFormat := mixer.Format{
		SampleFormat:    mixer.Signed16,
		Channels:        outputChannels,
		FramesPerSecond: rate,
	}
	totalFrames := int(seconds * float64(rate))

	dev := newMemDevice(totalFrames, destFormat.BytesPerFrame())
	out, err := mixer.NewStandardOutput(dev, mixer.OutputConfig{
		Format:       destFormat,
		MaxJobFrames: jobFrames,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	// Source A: 440Hz stereo at CD rate, resampled through the sinc
	// path. Source B: 550Hz stereo already at the output rate.
	if err := addToneLink(out, destFormat, mixer.RateCD, 440, 0.3, seconds); err != nil {
		return err
	}
	if err := addToneLink(out, destFormat, rate, 550, 0.2, seconds); err != nil {
		return err
	}

	logger.Info("mixing",
		zap.Int("frames", totalFrames),
		zap.Int("rate", rate),
		zap.Float64("seconds", seconds))

	now := time.Now()
	for !dev.done() {
		now = out.Process(now)
	}

	return writeWAV(outPath, dev.rendered, destFormat)
}

// addToneLink selects a resampler for the tone's rate, pushes the
// whole tone as one packet and attaches the link.
func addToneLink(out *mixer.StandardOutput, destFormat mixer.Format,
	srcRate int, freq, amplitude, seconds float64) error {

	srcFormat := mixer.StereoFloat(srcRate)
	m, err := mixer.Select(srcFormat, destFormat, mixer.ResamplerDefault)
	if err != nil {
		return err
	}

	frames := int(seconds*float64(srcRate)) + int(m.PosFilterWidth().Ceiling())
	payload := make([]float32, frames*outputChannels)
	for f := 0; f < frames; f++ {
		v := float32(amplitude * math.Sin(2*math.Pi*freq*float64(f)/float64(srcRate)))
		payload[2*f] = v
		payload[2*f+1] = v
	}

	q := mixer.NewQueue()
	q.Push(mixer.NewPacket(0, int64(frames), payload, nil))

	link := mixer.NewLink(q, m, mixer.FrameRateTimeline(srcRate, destFormat.FramesPerSecond))
	out.AddLink(link)
	return nil
}

// memDevice serves fixed-size mix jobs and collects the rendered
// bytes.
type memDevice struct {
	buf           []byte
	bytesPerFrame int
	remaining     int
	nextFrame     int64
	rendered      []byte
}

func newMemDevice(totalFrames, bytesPerFrame int) *memDevice {
	return &memDevice{
		buf:           make([]byte, jobFrames*bytesPerFrame),
		bytesPerFrame: bytesPerFrame,
		remaining:     totalFrames,
	}
}

func (d *memDevice) StartMixJob(job *mixer.MixJob, now time.Time) bool {
	if d.remaining == 0 {
		return false
	}
	frames := jobFrames
	if frames > d.remaining {
		frames = d.remaining
	}
	job.Buffer = d.buf
	job.BufFrames = frames
	job.StartFrame = d.nextFrame
	return true
}

func (d *memDevice) FinishMixJob(job *mixer.MixJob) bool {
	d.rendered = append(d.rendered, d.buf[:job.BufFrames*d.bytesPerFrame]...)
	d.nextFrame += int64(job.BufFrames)
	d.remaining -= job.BufFrames
	return d.remaining > 0
}

func (d *memDevice) NextMixTime() time.Time { return time.Now() }
func (d *memDevice) CurrentFrame() int64    { return d.nextFrame }
func (d *memDevice) done() bool             { return d.remaining == 0 }

func writeWAV(path string, rendered []byte, f mixer.Format) error {
	payload, err := mixer.DecodePayload(rendered, f.SampleFormat)
	if err != nil {
		return err
	}
	buf, err := mixer.IntBufferFromPayload(payload, f, outputBitDepth)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := wav.NewEncoder(file, f.FramesPerSecond, outputBitDepth, f.Channels, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return nil
}

var _ mixer.Device = (*memDevice)(nil)
