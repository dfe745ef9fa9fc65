// Package mixer provides the real-time mixing core of an audio server
// in pure Go: per-link resampling, gain staging, packet queueing and a
// periodic mix/trim scheduler, summing any number of client streams
// into one output device buffer.
//
// # Features
//
//   - Point, linear and windowed-sinc resamplers selected per format
//     pair, with exact rational position tracking (no cumulative drift)
//   - Fixed-point stream positions with 13 fractional bits, part of the
//     bit-exactness contract of the core
//   - Shared, reference-counted coefficient tables with LRU retention
//   - Per-link gain with dB staging, mute and sample-accurate ramps
//   - Producer/consumer packet queues with a flush-safe locking protocol
//     semantics (a packet is never torn down mid-mix)
//   - A periodic output scheduler that mixes when buffers are due and
//     trims stale packets on a bounded cadence otherwise
//   - Multi-channel support up to 8 channels, with mono/stereo/quad
//     mapping between source and destination
//
// # Quick Start
//
// Select a resampler for a source/destination format pair and feed it
// packets through a queue:
//
//	src := mixer.Format{SampleFormat: mixer.Float32, Channels: 2, FramesPerSecond: 44100}
//	dst := mixer.Format{SampleFormat: mixer.Float32, Channels: 2, FramesPerSecond: 48000}
//
//	m, err := mixer.Select(src, dst, mixer.ResamplerDefault)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//
//	dest := make([]float32, 2*1024)
//	destOff, srcOff, consumed := m.Mix(dest, 0, payload, 0, false)
//
// For a full device loop, attach links to a StandardOutput and drive
// Process from a periodic timer:
//
//	out, err := mixer.NewStandardOutput(device, mixer.OutputConfig{
//	    Format:       dst,
//	    MaxJobFrames: 1024,
//	})
//	link := mixer.NewLink(queue, m, destToFracSource)
//	out.AddLink(link)
//
//	next := out.Process(time.Now())
//
// # Architecture
//
// Producers push refcounted packets into per-link queues from any
// goroutine; one goroutine per output device runs the mix loop. Each
// cycle the loop locks a queue front, resamples into a shared float32
// accumulator through the link's sampler and gain stage, and releases
// packets as they are consumed, firing their completion callbacks in
// FIFO order. The accumulator is then converted, with clipping, into
// the device's wire format (u8, i16, i24-in-32 or f32).
//
// Sampler positions are fixed-point fractional frames driven by a
// rational step (whole step plus rate-modulo remainder), so converting
// between rates like 44.1kHz and 48kHz stays sample-exact over
// arbitrarily long streams.
package mixer
