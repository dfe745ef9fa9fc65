package output

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
)

// maxTrimPeriod caps how far ahead the scheduler may sleep, so stale
// packets are trimmed on a bounded cadence even when no mixing work is
// due.
const maxTrimPeriod = 10 * time.Millisecond

// MixJob is one device buffer to fill. StartMixJob populates it;
// the output converts the accumulator into Buffer before FinishMixJob.
type MixJob struct {
	// Buffer receives BufFrames frames in the device's wire format.
	Buffer []byte

	// BufFrames is the frame capacity of Buffer.
	BufFrames int

	// StartFrame is the device frame number of Buffer's first frame.
	StartFrame int64
}

// Device is the driver-facing half of the mix loop. StartMixJob
// reports false when no buffer is due; FinishMixJob reports whether
// the inner loop should ask for another.
type Device interface {
	StartMixJob(job *MixJob, now time.Time) bool
	FinishMixJob(job *MixJob) bool

	// NextMixTime is when the device next wants a buffer.
	NextMixTime() time.Time

	// CurrentFrame is the device's presentation cursor, used as the
	// trim horizon when no mixing is happening.
	CurrentFrame() int64
}

// Config carries the fixed parameters of one output.
type Config struct {
	// Format is the device wire format.
	Format format.Format

	// MaxJobFrames bounds a single MixJob's frame count and sizes the
	// accumulator.
	MaxJobFrames int

	// Logger receives link failures and trim activity. Nil means
	// silent.
	Logger *zap.Logger
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Format.Validate(); err != nil {
		return err
	}
	if c.MaxJobFrames <= 0 {
		return fmt.Errorf("%w: max job frames %d", format.ErrInvalidFormat, c.MaxJobFrames)
	}
	return nil
}

// StandardOutput owns one device's periodic mix loop. Process is
// invoked on a single goroutine (the device's execution context) and
// never concurrently with itself; link attachment and producer-side
// queue traffic may come from any goroutine.
type StandardOutput struct {
	device   Device
	producer *format.OutputProducer
	cfg      Config
	log      *zap.Logger

	mu    sync.Mutex
	links []*Link

	acc      []float32
	nextTime time.Time
	muted    bool
}

// NewStandardOutput builds the mix loop for a device.
func NewStandardOutput(device Device, cfg Config) (*StandardOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	producer, err := format.NewOutputProducer(cfg.Format.SampleFormat)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &StandardOutput{
		device:   device,
		producer: producer,
		cfg:      cfg,
		log:      log,
		acc:      make([]float32, cfg.MaxJobFrames*cfg.Format.Channels),
	}, nil
}

// AddLink attaches a packet source.
func (o *StandardOutput) AddLink(l *Link) {
	o.mu.Lock()
	o.links = append(o.links, l)
	o.mu.Unlock()
}

// RemoveLink detaches a source and closes it.
func (o *StandardOutput) RemoveLink(l *Link) {
	l.Close()
	o.mu.Lock()
	for i, cur := range o.links {
		if cur == l {
			o.links = append(o.links[:i], o.links[i+1:]...)
			break
		}
	}
	o.mu.Unlock()
}

// SetMuted switches the output between mixing and silence fill. Runs
// on the mix goroutine.
func (o *StandardOutput) SetMuted(muted bool) {
	o.muted = muted
}

// snapshotLinks copies the live link set so mixing runs without the
// output lock held.
func (o *StandardOutput) snapshotLinks() []*Link {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Link, 0, len(o.links))
	for _, l := range o.links {
		if !l.closed.Load() {
			out = append(out, l)
		}
	}
	return out
}

// Process runs one scheduler cycle at now and returns the next wake
// time. While buffers are due it mixes (or fills silence when muted);
// when no buffer was produced it trims every link so queued data never
// outlives its presentation window.
func (o *StandardOutput) Process(now time.Time) time.Time {
	mixed := false

	if !now.Before(o.nextTime) {
		var job MixJob
		for o.device.StartMixJob(&job, now) {
			if job.BufFrames > o.cfg.MaxJobFrames {
				o.log.Warn("mix job exceeds configured maximum",
					zap.Int("buf_frames", job.BufFrames),
					zap.Int("max_frames", o.cfg.MaxJobFrames))
				job.BufFrames = o.cfg.MaxJobFrames
			}

			if o.muted {
				o.producer.FillSilence(job.Buffer[:job.BufFrames*o.cfg.Format.BytesPerFrame()])
			} else {
				o.mixJob(&job)
				mixed = true
			}

			if !o.device.FinishMixJob(&job) {
				break
			}
		}
	}

	if !mixed {
		o.trimLinks()
	}

	next := o.device.NextMixTime()
	if bound := now.Add(maxTrimPeriod); next.After(bound) {
		next = bound
	}
	o.nextTime = next
	return next
}

// mixJob sums every link into the accumulator, then converts into the
// job's wire buffer with clipping.
func (o *StandardOutput) mixJob(job *MixJob) {
	channels := o.cfg.Format.Channels
	samples := job.BufFrames * channels

	acc := o.acc[:samples]
	for i := range acc {
		acc[i] = 0
	}

	for _, l := range o.snapshotLinks() {
		o.mixLink(l, acc, job)
	}

	if err := o.producer.Produce(job.Buffer[:job.BufFrames*o.cfg.Format.BytesPerFrame()], acc); err != nil {
		o.log.Warn("output conversion failed", zap.Error(err))
	}
}

// mixLink drains one link's queue into the accumulator until the job's
// frame quota is met, the front packet is not yet due, or the queue
// empties. Packets are released only when fully consumed.
func (o *StandardOutput) mixLink(l *Link, acc []float32, job *MixJob) {
	l.refreshBookkeeping()
	m := l.mixer
	posWidth := m.PosFilterWidth()

	destOffset := 0
	for destOffset < job.BufFrames {
		p, wasFlushed := l.queue.LockFront()
		if wasFlushed {
			m.Reset()
			m.Bookkeeping().Reset()
		}
		if p == nil {
			l.queue.UnlockFront(false)
			return
		}

		destFrame := job.StartFrame + int64(destOffset)
		srcOffset := l.destToFracSource(destFrame) - p.Start()

		if srcOffset+posWidth < 0 {
			// The packet starts in the future. Skip the destination
			// ahead to its first due frame, or give up on this job.
			due := o.destFrameDue(l, p.Start()-posWidth)
			if due >= job.StartFrame+int64(job.BufFrames) {
				l.queue.UnlockFront(false)
				return
			}
			if due > destFrame {
				destOffset = int(due - job.StartFrame)
				srcOffset = l.destToFracSource(due) - p.Start()
			}
		}

		newDest, _, consumed := m.Mix(acc, destOffset, p.Payload(), srcOffset, true)
		destOffset = newDest
		l.queue.UnlockFront(consumed)
		if !consumed {
			return
		}
	}
}

// destFrameDue returns the first destination frame whose source
// position reaches target.
func (o *StandardOutput) destFrameDue(l *Link, target fixedpoint.Frac) int64 {
	bk := l.mixer.Bookkeeping()
	due := bk.DestFramesToFracSource.ApplyInverse(int64(target))
	for fixedpoint.Frac(bk.DestFramesToFracSource.Apply(due)) < target {
		due++
	}
	return due
}

// trimLinks drops packets whose presentation window has fully passed
// the device's current frame.
func (o *StandardOutput) trimLinks() {
	nowFrame := o.device.CurrentFrame()
	for _, l := range o.snapshotLinks() {
		l.refreshBookkeeping()
		before := l.destToFracSource(nowFrame)
		if n := l.trim(before); n > 0 {
			o.log.Debug("trimmed stale packets",
				zap.Int("packets", n),
				zap.Int64("device_frame", nowFrame))
		}
	}
}
