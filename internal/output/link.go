// Package output drives the periodic mix loop for one output device:
// it pulls packets from every attached link's pending queue, resamples
// them into a float32 accumulator, converts the accumulator to the
// device's wire format, and trims stale packets whenever no mixing
// work is due.
package output

import (
	"sync"
	"sync/atomic"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/packetqueue"
	"github.com/tphakala/go-audio-mixer/internal/sampler"
	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

// Link connects one packet source to an output. The producer side
// pushes packets into the queue and may retarget the source timeline;
// the output's mix goroutine consumes both.
type Link struct {
	queue *packetqueue.Queue
	mixer sampler.Mixer

	mu  sync.Mutex
	fn  timeline.Function
	gen uint32

	closed atomic.Bool
}

// NewLink pairs a queue with a selected mixer. The initial timeline
// maps destination frame 0 to fractional source position 0 at the
// mixer's nominal rate.
func NewLink(queue *packetqueue.Queue, mixer sampler.Mixer, destToFracSource timeline.Function) *Link {
	l := &Link{
		queue: queue,
		mixer: mixer,
		fn:    destToFracSource,
		gen:   1,
	}
	return l
}

// Queue returns the link's pending packet queue.
func (l *Link) Queue() *packetqueue.Queue { return l.queue }

// Mixer returns the link's resampler.
func (l *Link) Mixer() sampler.Mixer { return l.mixer }

// SetSourceTimeline retargets the destination-frame to fractional-
// source-frame mapping. The mix goroutine picks it up at its next
// cycle via the generation stamp.
func (l *Link) SetSourceTimeline(fn timeline.Function) {
	l.mu.Lock()
	l.fn = fn
	l.gen++
	l.mu.Unlock()
}

// Close marks the link dead; the mix loop skips it until removed.
func (l *Link) Close() {
	l.closed.Store(true)
}

// refreshBookkeeping reinstalls the timeline snapshot into the mixer's
// bookkeeping when the producer has retargeted it since the last mix.
func (l *Link) refreshBookkeeping() {
	l.mu.Lock()
	fn, gen := l.fn, l.gen
	l.mu.Unlock()

	bk := l.mixer.Bookkeeping()
	if bk.SourceTransGen == gen {
		return
	}
	bk.DestFramesToFracSource = fn
	bk.SourceTransGen = gen
	if fn.Rate().ReferenceDelta() != 0 && fn.Rate().SubjectDelta() != 0 {
		bk.SetStepFromRate(fn.Rate())
	}
}

// destToFracSource maps a destination frame through the current
// bookkeeping snapshot.
func (l *Link) destToFracSource(destFrame int64) fixedpoint.Frac {
	return fixedpoint.Frac(l.mixer.Bookkeeping().DestFramesToFracSource.Apply(destFrame))
}

// trim releases every queued packet wholly presented before the given
// fractional source position. Runs on the mix goroutine.
func (l *Link) trim(before fixedpoint.Frac) int {
	trimmed := 0
	for {
		p, wasFlushed := l.queue.LockFront()
		if wasFlushed {
			l.mixer.Reset()
			l.mixer.Bookkeeping().Reset()
		}
		if p == nil || p.End() > before {
			l.queue.UnlockFront(false)
			return trimmed
		}
		l.queue.UnlockFront(true)
		trimmed++
	}
}
