// Package packetqueue provides the refcounted audio packet and the
// per-link producer/consumer pending queue. Producers push packets
// from their own goroutines; the single mix goroutine for the
// destination consumes them through the LockFront/UnlockFront
// protocol, which also carries flush visibility.
package packetqueue

import (
	"sync/atomic"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
)

// Packet is one contiguous run of interleaved float32 source frames
// with a fixed-point presentation timestamp. A Packet is refcounted;
// when the last reference is released its completion callback fires
// exactly once, telling the producer the payload memory is reusable.
type Packet struct {
	start   fixedpoint.Frac
	frames  int64
	payload []float32

	refs atomic.Int32
	done func()
}

// NewPacket returns a packet holding payload with the caller's single
// reference. frames is the whole-frame length of the payload; start is
// the presentation timestamp of the first frame. done may be nil.
func NewPacket(start fixedpoint.Frac, frames int64, payload []float32, done func()) *Packet {
	p := &Packet{
		start:   start,
		frames:  frames,
		payload: payload,
		done:    done,
	}
	p.refs.Store(1)
	return p
}

// Start returns the presentation timestamp of the first frame.
func (p *Packet) Start() fixedpoint.Frac { return p.start }

// End returns the timestamp one frame past the last frame.
func (p *Packet) End() fixedpoint.Frac {
	return p.start + fixedpoint.FromFrames(p.frames)
}

// Frames returns the whole-frame length.
func (p *Packet) Frames() int64 { return p.frames }

// Payload returns the interleaved sample data. The slice is valid
// until the holder's reference is released.
func (p *Packet) Payload() []float32 { return p.payload }

// Retain adds a reference.
func (p *Packet) Retain() {
	p.refs.Add(1)
}

// Release drops a reference, firing the completion callback when the
// last one goes.
func (p *Packet) Release() {
	n := p.refs.Add(-1)
	if n < 0 {
		panic("packetqueue: packet released more times than retained")
	}
	if n == 0 && p.done != nil {
		done := p.done
		p.done = nil
		done()
	}
}
