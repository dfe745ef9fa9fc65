package packetqueue

import "sync"

// Queue is one link's pending packet queue. Any number of producer
// goroutines Push and Flush; exactly one consumer goroutine walks the
// front through LockFront/UnlockFront pairs.
//
// The two-mutex protocol guarantees a packet is never torn down while
// the consumer is reading it: LockFront holds flushMu until the paired
// UnlockFront, and Flush acquires flushMu first, so a flush issued
// mid-read waits out that one read before discarding anything. The
// consumer must pair every LockFront with an UnlockFront even when the
// front was nil, or producers block forever.
type Queue struct {
	flushMu sync.Mutex

	mu      sync.Mutex
	pending []*Packet
	flushed bool

	processing bool
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a packet, transferring the caller's reference to the
// queue.
func (q *Queue) Push(p *Packet) {
	q.mu.Lock()
	q.pending = append(q.pending, p)
	q.mu.Unlock()
}

// Flush discards every pending packet, firing their completion
// callbacks in FIFO order, then calls token (if non-nil) once the
// flush is fully visible. If the consumer holds the front locked,
// Flush blocks until that read finishes; the in-progress packet is
// then discarded with the rest, never mid-read.
func (q *Queue) Flush(token func()) {
	q.flushMu.Lock()

	q.mu.Lock()
	flushed := q.pending
	q.pending = nil
	q.flushed = true
	q.mu.Unlock()

	q.flushMu.Unlock()

	// Completions run outside both locks so a callback may re-enter
	// the queue.
	for _, p := range flushed {
		p.Release()
	}
	if token != nil {
		token()
	}
}

// LockFront returns the front packet, or nil when the queue is empty,
// and whether a flush occurred since the previous LockFront. The
// caller borrows the packet reference until the paired UnlockFront.
// On wasFlushed the caller must reset any cached resampler history
// before mixing.
func (q *Queue) LockFront() (p *Packet, wasFlushed bool) {
	q.flushMu.Lock()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.processing {
		panic("packetqueue: LockFront while front already locked")
	}
	q.processing = true

	wasFlushed = q.flushed
	q.flushed = false
	if len(q.pending) > 0 {
		p = q.pending[0]
	}
	return p, wasFlushed
}

// UnlockFront ends the read begun by LockFront. With release true the
// front packet is popped and the queue's reference dropped, firing its
// completion if that was the last reference.
func (q *Queue) UnlockFront(release bool) {
	q.mu.Lock()
	if !q.processing {
		q.mu.Unlock()
		panic("packetqueue: UnlockFront without LockFront")
	}
	q.processing = false

	var released *Packet
	if release && len(q.pending) > 0 {
		released = q.pending[0]
		q.pending = q.pending[1:]
	}
	q.mu.Unlock()

	q.flushMu.Unlock()

	if released != nil {
		released.Release()
	}
}

// Empty reports whether no packets are pending.
func (q *Queue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0
}
